package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waabox/sitekit/internal/auth"
	"github.com/waabox/sitekit/internal/domain"
	"github.com/waabox/sitekit/internal/logging"
)

// StatusMsg carries a poller status update into the model.
// It is exported so that tests can inject it directly into AuthModel.Update.
type StatusMsg struct {
	Status auth.Status
}

// PollDoneMsg is sent once the poll session has returned.
type PollDoneMsg struct {
	Outcome domain.PollOutcome
	Err     error
}

// AuthModel renders the device authorization screen while the poller runs.
type AuthModel struct {
	provider  string
	grant     domain.DeviceGrant
	status    auth.Status
	cancel    context.CancelFunc
	cancelled bool
	done      bool
	err       error
}

// NewAuthModel creates the authorization model. cancel aborts the poll session.
func NewAuthModel(provider string, grant domain.DeviceGrant, cancel context.CancelFunc) AuthModel {
	return AuthModel{provider: provider, grant: grant, cancel: cancel}
}

// Init implements tea.Model.
func (m AuthModel) Init() tea.Cmd {
	return nil
}

// Update handles poller messages and the cancel keys.
// The program keeps running after a cancel key until the poller has returned.
func (m AuthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		m.status = msg.Status
		return m, nil

	case PollDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if !m.cancelled && m.cancel != nil {
				m.cancel()
			}
			m.cancelled = true
		}
	}
	return m, nil
}

// View renders the user code, the verification URL and the latest status line.
func (m AuthModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf(" sitekit | %s authorization", m.provider)) + "\n")
	sb.WriteString(separator)
	sb.WriteString(fmt.Sprintf("\n Visit:      %s\n", linkStyle.Render(m.grant.VerificationURI)))
	sb.WriteString(fmt.Sprintf(" Enter code: %s\n\n", codeStyle.Render(m.grant.UserCode)))
	sb.WriteString(" " + m.statusLine() + "\n\n")
	sb.WriteString(separator)
	if !m.done {
		sb.WriteString(hintStyle.Render(" esc: cancel") + "\n")
	}
	return sb.String()
}

func (m AuthModel) statusLine() string {
	if m.cancelled && !m.status.Terminal() {
		return warnStyle.Render("Cancelling...")
	}
	line := m.status.String()
	switch m.status.Phase {
	case auth.PhaseAuthorized:
		return successStyle.Render(line)
	case auth.PhaseDenied, auth.PhaseTimedOut:
		return failureStyle.Render(line)
	case auth.PhaseCancelled:
		return warnStyle.Render(line)
	}
	return line
}

// Cancelled reports whether the operator pressed a cancel key.
func (m AuthModel) Cancelled() bool {
	return m.cancelled
}

// AuthView is an auth.View backed by a Bubbletea program.
type AuthView struct {
	in     io.Reader
	out    io.Writer
	open   auth.BrowserOpener
	logger logging.Logger

	provider string
	grant    domain.DeviceGrant
}

// NewAuthView creates an AuthView drawing on out and reading keys from in.
// open may be nil to skip the browser launch.
func NewAuthView(in io.Reader, out io.Writer, open auth.BrowserOpener, logger logging.Logger) *AuthView {
	return &AuthView{in: in, out: out, open: open, logger: logging.With(logger)}
}

// Present records the grant for rendering and launches the browser.
func (v *AuthView) Present(ctx context.Context, provider string, grant domain.DeviceGrant) {
	v.provider = provider
	v.grant = grant
	auth.LaunchBrowser(ctx, v.open, grant.VerificationURI, v.logger)
}

type pollResult struct {
	outcome domain.PollOutcome
	err     error
}

// statusSink routes poller updates to the program until it is swapped
// for a plain console.
type statusSink struct {
	mu     sync.Mutex
	report auth.StatusFunc
}

func (s *statusSink) send(st auth.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report(st)
}

func (s *statusSink) swap(report auth.StatusFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
}

// Watch runs poll on its own goroutine while the program renders its status.
// It returns the poller's result, never the program's. If the program dies
// (no usable terminal), the session continues as plain console lines.
func (v *AuthView) Watch(ctx context.Context, poll auth.PollFunc) (domain.PollOutcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		NewAuthModel(v.provider, v.grant, cancel),
		tea.WithInput(v.in),
		tea.WithOutput(v.out),
		tea.WithoutSignalHandler(),
	)

	sink := &statusSink{report: func(s auth.Status) { p.Send(StatusMsg{Status: s}) }}
	results := make(chan pollResult, 1)
	go func() {
		outcome, err := poll(ctx, sink.send)
		results <- pollResult{outcome: outcome, err: err}
		p.Send(PollDoneMsg{Outcome: outcome, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		v.logger.Warn("tui: authorization view stopped, continuing without it", logging.F("error", err.Error()))
		console := auth.NewConsoleView(v.out, nil, v.logger)
		sink.swap(console.Report)
		console.Present(ctx, v.provider, v.grant)
	}
	r := <-results
	return r.outcome, r.err
}
