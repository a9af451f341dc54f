package auth

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/waabox/sitekit/internal/domain"
	"github.com/waabox/sitekit/internal/exec"
	"github.com/waabox/sitekit/internal/logging"
)

// BrowserOpener opens url in the operator's browser.
type BrowserOpener func(ctx context.Context, url string) error

// OpenBrowser returns a BrowserOpener that runs the platform's URL handler through runner.
func OpenBrowser(runner exec.CommandRunner) BrowserOpener {
	return func(ctx context.Context, url string) error {
		name, args := browserCommand(runtime.GOOS, url)
		result, err := runner.Run(ctx, name, args, exec.RunOpts{})
		if err != nil {
			return fmt.Errorf("opening browser: %w", err)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("opening browser: %s exited with code %d", name, result.ExitCode)
		}
		return nil
	}
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// LaunchBrowser opens url in the background. Failures are logged and otherwise ignored;
// the displayed user code is the fallback.
func LaunchBrowser(ctx context.Context, open BrowserOpener, url string, logger logging.Logger) {
	if open == nil || url == "" {
		return
	}
	logger = logging.With(logger)
	go func() {
		if err := open(ctx, url); err != nil {
			logger.Debug("device flow: browser launch failed", logging.F("error", err.Error()))
		}
	}()
}

// ConsoleView presents the device flow as plain lines on out.
// All prompts go to stderr in main so stdout remains clean for piping.
type ConsoleView struct {
	out    io.Writer
	open   BrowserOpener
	logger logging.Logger

	mu   sync.Mutex
	last Phase
}

// NewConsoleView creates a ConsoleView. open may be nil to skip the browser launch.
func NewConsoleView(out io.Writer, open BrowserOpener, logger logging.Logger) *ConsoleView {
	return &ConsoleView{out: out, open: open, logger: logging.With(logger), last: -1}
}

// Present prints the user code and verification URL and launches the browser.
func (v *ConsoleView) Present(ctx context.Context, provider string, grant domain.DeviceGrant) {
	fmt.Fprintf(v.out, "Authorize sitekit with %s to clone the template.\n", provider)
	fmt.Fprintf(v.out, "Visit:      %s\n", grant.VerificationURI)
	fmt.Fprintf(v.out, "Enter code: %s\n", grant.UserCode)
	LaunchBrowser(ctx, v.open, grant.VerificationURI, v.logger)
}

// Watch runs poll and prints a status line whenever the phase changes.
func (v *ConsoleView) Watch(ctx context.Context, poll PollFunc) (domain.PollOutcome, error) {
	return poll(ctx, v.Report)
}

// Report prints s unless it repeats the previous phase.
// Interval changes are always printed.
func (v *ConsoleView) Report(s Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s.Phase == v.last && s.Phase != PhaseIntervalChanged {
		return
	}
	v.last = s.Phase
	fmt.Fprintln(v.out, s.String())
}
