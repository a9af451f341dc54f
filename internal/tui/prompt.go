package tui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waabox/sitekit/internal/domain"
)

// PromptModel asks for a single line of text.
type PromptModel struct {
	label       string
	placeholder string
	value       []rune
	validate    func(string) error
	err         error
	submitted   bool
	aborted     bool
}

// NewPromptModel creates a prompt. An empty submission falls back to placeholder.
// validate may be nil.
func NewPromptModel(label, placeholder string, validate func(string) error) PromptModel {
	return PromptModel{label: label, placeholder: placeholder, validate: validate}
}

// Init implements tea.Model.
func (m PromptModel) Init() tea.Cmd {
	return nil
}

// Update edits the value on key presses.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyEnter:
		value := m.Value()
		if m.validate != nil {
			if err := m.validate(value); err != nil {
				m.err = err
				return m, nil
			}
		}
		m.submitted = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.value) > 0 {
			m.value = m.value[:len(m.value)-1]
		}
	case tea.KeySpace:
		m.value = append(m.value, ' ')
	case tea.KeyRunes:
		m.value = append(m.value, key.Runes...)
	default:
		return m, nil
	}
	m.err = nil
	return m, nil
}

// View renders the label, the typed value and any validation error.
func (m PromptModel) View() string {
	if m.submitted || m.aborted {
		return ""
	}
	typed := string(m.value)
	if typed == "" && m.placeholder != "" {
		typed = hintStyle.Render(m.placeholder)
	}
	s := fmt.Sprintf("%s %s█\n", titleStyle.Render(m.label), typed)
	if m.err != nil {
		s += failureStyle.Render("  "+m.err.Error()) + "\n"
	}
	return s + hintStyle.Render("  enter: confirm   esc: cancel") + "\n"
}

// Value returns the trimmed input, or the placeholder when nothing was typed.
func (m PromptModel) Value() string {
	v := strings.TrimSpace(string(m.value))
	if v == "" {
		return m.placeholder
	}
	return v
}

// Submitted reports whether the prompt was confirmed with enter.
func (m PromptModel) Submitted() bool {
	return m.submitted
}

// Prompt runs a PromptModel and returns the submitted value.
// Aborting returns an error matching domain.ErrCancelled.
func Prompt(in io.Reader, out io.Writer, model PromptModel) (string, error) {
	p := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}
	m, ok := final.(PromptModel)
	if !ok || !m.submitted {
		return "", fmt.Errorf("prompt: %w", domain.ErrCancelled)
	}
	return m.Value(), nil
}
