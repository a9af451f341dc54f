package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	codeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	linkStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

const separator = "────────────────────────────────────────────────────────────\n"

// Success renders s as a success line.
func Success(s string) string { return successStyle.Render(s) }

// Failure renders s as an error line.
func Failure(s string) string { return failureStyle.Render(s) }

// Hint renders s as secondary text.
func Hint(s string) string { return hintStyle.Render(s) }
