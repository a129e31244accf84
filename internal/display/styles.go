// Package display renders maps, matrices, decode results and status reports
// for the terminal.
package display

import "github.com/charmbracelet/lipgloss"

// Semantic colors
var (
	Accent      = lipgloss.Color("#8BC34A") // Lime Green
	Destructive = lipgloss.Color("#e53935") // Red
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	Muted       = lipgloss.Color("#6b7280") // Gray
)

// Styles holds the lipgloss styles used by a Renderer.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	OK    lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style
	Muted lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(Info),
		Label: lipgloss.NewStyle().Bold(true),
		OK:    lipgloss.NewStyle().Foreground(Accent),
		Warn:  lipgloss.NewStyle().Foreground(Warning),
		Error: lipgloss.NewStyle().Bold(true).Foreground(Destructive),
		Muted: lipgloss.NewStyle().Foreground(Muted),
	}
}

// PlainStyles returns styles that leave text untouched.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Label: plain, OK: plain, Warn: plain, Error: plain, Muted: plain}
}
