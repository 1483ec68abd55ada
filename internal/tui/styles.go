package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#0d6efd")
	destructive = lipgloss.Color("#dc3545")
	success     = lipgloss.Color("#198754")
	muted       = lipgloss.Color("#6c757d")
)

// Styles holds the lipgloss styles used by the form view.
type Styles struct {
	Title        lipgloss.Style
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Required     lipgloss.Style
	Feedback     lipgloss.Style
	Status       lipgloss.Style
	Sent         lipgloss.Style
	Help         lipgloss.Style
	Frame        lipgloss.Style
}

// DefaultStyles returns the Bootstrap-like palette of the web form.
func DefaultStyles() Styles {
	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Label:        lipgloss.NewStyle().Width(12),
		FocusedLabel: lipgloss.NewStyle().Width(12).Bold(true).Foreground(accent),
		Required:     lipgloss.NewStyle().Foreground(destructive),
		Feedback:     lipgloss.NewStyle().Foreground(destructive).PaddingLeft(12),
		Status:       lipgloss.NewStyle().Foreground(muted).MarginTop(1),
		Sent:         lipgloss.NewStyle().Foreground(success).MarginTop(1),
		Help:         lipgloss.NewStyle().Foreground(muted).MarginTop(1),
		Frame:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(1, 2),
	}
}
