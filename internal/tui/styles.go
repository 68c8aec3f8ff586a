package tui

import "github.com/charmbracelet/lipgloss"

// Styles for the SMS look: grey incoming bubbles on the left, blue outgoing
// bubbles on the right.
type Styles struct {
	Header   lipgloss.Style
	Avatar   lipgloss.Style
	Date     lipgloss.Style
	Incoming lipgloss.Style
	Outgoing lipgloss.Style
	Time     lipgloss.Style
	Typing   lipgloss.Style
	Status   lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Sidebar  lipgloss.Style
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Avatar:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8")).Padding(0, 1),
		Date:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Incoming: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("252")).Padding(0, 1),
		Outgoing: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("33")).Padding(0, 1),
		Time:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Typing:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Focused:  lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		Sidebar:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}
