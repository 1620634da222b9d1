package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
	empty   lipgloss.Style
	ok      lipgloss.Style
	warning lipgloss.Style
	faint   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
		cell:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1),
		border:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		empty:   lipgloss.NewStyle().Faint(true),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Padding(0, 1),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")).Padding(0, 1),
		faint:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
