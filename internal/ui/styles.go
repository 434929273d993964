package ui

import "github.com/charmbracelet/lipgloss"

type styleSet struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	errLine  lipgloss.Style
	self     lipgloss.Style
	system   lipgloss.Style
	prompt   lipgloss.Style
	selected lipgloss.Style
	overlay  lipgloss.Style
	ready    lipgloss.Style
	kick     lipgloss.Style
}

func newStyles() styleSet {
	return styleSet{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		subtle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		errLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		self:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		system:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		prompt:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		selected: lipgloss.NewStyle().Reverse(true),
		overlay: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")).
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2),
		ready: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		kick:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}
}
