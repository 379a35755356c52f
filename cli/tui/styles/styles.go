// Package styles holds the lipgloss styles shared by the terminal views.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	Primary   = lipgloss.Color("#3A86FF")
	Success   = lipgloss.Color("#04B575")
	Danger    = lipgloss.Color("#FF6B6B")
	Warning   = lipgloss.Color("#FFB703")
	Muted     = lipgloss.Color("#888888")
	Highlight = lipgloss.Color("#EDF2F4")
)

var (
	HeaderStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	BreadcrumbStyle       = lipgloss.NewStyle().Foreground(Muted)
	BreadcrumbActiveStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true).Underline(true)
	BreadcrumbDoneStyle   = lipgloss.NewStyle().Foreground(Success)

	SectionTitleStyle = lipgloss.NewStyle().Foreground(Highlight).Background(Primary).Bold(true).Padding(0, 1)
	LabelStyle        = lipgloss.NewStyle().Foreground(Muted).Width(28)
	ValueStyle        = lipgloss.NewStyle().Foreground(Highlight)
	UnsetStyle        = lipgloss.NewStyle().Foreground(Muted).Italic(true)

	ErrorStyle   = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)
	HelpStyle    = lipgloss.NewStyle().Foreground(Muted)

	BoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Muted).Padding(0, 1)
)
