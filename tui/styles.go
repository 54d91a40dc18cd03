package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#06B6D4")
	passColor      = lipgloss.Color("#22C55E")
	skipColor      = lipgloss.Color("#EAB308")
	failColor      = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	textColor      = lipgloss.Color("#F9FAFB")

	muted = lipgloss.NewStyle().Foreground(mutedColor)

	tabActive   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 2)
	tabInactive = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 2)

	title     = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	statusBar = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)

	cardBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	statValue = lipgloss.NewStyle().Bold(true).Foreground(textColor)
	statLabel = lipgloss.NewStyle().Foreground(mutedColor)

	passStyle = lipgloss.NewStyle().Foreground(passColor)
	failStyle = lipgloss.NewStyle().Foreground(failColor)
	skipStyle = lipgloss.NewStyle().Foreground(skipColor)

	tableHeader   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	tableSelected = lipgloss.NewStyle().Background(primaryColor).Foreground(textColor)
	notification  = lipgloss.NewStyle().Foreground(passColor).Padding(0, 1)
)

// statusStyle colours run and scenario statuses alike.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "passed", "completed":
		return passStyle
	case "failed":
		return failStyle
	case "skipped", "running":
		return skipStyle
	default:
		return lipgloss.NewStyle()
	}
}
