// Package tui holds the terminal front end: the cobra help styling and the
// interactive agent demo that drives the orchestrator without a server.
package tui

import "github.com/charmbracelet/lipgloss"

// ANSI palette styles shared by the help template and the demo. Plain ANSI
// codes keep them readable on light and dark terminals alike.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// severityStyle maps a severity or priority word onto its display style.
func severityStyle(level string) lipgloss.Style {
	switch level {
	case "high":
		return badStyle
	case "medium":
		return warnStyle
	default:
		return dimStyle
	}
}

// scoreStyle colors a 0-10 quality score.
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 7:
		return goodStyle
	case score >= 5:
		return warnStyle
	default:
		return badStyle
	}
}
