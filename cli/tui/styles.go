// Package tui implements the Bubble Tea browser behind the CLI's --tui
// flag.
//
// The browser is read-only and renders the same inventory payload the
// json/table/yaml formats do; it never talks to a live agent.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	accentColor     = lipgloss.Color("#7C3AED") // Purple
	videoColor      = lipgloss.Color("#3B82F6") // Blue
	screenshotColor = lipgloss.Color("#10B981") // Green
	activityColor   = lipgloss.Color("#F59E0B") // Amber
	mutedColor      = lipgloss.Color("#6B7280") // Gray
	textColor       = lipgloss.Color("#FFFFFF")
)

// kindColors gives each artifact kind a stable accent.
var kindColors = map[string]lipgloss.Color{
	"video":      videoColor,
	"screenshot": screenshotColor,
	"activity":   activityColor,
}

func kindColor(kind string) lipgloss.Color {
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return mutedColor
}

// Styles for the pending browser. Everything is package-private: the
// browser is this package's only view.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(textColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)

	// Per-kind summary boxes across the top of the view.
	statBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Width(20).
			Align(lipgloss.Center)
	statLabelStyle = lipgloss.NewStyle().Foreground(mutedColor).Align(lipgloss.Center)
	statValueStyle = lipgloss.NewStyle().Bold(true).Foreground(textColor).Align(lipgloss.Center)
)
