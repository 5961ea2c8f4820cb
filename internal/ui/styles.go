package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#6B7280"})

	activeTabStyle = tabStyle.
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})

	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#38BDF8"))

	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)

// strategyColors mirror the cutoff line colors of the field.
var strategyColors = []lipgloss.Color{
	lipgloss.Color("#9CA3AF"),
	lipgloss.Color("#38BDF8"),
	lipgloss.Color("#4ADE80"),
}
