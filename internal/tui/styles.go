package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Each colour adapts to light and dark terminals.
var (
	colorInk    = lipgloss.AdaptiveColor{Light: "#1F5FAD", Dark: "#5EA1F2"}
	colorText   = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#D9480F", Dark: "#FF8A4C"}
	colorFrame  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorShade  = lipgloss.AdaptiveColor{Light: "#EBEBEB", Dark: "#18263A"}
	colorUp     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorDown   = lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF6B6B"}
	colorSaved  = lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6C744"}
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(colorInk).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	sourceStyle = lipgloss.NewStyle().Foreground(colorUp)
	bodyStyle   = lipgloss.NewStyle().Foreground(colorText)
	dimStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorDown)

	// Vote and save markers next to a title.
	likedStyle   = lipgloss.NewStyle().Foreground(colorUp).Bold(true)
	trashedStyle = lipgloss.NewStyle().Foreground(colorDown).Bold(true)
	savedStyle   = lipgloss.NewStyle().Foreground(colorSaved).Bold(true)

	tabStyle       = lipgloss.NewStyle().Foreground(colorText).Background(colorShade).Padding(0, 1)
	tabActiveStyle = tabStyle.Foreground(lipgloss.Color("#FFFFFF")).Background(colorInk).Bold(true)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorShade).Padding(0, 1)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorInk).
			Padding(1, 3)
)

// paneStyle frames the list or the preview; the focused pane gets the
// accent border.
func paneStyle(focused bool) lipgloss.Style {
	border := colorFrame
	if focused {
		border = colorInk
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}
