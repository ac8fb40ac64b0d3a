package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// statusKeys are the shortcuts the status bar advertises, most useful first.
// They are dropped from the end when the terminal is too narrow.
var statusKeys = [][2]string{
	{"l", "like"},
	{"x", "trash"},
	{"s", "save"},
	{"enter", "summary"},
	{"?", "help"},
	{"q", "quit"},
}

func renderStatusBar(count int, filterLabel string, loading bool, width int, user string) string {
	info := []string{fmt.Sprintf("%d articles", count)}
	if filterLabel != "" {
		info = append(info, filterLabel)
	}
	if user != "" {
		info = append(info, user)
	}
	left := strings.Join(info, " · ")
	if loading {
		left += " (loading...)"
	}

	// Padding(0, 1) takes two columns.
	room := width - 2 - lipgloss.Width(left) - 1
	var hints []string
	for _, k := range statusKeys {
		hint := k[0] + " " + k[1]
		if lipgloss.Width(strings.Join(append(hints, hint), "  ")) > room {
			break
		}
		hints = append(hints, hint)
	}
	right := strings.Join(hints, "  ")

	gap := max(1, width-2-lipgloss.Width(left)-lipgloss.Width(right))
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
