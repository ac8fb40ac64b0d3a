package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/oneminnews/oneminnews/internal/feeds"
	"github.com/oneminnews/oneminnews/internal/models"
)

// summaryView is the summary panel of the selected article.
type summaryView struct {
	variant string
	text    string
	loading bool
	failed  bool
}

func renderPreview(r *row, sum summaryView, width, height, scroll int, now time.Time) string {
	if r == nil {
		return lipglossCenter("Select an article", width, height)
	}
	a := r.article

	contentWidth := max(10, width-2)

	title := titleStyle.MarginBottom(1).Width(contentWidth).Render(a.Title)

	meta := []string{a.Source, models.RelativeTime(a.When(), now)}
	if mins := feeds.ReadingMinutes(a.Content); mins > 0 {
		meta = append(meta, fmt.Sprintf("%d min read", mins))
	}
	meta = append(meta, fmt.Sprintf("%d votes", r.state.VoteCount))
	if m := markers(r.state); m != "" {
		meta = append(meta, m)
	}
	source := sourceStyle.Render(strings.Join(meta, " · "))

	parts := []string{title, source}
	if kw := a.Keywords.Display(); kw != "" {
		parts = append(parts, dimStyle.Render(kw))
	}
	parts = append(parts, "")

	if r.state.Expanded {
		label := accentStyle.Render("Summary (" + sum.variant + ")")
		var text string
		switch {
		case sum.loading:
			text = "Summarizing..."
		case sum.failed:
			text = errorStyle.Render(summaryFailureText)
		default:
			text = sum.text
		}
		parts = append(parts, label, bodyStyle.Width(contentWidth).Render(wrapText(text, contentWidth)), "")
	}

	desc := strings.TrimSpace(a.Content)
	if desc == "" {
		desc = "(No description available)"
	}
	parts = append(parts,
		bodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth)),
		dimStyle.Italic(true).MarginTop(1).Width(contentWidth).Render("Read more: "+a.Link),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
