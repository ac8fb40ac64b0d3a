package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/oneminnews/oneminnews/internal/interact"
	"github.com/oneminnews/oneminnews/internal/models"
)

// row is what the list needs to draw one article.
type row struct {
	article models.Article
	state   interact.State
}

func markers(st interact.State) string {
	var b strings.Builder
	if st.Liked {
		b.WriteString(likedStyle.Render("+"))
	}
	if st.Trashed {
		b.WriteString(trashedStyle.Render("-"))
	}
	if st.Saved {
		b.WriteString(savedStyle.Render("*"))
	}
	return b.String()
}

func renderListItem(r row, selected bool, width int, now time.Time) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = accentStyle.Render("> " + truncateStr(r.article.Title, width-6))
	} else {
		title = titleStyle.Render("  " + truncateStr(r.article.Title, width-6))
	}
	if m := markers(r.state); m != "" {
		title += " " + m
	}

	meta := "  " + sourceStyle.Render(r.article.Source) + " " +
		dimStyle.Render(fmt.Sprintf("· %s · %d votes", models.RelativeTime(r.article.When(), now), r.state.VoteCount))

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// visibleRange returns the rows [start, end) shown when the list has room
// for visible rows and the cursor must stay on screen.
func visibleRange(total, cursor, visible int) (start, end int) {
	if visible < 1 {
		visible = 1
	}
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end = start + visible
	if end > total {
		end = total
		start = max(0, end-visible)
	}
	return start, end
}

func renderList(rows []row, cursor int, loading bool, height, width int, now time.Time) string {
	if len(rows) == 0 {
		if loading {
			return lipglossCenter("Loading...", width, height)
		}
		return lipglossCenter("No articles found", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	const itemHeight = 3
	start, end := visibleRange(len(rows), cursor, height/itemHeight)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(rows[i], i == cursor, width, now))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if loading {
		b.WriteString("\n" + dimStyle.Render("  loading more..."))
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := max(0, (width-len(s))/2)
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
