package tui

import (
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/oneminnews/oneminnews/internal/config"
	"github.com/oneminnews/oneminnews/internal/feed"
)

// sorts are the list orders the reader cycles through.
var sorts = config.Sorts

var sortLabels = map[string]string{
	"time":    "Latest",
	"popular": "Popular",
	"smart":   "Smart",
}

// filterBar shows the source tabs and the sort order. At most one source is
// selected; none means all sources.
type filterBar struct {
	sources []string
	filter  feed.Filter
}

func newFilterBar(filter feed.Filter) filterBar {
	if filter.Sort == "" {
		filter.Sort = sorts[0]
	}
	return filterBar{filter: filter}
}

func (f *filterBar) setSources(sources []string) {
	f.sources = sources
	if f.filter.Source != "" && !slices.Contains(sources, f.filter.Source) {
		f.sources = append(f.sources, f.filter.Source)
	}
}

// nextSource moves to the next source tab, wrapping through "All".
func (f *filterBar) nextSource() {
	idx := slices.Index(f.sources, f.filter.Source)
	if idx+1 >= len(f.sources) {
		f.filter.Source = ""
		return
	}
	f.filter.Source = f.sources[idx+1]
}

// prevSource moves to the previous source tab, wrapping through "All".
func (f *filterBar) prevSource() {
	idx := slices.Index(f.sources, f.filter.Source)
	switch {
	case f.filter.Source == "" || idx < 0:
		if len(f.sources) > 0 {
			f.filter.Source = f.sources[len(f.sources)-1]
		}
	case idx == 0:
		f.filter.Source = ""
	default:
		f.filter.Source = f.sources[idx-1]
	}
}

func (f *filterBar) nextSort() {
	idx := slices.Index(sorts, f.filter.Sort)
	f.filter.Sort = sorts[(idx+1)%len(sorts)]
}

func (f *filterBar) label() string {
	src := f.filter.Source
	if src == "" {
		src = "All"
	}
	return src + " · " + sortLabel(f.filter.Sort)
}

func sortLabel(sort string) string {
	if l, ok := sortLabels[sort]; ok {
		return l
	}
	return sort
}

func (f *filterBar) render(width int) string {
	sep := dimStyle.Render(" · ")
	parts := []string{tabActiveStyle.Render(sortLabel(f.filter.Sort))}

	if f.filter.Source == "" {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabStyle.Render("All"))
	}
	for _, s := range f.sources {
		style := tabStyle
		if s == f.filter.Source {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(s))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	return lipgloss.NewStyle().Width(width).PaddingLeft(1).Render(row)
}
