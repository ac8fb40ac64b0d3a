// Package export writes the saved list out as a Markdown or plain text
// document.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oneminnews/oneminnews/internal/models"
)

// Format is an export file format.
type Format string

const (
	Markdown Format = "md"
	Text     Format = "txt"
)

var (
	// ErrNothingToExport is returned when the saved list is empty.
	ErrNothingToExport = errors.New("no articles to export")
	// ErrUnknownFormat is returned by ParseFormat for unsupported formats.
	ErrUnknownFormat = errors.New("unknown export format")
)

// ParseFormat accepts "md", "markdown", "txt" and "text".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == Text {
		return "text/plain; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Filename returns the file name of an export made at now.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("saved-articles-%s.%s", now.UTC().Format("2006-01-02"), f)
}

// Render renders articles in format f. Times are shown relative to now.
func Render(f Format, articles []models.SavedArticle, now time.Time) (string, error) {
	if len(articles) == 0 {
		return "", ErrNothingToExport
	}
	switch f {
	case Markdown:
		return renderMarkdown(articles, now), nil
	case Text:
		return renderText(articles, now), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func renderMarkdown(articles []models.SavedArticle, now time.Time) string {
	var b strings.Builder
	b.WriteString("# My Saved Articles\n\n")
	fmt.Fprintf(&b, "Total: %d articles\n\n", len(articles))

	for i, a := range articles {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, a.Title)
		fmt.Fprintf(&b, "**Source**: %s\n\n", a.Source)
		fmt.Fprintf(&b, "**Time**: %s\n\n", models.RelativeTime(a.Date, now))
		fmt.Fprintf(&b, "**Original**: [%s](%s)\n\n", a.Link, a.Link)
		if a.Summary != "" {
			fmt.Fprintf(&b, "**Summary**: %s\n\n", a.Summary)
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

func renderText(articles []models.SavedArticle, now time.Time) string {
	var b strings.Builder
	b.WriteString("My Saved Articles\n\n")
	fmt.Fprintf(&b, "Total: %d articles\n\n", len(articles))

	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "Source: %s\n", a.Source)
		fmt.Fprintf(&b, "Time: %s\n", models.RelativeTime(a.Date, now))
		fmt.Fprintf(&b, "Original: %s\n", a.Link)
		if a.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", a.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteFile renders articles into dir under the name Filename returns and
// returns the path written.
func WriteFile(dir string, f Format, articles []models.SavedArticle, now time.Time) (string, error) {
	content, err := Render(f, articles, now)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory %q: %w", dir, err)
	}
	path := filepath.Join(dir, Filename(f, now))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing export %q: %w", path, err)
	}
	return path, nil
}
