package feeds

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/oneminnews/oneminnews/internal/models"
)

// parseFeedItems converts the items of one feed into articles attributed to
// source. Items without a title or link are skipped.
func parseFeedItems(source string, feed *gofeed.Feed) []models.Article {
	var articles []models.Article
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		var date string
		switch {
		case item.PublishedParsed != nil:
			date = item.PublishedParsed.UTC().Format(time.RFC3339)
		case item.UpdatedParsed != nil:
			date = item.UpdatedParsed.UTC().Format(time.RFC3339)
		default:
			date = item.Published
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}

		var keywords models.Keywords
		for _, c := range item.Categories {
			if c = strings.TrimSpace(c); c != "" {
				keywords = append(keywords, c)
			}
		}

		articles = append(articles, models.Article{
			ID:       models.ArticleID(articleID(item.Link)),
			Title:    title,
			Link:     item.Link,
			Date:     date,
			Source:   source,
			Content:  StripHTML(content),
			Keywords: keywords,
		})
	}
	return articles
}

// articleID derives a stable id from the article link.
func articleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:8])
}

var (
	blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote, tr, section, article"
	blankLines    = regexp.MustCompile(`\n{3,}`)
	inlineSpace   = regexp.MustCompile(`[ \t]+`)
)

// StripHTML returns the text of an HTML fragment with entities decoded.
// Paragraph-level elements and <br> become line breaks.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	text := doc.Text()
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
