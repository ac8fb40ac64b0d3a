package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/summary"
)

// Summaries hands out article summaries.
type Summaries interface {
	Get(ctx context.Context, a models.Article, variant string) (string, error)
	Refresh(ctx context.Context, a models.Article, variant string) (string, error)
}

type summaryRequest struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Refresh bool   `json:"refresh"`
}

// Summarize handles POST /api/summary. The body names the article by title
// and may carry its link and content; when it carries neither, the article
// is looked up by title first. The summary is generated once and served
// from the local cache afterwards unless refresh is set.
func Summarize(summaries Summaries, getter ArticleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		a := models.Article{Title: body.Title, Link: body.Link, Content: body.Content}
		if a.Link == "" && strings.TrimSpace(a.Content) == "" && getter != nil {
			found, err := getter.Article(ctx, body.Title)
			if err != nil {
				writeError(w, upstreamStatus(err), "Article not found")
				return
			}
			a = found
		}

		get := summaries.Get
		if body.Refresh {
			get = summaries.Refresh
		}
		text, err := get(ctx, a, body.Type)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{"summary": text, "type": variantOrDefault(body.Type)})
		case errors.Is(err, summary.ErrUnknownVariant):
			writeError(w, http.StatusBadRequest, "type must be \"brief\" or \"detailed\"")
		case errors.Is(err, summary.ErrNoContent):
			writeError(w, http.StatusUnprocessableEntity, summary.FailureText)
		default:
			slog.Warn("summary failed", "title", a.Key(), "type", body.Type, "error", err)
			writeError(w, http.StatusBadGateway, summary.FailureText)
		}
	}
}

func variantOrDefault(v string) string {
	if v == "" {
		return summary.DefaultVariant
	}
	return v
}
