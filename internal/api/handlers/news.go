package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/models"
)

// MaxPageSize bounds the limit parameter of the news list.
const MaxPageSize = 50

// Voter applies a vote delta to an article.
type Voter interface {
	Vote(ctx context.Context, title string, delta int) (int, error)
}

// SourceLister lists the names accepted by the source filter.
type SourceLister interface {
	Sources(ctx context.Context) ([]string, error)
}

// ArticleGetter looks an article up by title.
type ArticleGetter interface {
	Article(ctx context.Context, title string) (models.Article, error)
}

// ListNews handles GET /api/news. It returns one page of articles selected
// by the offset, limit, source and sort query parameters.
func ListNews(lister feed.Lister, defaults feed.Page) http.HandlerFunc {
	if defaults.Limit <= 0 {
		defaults.Limit = feed.DefaultLimit
	}
	return func(w http.ResponseWriter, r *http.Request) {
		offset, err := queryInt(r, "offset", 0)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		limit, err := queryInt(r, "limit", defaults.Limit)
		if err != nil || limit < 1 || limit > MaxPageSize {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(MaxPageSize))
			return
		}

		page := feed.Page{Offset: offset, Limit: limit, Filter: defaults.Filter}
		q := r.URL.Query()
		if q.Has("source") {
			page.Filter.Source = q.Get("source")
		}
		if q.Has("sort") {
			page.Filter.Sort = q.Get("sort")
		}

		articles, err := lister.List(r.Context(), page)
		if err != nil {
			slog.Error("failed to list news", "offset", offset, "limit", limit, "error", err)
			writeError(w, upstreamStatus(err), "Failed to load news")
			return
		}
		if articles == nil {
			articles = []models.Article{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"news": articles})
	}
}

// Vote handles POST /api/news/vote. The title and delta query parameters
// name the article and the change, +1 or -1. It returns the new count.
func Vote(voter Voter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := strings.TrimSpace(r.URL.Query().Get("title"))
		if title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		delta, err := queryInt(r, "delta", 0)
		if err != nil || (delta != 1 && delta != -1) {
			writeError(w, http.StatusBadRequest, "delta must be 1 or -1")
			return
		}

		count, err := voter.Vote(r.Context(), title, delta)
		if err != nil {
			slog.Warn("vote failed", "title", title, "delta", delta, "error", err)
			writeError(w, upstreamStatus(err), "Failed to record vote")
			return
		}

		writeJSON(w, http.StatusOK, models.VoteResult{Count: count})
	}
}

// Sources handles GET /api/sources.
func Sources(lister SourceLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := lister.Sources(r.Context())
		if err != nil {
			slog.Error("failed to list sources", "error", err)
			writeError(w, upstreamStatus(err), "Failed to load sources")
			return
		}
		if sources == nil {
			sources = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
	}
}

// GetArticle handles GET /api/article?title=.
func GetArticle(getter ArticleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := strings.TrimSpace(r.URL.Query().Get("title"))
		if title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		a, err := getter.Article(r.Context(), title)
		if err != nil {
			status := upstreamStatus(err)
			if status == http.StatusNotFound {
				writeError(w, status, "Article not found")
				return
			}
			slog.Error("failed to get article", "title", title, "error", err)
			writeError(w, status, "Failed to load article")
			return
		}

		writeJSON(w, http.StatusOK, a)
	}
}

// Refresher fetches the news again.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Refresh handles POST /api/news/refresh.
func Refresh(refresher Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := refresher.Refresh(r.Context())
		if err != nil {
			slog.Error("refresh failed", "error", err)
			writeError(w, upstreamStatus(err), "Failed to refresh news")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}
