package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oneminnews/oneminnews/internal/export"
	"github.com/oneminnews/oneminnews/internal/interact"
	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/storage"
)

// SavedList reads the local saved list.
type SavedList interface {
	SavedArticles(ctx context.Context) ([]models.SavedArticle, error)
	SavedArticle(ctx context.Context, key string) (models.SavedArticle, error)
}

// CardSource hands out the interaction card of an article.
type CardSource interface {
	Get(ctx context.Context, a models.Article) *interact.Card
}

// GetSaved handles GET /api/saved. It returns the saved snapshots in save
// order.
func GetSaved(list SavedList) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articles, err := list.SavedArticles(r.Context())
		if err != nil {
			slog.Error("failed to get saved articles", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get saved articles")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"saved_articles": articles})
	}
}

// SaveArticle handles POST /api/saved. The body is the article to save.
// With a session the article is saved on the news service too.
func SaveArticle(cards CardSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var a models.Article
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if a.Key() == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		st, err := cards.Get(ctx, a).SetSaved(ctx, true)
		if err != nil {
			slog.Error("failed to save article", "title", a.Key(), "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save article")
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

// UnsaveArticle handles DELETE /api/saved?title=.
func UnsaveArticle(list SavedList, cards CardSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		title := strings.TrimSpace(r.URL.Query().Get("title"))
		if title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		saved, err := list.SavedArticle(ctx, title)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Saved article not found")
				return
			}
			slog.Error("failed to read saved article", "title", title, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to remove saved article")
			return
		}

		st, err := cards.Get(ctx, saved.Article()).SetSaved(ctx, false)
		if err != nil {
			slog.Error("failed to unsave article", "title", title, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to remove saved article")
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// ExportSaved handles GET /api/saved/export?format=md|txt. It answers with
// the rendered saved list as a file download.
func ExportSaved(list SavedList, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "format must be \"md\" or \"txt\"")
			return
		}

		articles, err := list.SavedArticles(r.Context())
		if err != nil {
			slog.Error("failed to get saved articles", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to export saved articles")
			return
		}

		t := now()
		content, err := export.Render(format, articles, t)
		if err != nil {
			if errors.Is(err, export.ErrNothingToExport) {
				writeError(w, http.StatusNotFound, "No saved articles to export")
				return
			}
			slog.Error("failed to render export", "format", format, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to export saved articles")
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format, t)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(content))
	}
}
