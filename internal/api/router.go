// Package api serves the local reader API: the news list and its votes,
// summaries, the saved list with its exports, the session and checkout. It
// answers from the news service or, without one, from the offline feeds.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oneminnews/oneminnews/internal/api/handlers"
	"github.com/oneminnews/oneminnews/internal/app"
	"github.com/oneminnews/oneminnews/internal/feed"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(a *app.App) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	defaults := feed.Page{Limit: a.Config.Feed.PageSize, Filter: a.DefaultFilter()}

	r.Route("/api", func(api chi.Router) {
		api.Use(Sessions(a.Sessions))

		api.Get("/news", handlers.ListNews(a.Backend, defaults))
		api.Post("/news/vote", handlers.Vote(a.Backend))
		api.Post("/news/refresh", handlers.Refresh(a))
		api.Get("/sources", handlers.Sources(a.Backend))
		api.Get("/article", handlers.GetArticle(a.Backend))

		api.Post("/summary", handlers.Summarize(a.Summaries, a.Backend))

		api.Get("/saved", handlers.GetSaved(a.Store))
		api.Post("/saved", handlers.SaveArticle(a.Cards))
		api.Delete("/saved", handlers.UnsaveArticle(a.Store, a.Cards))
		api.Get("/saved/export", handlers.ExportSaved(a.Store, time.Now))

		api.Get("/session", handlers.GetSession())
		api.Post("/session", handlers.Login(a.Sessions))
		api.Delete("/session", handlers.Logout(a.Sessions))

		api.Post("/checkout", handlers.Checkout(checkout(a)))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

func checkout(a *app.App) handlers.CheckoutFunc {
	return func(ctx context.Context) (string, error) {
		url, err := a.Checkout(ctx)
		if errors.Is(err, app.ErrOffline) {
			return "", fmt.Errorf("%w: %v", handlers.ErrCheckoutUnavailable, err)
		}
		return url, err
	}
}
