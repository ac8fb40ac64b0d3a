// Package app wires the reader together from its configuration: the local
// store, the news service client or the offline feeds, summaries, sessions
// and the per-article cards. The CLI, the terminal reader and the local API
// all start from an App.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oneminnews/oneminnews/internal/ai"
	"github.com/oneminnews/oneminnews/internal/config"
	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/feeds"
	"github.com/oneminnews/oneminnews/internal/interact"
	"github.com/oneminnews/oneminnews/internal/newsapi"
	"github.com/oneminnews/oneminnews/internal/session"
	"github.com/oneminnews/oneminnews/internal/storage"
	"github.com/oneminnews/oneminnews/internal/summary"
)

// ErrOffline is returned by operations that need the news service.
var ErrOffline = errors.New("not available without a news service (api.base_url)")

// Options adjust how an App is built.
type Options struct {
	// Offline reads the configured feeds even when a news service is set.
	Offline bool
	// Store replaces the database at the configured path.
	Store *storage.Store
}

// App holds the reader's long-lived components.
type App struct {
	Config    *config.Config
	Store     *storage.Store
	Backend   Backend
	Client    *newsapi.Client // nil when offline
	Source    *feeds.Source   // nil when online
	Summaries *summary.Service
	Sessions  *session.Manager
	Cards     *interact.Cards

	ownStore bool
}

// New builds an App from cfg.
func New(cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg, Store: opts.Store}
	if a.Store == nil {
		store, err := storage.Open(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("opening local store: %w", err)
		}
		a.Store = store
		a.ownStore = true
	}

	fetcher := feeds.NewFetcher()

	var (
		summarizer summary.Summarizer
		remote     interact.RemoteSaver
		registrar  session.Registrar
	)
	if cfg.Offline() || opts.Offline {
		a.Source = feeds.NewSource(fetcher, cfg.Offline.Feeds, cfg.RefreshInterval())
		a.Backend = offlineBackend{source: a.Source, store: a.Store}
		summarizer = offlineSummarizer(cfg)
		slog.Info("reading feeds directly", "feeds", len(cfg.Offline.Feeds))
	} else {
		a.Client = newsapi.New(cfg.API.BaseURL, newsapi.WithTimeout(cfg.APITimeout()))
		a.Backend = remoteBackend{client: a.Client}
		summarizer = a.Client
		remote = a.Client
		registrar = a.Client
		slog.Info("using news service", "base_url", cfg.API.BaseURL)
	}

	a.Summaries = summary.NewService(summarizer, a.Store, summary.WithExtractor(fetcher))
	a.Sessions = session.NewManager(a.Store, registrar)
	a.Cards = interact.NewCards(a.Backend, a.Store, remote)
	return a, nil
}

func offlineSummarizer(cfg *config.Config) summary.Summarizer {
	if cfg.AI.APIKey == "" {
		slog.Warn("no AI provider API key configured, summaries are disabled")
		return unavailableSummarizer{}
	}
	p, err := ai.NewProvider(ai.ProviderConfig{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
	})
	if err != nil {
		slog.Warn("AI provider unavailable, summaries are disabled", "error", err)
		return unavailableSummarizer{}
	}
	slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	return p
}

// Offline reports whether the App reads feeds instead of the news service.
func (a *App) Offline() bool {
	return a.Client == nil
}

// Close releases the local store if the App opened it.
func (a *App) Close() error {
	if a.ownStore {
		return a.Store.Close()
	}
	return nil
}

// Context returns ctx carrying the stored session, if someone is signed in.
func (a *App) Context(ctx context.Context) context.Context {
	s, err := a.Sessions.Load(ctx)
	if err != nil {
		slog.Warn("loading session failed", "error", err)
		return ctx
	}
	if s == nil {
		return ctx
	}
	return session.WithSession(ctx, s)
}

// NewTrigger returns a scroll trigger over a pager on the backend, sized
// from the configured feed settings.
func (a *App) NewTrigger() *feed.Trigger {
	pager := feed.NewPager(a.Backend, a.Config.Feed.PageSize)
	return feed.NewTrigger(pager, a.Config.Feed.ScrollThreshold)
}

// DefaultFilter is the list filter from the configuration.
func (a *App) DefaultFilter() feed.Filter {
	return feed.Filter{Source: a.Config.Feed.Source, Sort: a.Config.Feed.Sort}
}

// Checkout starts a subscription checkout and returns its URL.
func (a *App) Checkout(ctx context.Context) (string, error) {
	if a.Client == nil {
		return "", ErrOffline
	}
	return a.Client.CreateCheckoutSession(ctx)
}

// Refresh asks the news service, or the offline feeds, to fetch again.
func (a *App) Refresh(ctx context.Context) (string, error) {
	if a.Client != nil {
		return a.Client.Refresh(ctx)
	}
	if err := a.Source.Refresh(ctx); err != nil {
		return "", err
	}
	return "feeds refreshed", nil
}
