package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/feeds"
	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/newsapi"
	"github.com/oneminnews/oneminnews/internal/storage"
)

// ErrNoSummarizer is returned for summaries when the reader runs without a
// news service and without an AI provider.
var ErrNoSummarizer = errors.New("no summarizer: set api.base_url or an ai.api_key")

// Backend is where the article list and its vote counts come from.
type Backend interface {
	feed.Lister
	Vote(ctx context.Context, title string, delta int) (int, error)
	Sources(ctx context.Context) ([]string, error)
	Article(ctx context.Context, title string) (models.Article, error)
}

// remoteBackend serves everything from the news service.
type remoteBackend struct {
	client *newsapi.Client
}

func (b remoteBackend) List(ctx context.Context, page feed.Page) ([]models.Article, error) {
	return b.client.List(ctx, page)
}

func (b remoteBackend) Vote(ctx context.Context, title string, delta int) (int, error) {
	return b.client.Vote(ctx, title, delta)
}

func (b remoteBackend) Sources(ctx context.Context) ([]string, error) {
	return b.client.Sources(ctx)
}

func (b remoteBackend) Article(ctx context.Context, title string) (models.Article, error) {
	return b.client.ArticleByTitle(ctx, title)
}

// offlineBackend reads the configured feeds and counts votes locally.
type offlineBackend struct {
	source *feeds.Source
	store  *storage.Store
}

func (b offlineBackend) List(ctx context.Context, page feed.Page) ([]models.Article, error) {
	articles, err := b.source.List(ctx, page)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		n, err := b.store.VoteCount(ctx, articles[i].Key())
		if err != nil {
			slog.Debug("reading local vote count failed", "title", articles[i].Key(), "error", err)
			continue
		}
		articles[i].VoteCount = n
	}
	return articles, nil
}

func (b offlineBackend) Vote(ctx context.Context, title string, delta int) (int, error) {
	return b.store.Vote(ctx, title, delta)
}

func (b offlineBackend) Sources(_ context.Context) ([]string, error) {
	return b.source.Sources(), nil
}

func (b offlineBackend) Article(ctx context.Context, title string) (models.Article, error) {
	a, err := b.source.Article(ctx, title)
	if err != nil {
		return models.Article{}, err
	}
	if n, err := b.store.VoteCount(ctx, a.Key()); err == nil {
		a.VoteCount = n
	}
	return a, nil
}

// unavailableSummarizer fails every request.
type unavailableSummarizer struct{}

func (unavailableSummarizer) Summarize(context.Context, string, string) (string, error) {
	return "", ErrNoSummarizer
}
