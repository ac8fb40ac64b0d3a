package storage

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/oneminnews/oneminnews/internal/models"
)

// Keys of the saved list. The id list answers "is this saved?" for cards;
// the snapshot list feeds the saved page and exports.
const (
	KeySavedIDs      = "saved_article_ids"
	KeySavedArticles = "savedArticles"
)

// getLenient is Get for values that have a sensible empty default: a missing
// key or an undecodable value leaves dest untouched and returns nil.
func (s *Store) getLenient(ctx context.Context, key string, dest any) error {
	err := s.Get(ctx, key, dest)
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		return nil
	case errors.Is(err, ErrCorrupt):
		slog.Warn("ignoring unreadable stored value", "key", key, "error", err)
		return nil
	default:
		return err
	}
}

// SavedIDs returns the keys of saved articles in save order.
func (s *Store) SavedIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.getLenient(ctx, KeySavedIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetSavedIDs replaces the saved key list.
func (s *Store) SetSavedIDs(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ids == nil {
		ids = []string{}
	}
	return s.Set(ctx, KeySavedIDs, ids)
}

// SavedArticles returns the saved snapshots in save order.
func (s *Store) SavedArticles(ctx context.Context) ([]models.SavedArticle, error) {
	articles := []models.SavedArticle{}
	if err := s.getLenient(ctx, KeySavedArticles, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// SavedArticle returns the snapshot saved under key, or ErrNotFound.
func (s *Store) SavedArticle(ctx context.Context, key string) (models.SavedArticle, error) {
	articles, err := s.SavedArticles(ctx)
	if err != nil {
		return models.SavedArticle{}, err
	}
	for _, a := range articles {
		if a.Article().Key() == key {
			return a, nil
		}
	}
	return models.SavedArticle{}, ErrNotFound
}

// IsSaved reports whether the article with the given key is on the saved
// list.
func (s *Store) IsSaved(ctx context.Context, key string) (bool, error) {
	ids, err := s.SavedIDs(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, key), nil
}

// PutSavedArticle adds a snapshot to the saved list, or replaces the one
// with the same title.
func (s *Store) PutSavedArticle(ctx context.Context, article models.SavedArticle) error {
	key := article.Article().Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.SavedIDs(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(ids, key) {
		ids = append(ids, key)
	}

	articles, err := s.SavedArticles(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(articles, func(a models.SavedArticle) bool {
		return a.Article().Key() == key
	})
	if idx >= 0 {
		articles[idx] = article
	} else {
		articles = append(articles, article)
	}

	return s.putSaved(ctx, ids, articles)
}

// RemoveSavedArticle drops the article with the given key from both saved
// lists. Removing an article that is not saved is a no-op.
func (s *Store) RemoveSavedArticle(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.SavedIDs(ctx)
	if err != nil {
		return err
	}
	articles, err := s.SavedArticles(ctx)
	if err != nil {
		return err
	}

	ids = slices.DeleteFunc(ids, func(id string) bool { return id == key })
	articles = slices.DeleteFunc(articles, func(a models.SavedArticle) bool {
		return a.Article().Key() == key
	})

	return s.putSaved(ctx, ids, articles)
}

// putSaved writes both saved lists together. Callers hold s.mu.
func (s *Store) putSaved(ctx context.Context, ids []string, articles []models.SavedArticle) error {
	if ids == nil {
		ids = []string{}
	}
	if articles == nil {
		articles = []models.SavedArticle{}
	}
	return s.setAll(ctx, kv{KeySavedArticles, articles}, kv{KeySavedIDs, ids})
}
