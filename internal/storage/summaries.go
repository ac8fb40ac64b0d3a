package storage

import (
	"context"
	"errors"
	"fmt"
)

// SummaryPrefix starts every cached summary key.
const SummaryPrefix = "summary-"

// SummaryKey returns the cache key for the summary of the article with the
// given key in the given variant.
func SummaryKey(articleKey, variant string) string {
	return fmt.Sprintf("%s%s-%s", SummaryPrefix, articleKey, variant)
}

// CachedSummary returns the stored summary. ok is false when none exists or
// the stored value is unreadable.
func (s *Store) CachedSummary(ctx context.Context, articleKey, variant string) (summary string, ok bool, err error) {
	err = s.Get(ctx, SummaryKey(articleKey, variant), &summary)
	switch {
	case err == nil:
		return summary, summary != "", nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
		return "", false, nil
	default:
		return "", false, err
	}
}

// PutSummary stores a summary. Summaries never expire.
func (s *Store) PutSummary(ctx context.Context, articleKey, variant, summary string) error {
	return s.Set(ctx, SummaryKey(articleKey, variant), summary)
}

// DeleteSummary drops a cached summary.
func (s *Store) DeleteSummary(ctx context.Context, articleKey, variant string) error {
	return s.Delete(ctx, SummaryKey(articleKey, variant))
}
