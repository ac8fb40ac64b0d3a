package storage

import (
	"context"
	"strings"
)

// VotePrefix prefixes the locally kept vote counts used when there is no
// news service to count votes.
const VotePrefix = "vote-"

// VoteKey returns the key holding the local vote count for an article.
func VoteKey(title string) string {
	return VotePrefix + strings.TrimSpace(title)
}

// VoteCount returns the local vote count for an article, zero if it was never
// voted on.
func (s *Store) VoteCount(ctx context.Context, title string) (int, error) {
	var n int
	if err := s.getLenient(ctx, VoteKey(title), &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Vote adds delta to the local vote count of an article and returns the new
// count. Counts may go negative, as they do on the news service.
func (s *Store) Vote(ctx context.Context, title string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.VoteCount(ctx, title)
	if err != nil {
		return 0, err
	}
	n += delta
	if err := s.Set(ctx, VoteKey(title), n); err != nil {
		return 0, err
	}
	return n, nil
}
