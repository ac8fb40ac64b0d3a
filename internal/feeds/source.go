package feeds

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/models"
)

// DefaultRefreshInterval is how long a merged feed list is served before the
// feeds are fetched again.
const DefaultRefreshInterval = 30 * time.Minute

var (
	// ErrNoFeeds is returned when a Source has nothing configured.
	ErrNoFeeds = errors.New("no feeds configured")
	// ErrArticleNotFound is returned by Article for unknown titles.
	ErrArticleNotFound = errors.New("article not found")
)

// Source serves pages of articles merged from a set of feeds, newest first.
// It stands in for the news service's list endpoint.
type Source struct {
	fetcher  *Fetcher
	feeds    []FeedConfig
	interval time.Duration
	now      func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	articles  []models.Article
	fetchedAt time.Time
}

// NewSource creates a Source over feeds. interval <= 0 uses
// DefaultRefreshInterval.
func NewSource(fetcher *Fetcher, feeds []FeedConfig, interval time.Duration) *Source {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Source{
		fetcher:  fetcher,
		feeds:    feeds,
		interval: interval,
		now:      time.Now,
	}
}

var _ feed.Lister = (*Source)(nil)

// List implements feed.Lister. Sort orders other than newest-first are not
// available offline and fall back to it.
func (s *Source) List(ctx context.Context, page feed.Page) ([]models.Article, error) {
	all, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}

	if page.Filter.Source != "" {
		all = slices.DeleteFunc(slices.Clone(all), func(a models.Article) bool {
			return a.Source != page.Filter.Source
		})
	}

	if page.Offset >= len(all) {
		return []models.Article{}, nil
	}
	end := min(page.Offset+page.Limit, len(all))
	return slices.Clone(all[page.Offset:end]), nil
}

// Sources returns the names of the configured feeds.
func (s *Source) Sources() []string {
	names := make([]string, 0, len(s.feeds))
	for _, fc := range s.feeds {
		if fc.Name != "" && !slices.Contains(names, fc.Name) {
			names = append(names, fc.Name)
		}
	}
	return names
}

// Article returns the article with the given title from the merged list.
func (s *Source) Article(ctx context.Context, title string) (models.Article, error) {
	all, err := s.merged(ctx)
	if err != nil {
		return models.Article{}, err
	}
	key := models.Article{Title: title}.Key()
	for _, a := range all {
		if a.Key() == key {
			return a, nil
		}
	}
	return models.Article{}, ErrArticleNotFound
}

// Refresh fetches every feed now, regardless of the interval.
func (s *Source) Refresh(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

// merged returns the cached article list, refreshing it when it is older
// than the interval. Concurrent callers share one refresh.
func (s *Source) merged(ctx context.Context) ([]models.Article, error) {
	s.mu.Lock()
	if s.articles != nil && s.now().Sub(s.fetchedAt) < s.interval {
		all := s.articles
		s.mu.Unlock()
		return all, nil
	}
	s.mu.Unlock()

	return s.refresh(ctx)
}

func (s *Source) refresh(ctx context.Context) ([]models.Article, error) {
	if len(s.feeds) == 0 {
		return nil, ErrNoFeeds
	}

	v, err, _ := s.group.Do("refresh", func() (any, error) {
		res, err := s.fetcher.FetchAll(ctx, s.feeds)
		if err != nil {
			return nil, err
		}
		if len(res.Articles) == 0 && len(res.Failed) > 0 {
			return nil, errors.New("every feed failed: " + res.Failed[0].Error)
		}

		all := slices.Clone(res.Articles)
		slices.SortStableFunc(all, newestFirst)
		all = dedupe(all)

		s.mu.Lock()
		s.articles = all
		s.fetchedAt = s.now()
		s.mu.Unlock()
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Article), nil
}

// dedupe drops articles whose title was already seen, keeping the first.
func dedupe(articles []models.Article) []models.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if seen[a.Key()] {
			continue
		}
		seen[a.Key()] = true
		out = append(out, a)
	}
	return out
}

// newestFirst orders articles by date, newest first; undated articles sort
// last.
func newestFirst(a, b models.Article) int {
	ta, oka := models.ParseDate(a.When())
	tb, okb := models.ParseDate(b.When())
	switch {
	case oka && okb:
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	case oka:
		return -1
	case okb:
		return 1
	default:
		return cmp.Compare(a.Title, b.Title)
	}
}
