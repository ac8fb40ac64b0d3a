// Package feeds reads news straight from RSS and Atom feeds. It backs the
// reader when no news service is configured, and extracts readable article
// text for summaries.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/oneminnews/oneminnews/internal/models"
)

const (
	httpTimeout   = 30 * time.Second
	maxConcurrent = 10
	maxWords      = 5000
)

// FeedConfig names one feed.
type FeedConfig struct {
	Name string `toml:"name" json:"name"`
	URL  string `toml:"url" json:"url"`
}

// FailedFeed records a feed that could not be fetched.
type FailedFeed struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// FetchResult contains the fetched articles and any failures.
type FetchResult struct {
	Articles []models.Article
	Failed   []FailedFeed
}

// Fetcher fetches feeds and pages with bounded concurrency and a request
// budget per domain.
type Fetcher struct {
	client *http.Client
	limit  rate.Limit
	burst  int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithDomainRate sets how many requests per second may go to one domain.
func WithDomainRate(limit rate.Limit, burst int) FetcherOption {
	return func(f *Fetcher) {
		f.limit = limit
		f.burst = burst
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// NewFetcher creates a Fetcher that sends at most one request per second to
// any one domain.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout:   httpTimeout,
			Transport: &userAgentTransport{base: http.DefaultTransport},
		},
		limit:    rate.Every(time.Second),
		burst:    1,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// userAgentTransport wraps an http.RoundTripper to inject browser-like
// headers on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	browserHeaders(req)
	return t.base.RoundTrip(req)
}

// FetchAll fetches every feed concurrently. A feed that fails is recorded in
// FetchResult.Failed and does not fail the batch.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []FeedConfig) (*FetchResult, error) {
	var (
		result FetchResult
		mu     sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, fc := range feeds {
		g.Go(func() error {
			articles, err := f.fetchFeed(ctx, fc)
			if err != nil {
				slog.Warn("failed to fetch feed",
					"source", fc.Name,
					"url", fc.URL,
					"error", err,
				)

				mu.Lock()
				result.Failed = append(result.Failed, FailedFeed{
					Source: fc.Name,
					Error:  err.Error(),
				})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			result.Articles = append(result.Articles, articles...)
			mu.Unlock()

			slog.Debug("fetched feed", "source", fc.Name, "items", len(articles))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}
	return &result, nil
}

// fetchFeed retrieves and parses one feed.
func (f *Fetcher) fetchFeed(ctx context.Context, fc FeedConfig) ([]models.Article, error) {
	if err := f.wait(ctx, fc.URL); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(fc.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", fc.URL, err)
	}

	name := fc.Name
	if name == "" {
		name = feed.Title
	}
	return parseFeedItems(name, feed), nil
}

// ExtractText fetches the page at articleURL and returns its readable text,
// cut to 5000 words.
func (f *Fetcher) ExtractText(ctx context.Context, articleURL string) (string, error) {
	if err := f.wait(ctx, articleURL); err != nil {
		return "", err
	}

	text, err := extractFullText(ctx, f.client, articleURL)
	if err != nil {
		return "", fmt.Errorf("extracting article from %q: %w", articleURL, err)
	}
	return truncateWords(text, maxWords), nil
}

// wait blocks until the domain of rawURL may be sent another request.
func (f *Fetcher) wait(ctx context.Context, rawURL string) error {
	domain := extractDomain(rawURL)

	f.mu.Lock()
	lim, ok := f.limiters[domain]
	if !ok {
		lim = rate.NewLimiter(f.limit, f.burst)
		f.limiters[domain] = lim
	}
	f.mu.Unlock()

	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("waiting to contact %s: %w", domain, err)
	}
	return nil
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
