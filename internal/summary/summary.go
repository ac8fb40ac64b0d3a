// Package summary produces article summaries and keeps every one it
// produces. A summary is generated once per article and variant; after that
// it is served from the local cache until someone asks for a refresh.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oneminnews/oneminnews/internal/ai"
	"github.com/oneminnews/oneminnews/internal/feeds"
	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/storage"
)

// FailureText is what the reader shows in place of a summary that could not
// be generated.
const FailureText = "Failed to generate summary. Please try again."

// generateTimeout bounds one shared generation, which outlives the request
// that started it.
const generateTimeout = 2 * time.Minute

// DefaultVariant is used when no variant is asked for.
const DefaultVariant = ai.VariantDetailed

var (
	// ErrNoContent is returned when there is nothing to summarize.
	ErrNoContent = errors.New("article has no content to summarize")
	// ErrUnknownVariant is returned for variants other than brief and
	// detailed.
	ErrUnknownVariant = errors.New("unknown summary variant")
)

// Summarizer turns article text into a summary. The text it returns may
// contain HTML.
type Summarizer interface {
	Summarize(ctx context.Context, content, variant string) (string, error)
}

// TextExtractor fetches the readable text of a page.
type TextExtractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// Cache stores summaries by article key and variant.
type Cache interface {
	CachedSummary(ctx context.Context, articleKey, variant string) (string, bool, error)
	PutSummary(ctx context.Context, articleKey, variant, summary string) error
}

// Service hands out summaries, generating each one at most once.
type Service struct {
	summarizer Summarizer
	cache      Cache
	extractor  TextExtractor

	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithExtractor lets the service fetch an article's text from its link when
// the article carries no content.
func WithExtractor(e TextExtractor) Option {
	return func(s *Service) { s.extractor = e }
}

// NewService creates a Service.
func NewService(summarizer Summarizer, cache Cache, opts ...Option) *Service {
	s := &Service{summarizer: summarizer, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the summary of a in variant, from the cache when it has one.
// Concurrent misses for the same article and variant share one call to the
// summarizer.
func (s *Service) Get(ctx context.Context, a models.Article, variant string) (string, error) {
	variant, err := normalizeVariant(variant)
	if err != nil {
		return "", err
	}

	if text, ok := s.Cached(ctx, a, variant); ok {
		return text, nil
	}
	return s.generate(ctx, a, variant)
}

// Refresh generates the summary again and overwrites the cached one.
func (s *Service) Refresh(ctx context.Context, a models.Article, variant string) (string, error) {
	variant, err := normalizeVariant(variant)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, a, variant)
}

// Cached returns the cached summary without generating one.
func (s *Service) Cached(ctx context.Context, a models.Article, variant string) (string, bool) {
	if variant == "" {
		variant = DefaultVariant
	}
	text, ok, err := s.cache.CachedSummary(ctx, a.Key(), variant)
	if err != nil {
		slog.Warn("reading cached summary failed", "title", a.Key(), "variant", variant, "error", err)
		return "", false
	}
	return text, ok
}

func (s *Service) generate(ctx context.Context, a models.Article, variant string) (string, error) {
	key := storage.SummaryKey(a.Key(), variant)

	ch := s.group.DoChan(key, func() (any, error) {
		// Callers share this call, so it must not die with the first one.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()

		content, err := s.content(ctx, a)
		if err != nil {
			return "", err
		}

		raw, err := s.summarizer.Summarize(ctx, content, variant)
		if err != nil {
			return "", fmt.Errorf("summarizing %q: %w", a.Key(), err)
		}
		text := feeds.StripHTML(raw)
		if text == "" {
			return "", fmt.Errorf("summarizing %q: empty summary", a.Key())
		}

		if err := s.cache.PutSummary(ctx, a.Key(), variant, text); err != nil {
			slog.Warn("caching summary failed", "title", a.Key(), "variant", variant, "error", err)
		}
		return text, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if res.Err != nil {
		slog.Warn("summary generation failed", "title", a.Key(), "variant", variant, "error", res.Err)
		return "", res.Err
	}

	slog.Debug("generated summary", "title", a.Key(), "variant", variant, "shared", res.Shared)
	return res.Val.(string), nil
}

// content returns the text to summarize: the article's content, or the
// readable text behind its link.
func (s *Service) content(ctx context.Context, a models.Article) (string, error) {
	if c := strings.TrimSpace(a.Content); c != "" {
		return c, nil
	}
	if s.extractor == nil || a.Link == "" {
		return "", ErrNoContent
	}

	text, err := s.extractor.ExtractText(ctx, a.Link)
	if err != nil {
		return "", fmt.Errorf("fetching article text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func normalizeVariant(v string) (string, error) {
	if v == "" {
		return DefaultVariant, nil
	}
	if !ai.ValidVariant(v) {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	return v, nil
}
