// Package feed holds the article list behind the reader: a Pager that loads
// the list one page at a time, and a Trigger that asks for the next page
// when the reader nears the end of what is loaded.
package feed

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/oneminnews/oneminnews/internal/models"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 10

// Filter narrows and orders the list. The zero value lists every source in
// the service's default order.
type Filter struct {
	Source string `json:"source,omitempty"`
	Sort   string `json:"sort,omitempty"`
}

// Page is one request for articles.
type Page struct {
	Offset int
	Limit  int
	Filter Filter
}

// Lister fetches one page of articles.
type Lister interface {
	List(ctx context.Context, page Page) ([]models.Article, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context, page Page) ([]models.Article, error)

// List implements Lister.
func (f ListerFunc) List(ctx context.Context, page Page) ([]models.Article, error) {
	return f(ctx, page)
}

// State is a copy of the pager's state.
type State struct {
	Items   []models.Article
	Offset  int
	Limit   int
	Loading bool
	Filter  Filter
}

// Pager accumulates pages of articles. There is no end-of-list signal: an
// empty page advances the offset like any other, and the next LoadMore asks
// for the page after it.
//
// Only one load runs at a time. Reset drops whatever load is in flight; its
// result is discarded when it arrives.
type Pager struct {
	lister Lister
	limit  int

	mu      sync.Mutex
	items   []models.Article
	offset  int
	loading bool
	filter  Filter
	gen     uint64
	cancel  context.CancelFunc
}

// NewPager creates a pager that requests limit articles per page.
func NewPager(lister Lister, limit int) *Pager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pager{lister: lister, limit: limit}
}

// request is a load that has been started but not finished.
type request struct {
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
	page   Page
}

// begin marks the pager as loading and describes the page to fetch. ok is
// false when a load is already in flight.
func (p *Pager) begin(ctx context.Context) (req request, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loading {
		return request{}, false
	}
	p.loading = true

	rctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	return request{
		ctx:    rctx,
		cancel: cancel,
		gen:    p.gen,
		page:   Page{Offset: p.offset, Limit: p.limit, Filter: p.filter},
	}, true
}

// run fetches the page described by req and folds it into the list.
func (p *Pager) run(req request) Result {
	items, err := p.lister.List(req.ctx, req.page)
	req.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if req.gen != p.gen {
		slog.Debug("dropping page requested before reset",
			"offset", req.page.Offset, "source", req.page.Filter.Source)
		return Result{Page: req.page, Stale: true}
	}

	p.loading = false
	p.cancel = nil

	if err != nil {
		slog.Warn("loading news page failed",
			"offset", req.page.Offset,
			"limit", req.page.Limit,
			"source", req.page.Filter.Source,
			"error", err,
		)
		return Result{Page: req.page, Err: err}
	}

	if req.page.Offset == 0 {
		p.items = slices.Clone(items)
	} else {
		p.items = append(p.items, items...)
	}
	p.offset = req.page.Offset + req.page.Limit
	return Result{Page: req.page, Added: len(items)}
}

// LoadMore fetches the next page and appends it. It is a no-op returning a
// zero Result when a load is already in flight. On failure the list and the
// offset are left as they were and the error is returned.
func (p *Pager) LoadMore(ctx context.Context) Result {
	req, ok := p.begin(ctx)
	if !ok {
		return Result{Busy: true}
	}
	return p.run(req)
}

// Reset empties the list and starts over at offset 0 with filter. A load in
// flight is cancelled and its result discarded.
func (p *Pager) Reset(filter Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	p.items = nil
	p.offset = 0
	p.loading = false
	p.filter = filter
}

// Loading reports whether a load is in flight.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Len returns the number of loaded articles.
func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Snapshot returns a copy of the current state.
func (p *Pager) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Items:   slices.Clone(p.items),
		Offset:  p.offset,
		Limit:   p.limit,
		Loading: p.loading,
		Filter:  p.filter,
	}
}

// SetVoteCount updates the vote count of the loaded article with the given
// key, so that a redraw shows the count the server returned.
func (p *Pager) SetVoteCount(key string, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		if p.items[i].Key() == key {
			p.items[i].VoteCount = count
		}
	}
}
