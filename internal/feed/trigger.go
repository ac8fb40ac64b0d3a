package feed

import (
	"context"
	"sync"
)

// DefaultThreshold is how many rows before the end of the list the sentinel
// sits.
const DefaultThreshold = 3

// Result reports how a load ended.
type Result struct {
	Page  Page
	Added int
	Err   error
	// Busy is set when another load was already in flight and nothing was
	// requested.
	Busy bool
	// Stale is set when the list was reset while the page was loading; the
	// page was discarded.
	Stale bool
}

// Trigger starts page loads when the reader's cursor reaches the sentinel
// near the end of the list. Loads run on their own goroutines; Wait blocks
// until they are done.
type Trigger struct {
	pager     *Pager
	threshold int
	wg        sync.WaitGroup
}

// NewTrigger creates a trigger for pager. The sentinel sits threshold rows
// before the last loaded article.
func NewTrigger(pager *Pager, threshold int) *Trigger {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Trigger{pager: pager, threshold: threshold}
}

// Pager returns the pager the trigger drives.
func (t *Trigger) Pager() *Pager { return t.pager }

// SentinelVisible reports whether a cursor at row cursor of a list with
// total rows can see the sentinel. An empty list always can.
func (t *Trigger) SentinelVisible(cursor, total int) bool {
	if total == 0 {
		return true
	}
	return cursor >= total-1-t.threshold
}

// Intersect starts loading the next page unless a load is already in
// flight, in which case it returns nil. The returned channel yields exactly
// one Result and is then closed.
func (t *Trigger) Intersect(ctx context.Context) <-chan Result {
	req, ok := t.pager.begin(ctx)
	if !ok {
		return nil
	}

	ch := make(chan Result, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(ch)
		ch <- t.pager.run(req)
	}()
	return ch
}

// Subscribe restarts the list under a new filter and immediately loads its
// first page.
func (t *Trigger) Subscribe(ctx context.Context, filter Filter) <-chan Result {
	t.pager.Reset(filter)
	return t.Intersect(ctx)
}

// Wait blocks until every load started by Intersect has finished.
func (t *Trigger) Wait() {
	t.wg.Wait()
}
