package interact

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oneminnews/oneminnews/internal/models"
)

// Cards hands out one Card per article key, so that the state survives the
// list being redrawn or reloaded.
type Cards struct {
	voter  Voter
	store  SavedStore
	remote RemoteSaver

	mu    sync.Mutex
	cards map[string]*Card
}

// NewCards creates an empty registry. remote may be nil.
func NewCards(voter Voter, store SavedStore, remote RemoteSaver) *Cards {
	return &Cards{
		voter:  voter,
		store:  store,
		remote: remote,
		cards:  make(map[string]*Card),
	}
}

// Get returns the card for a, creating it with the saved flag read from the
// local saved list.
func (cs *Cards) Get(ctx context.Context, a models.Article) *Card {
	key := a.Key()

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := cs.cards[key]; ok {
		return c
	}

	c := newCard(a, cs.voter, cs.store, cs.remote)
	saved, err := cs.store.IsSaved(ctx, key)
	if err != nil {
		slog.Warn("reading saved state failed", "title", key, "error", err)
	}
	c.state.Saved = saved
	cs.cards[key] = c
	return c
}

// Lookup returns the card for key if one was created.
func (cs *Cards) Lookup(key string) (*Card, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.cards[key]
	return c, ok
}

// Forget drops every card, for instance after the saved list changed
// elsewhere.
func (cs *Cards) Forget() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	clear(cs.cards)
}
