// Package interact holds the per-article state of the reader: like, trash,
// save and expand, with the vote and save calls those toggles make.
package interact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/session"
)

// Voter applies a vote delta to an article and returns the new count.
type Voter interface {
	Vote(ctx context.Context, title string, delta int) (int, error)
}

// SavedStore is the local saved list.
type SavedStore interface {
	IsSaved(ctx context.Context, key string) (bool, error)
	PutSavedArticle(ctx context.Context, article models.SavedArticle) error
	RemoveSavedArticle(ctx context.Context, key string) error
	CachedSummary(ctx context.Context, articleKey, variant string) (string, bool, error)
}

// RemoteSaver is the per-user saved list kept by the news service.
type RemoteSaver interface {
	SaveArticle(ctx context.Context, userID, newsID string, user *models.User) error
	UnsaveArticle(ctx context.Context, userID, newsID string) error
}

// SummaryVariants are checked, in order, for a summary to keep with a saved
// article.
var SummaryVariants = []string{"detailed", "brief"}

// State is what a card shows.
type State struct {
	Liked     bool `json:"liked"`
	Trashed   bool `json:"trashed"`
	Saved     bool `json:"saved"`
	Expanded  bool `json:"expanded"`
	VoteCount int  `json:"vote_count"`
}

// Card is the interaction state of one article. Like and trash exclude each
// other. Every toggle flips the local state first and then calls the
// service; a failed call is logged and returned but not undone.
type Card struct {
	article models.Article
	voter   Voter
	store   SavedStore
	remote  RemoteSaver

	mu    sync.Mutex
	state State

	// saveMu is held for a whole save or unsave, store and service calls
	// included, so two toggles never race on the same article.
	saveMu sync.Mutex
}

func newCard(a models.Article, voter Voter, store SavedStore, remote RemoteSaver) *Card {
	return &Card{
		article: a,
		voter:   voter,
		store:   store,
		remote:  remote,
		state:   State{VoteCount: a.VoteCount},
	}
}

// Article returns the article the card belongs to.
func (c *Card) Article() models.Article { return c.article }

// State returns a copy of the card's state.
func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ToggleLike likes the article, clearing trash, or takes the like back.
// Liking sends +1 and unliking sends -1, whatever the trash flag was.
func (c *Card) ToggleLike(ctx context.Context) (State, error) {
	c.mu.Lock()
	delta := 1
	if c.state.Liked {
		c.state.Liked = false
		delta = -1
	} else {
		c.state.Liked = true
		c.state.Trashed = false
	}
	c.mu.Unlock()

	return c.vote(ctx, delta)
}

// ToggleTrash trashes the article, clearing like, or takes the trash back.
// Trashing sends -1 and untrashing sends +1.
func (c *Card) ToggleTrash(ctx context.Context) (State, error) {
	c.mu.Lock()
	delta := -1
	if c.state.Trashed {
		c.state.Trashed = false
		delta = 1
	} else {
		c.state.Trashed = true
		c.state.Liked = false
	}
	c.mu.Unlock()

	return c.vote(ctx, delta)
}

// vote shows delta right away and then adopts the count the service
// returns.
func (c *Card) vote(ctx context.Context, delta int) (State, error) {
	c.mu.Lock()
	c.state.VoteCount += delta
	c.mu.Unlock()

	count, err := c.voter.Vote(ctx, c.article.Key(), delta)
	if err != nil {
		slog.Warn("vote failed", "title", c.article.Key(), "delta", delta, "error", err)
		return c.State(), fmt.Errorf("voting on %q: %w", c.article.Key(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.VoteCount = count
	return c.state, nil
}

// ToggleSave adds the article to the saved list or removes it. The local
// list is always updated; with a session in ctx the service's list is
// updated too, and a failure there is only logged.
func (c *Card) ToggleSave(ctx context.Context) (State, error) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	return c.setSaved(ctx, !c.syncSaved(ctx))
}

// SetSaved saves or unsaves the article. It does nothing when the saved
// list already agrees, which is checked against the store since the list
// may have changed behind the card's back.
func (c *Card) SetSaved(ctx context.Context, saved bool) (State, error) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if c.syncSaved(ctx) == saved {
		return c.State(), nil
	}
	return c.setSaved(ctx, saved)
}

// syncSaved refreshes the Saved flag from the store and returns it. When the
// store cannot be read the card keeps what it had.
func (c *Card) syncSaved(ctx context.Context) bool {
	stored, err := c.store.IsSaved(ctx, c.article.Key())

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		slog.Debug("reading saved flag failed", "title", c.article.Key(), "error", err)
	} else {
		c.state.Saved = stored
	}
	return c.state.Saved
}

// setSaved does the work of a save toggle. Callers hold c.saveMu.
func (c *Card) setSaved(ctx context.Context, saved bool) (State, error) {
	c.mu.Lock()
	c.state.Saved = saved
	c.mu.Unlock()

	key := c.article.Key()
	var err error
	if saved {
		err = c.store.PutSavedArticle(ctx, models.Snapshot(c.article, c.cachedSummary(ctx)))
	} else {
		err = c.store.RemoveSavedArticle(ctx, key)
	}
	if err != nil {
		slog.Warn("updating saved list failed", "title", key, "saved", saved, "error", err)
		return c.State(), fmt.Errorf("updating saved list: %w", err)
	}

	if s, ok := session.FromContext(ctx); ok && c.remote != nil {
		var rerr error
		if saved {
			rerr = c.remote.SaveArticle(ctx, s.User.ID, c.article.RemoteID(), &s.User)
		} else {
			rerr = c.remote.UnsaveArticle(ctx, s.User.ID, c.article.RemoteID())
		}
		if rerr != nil {
			slog.Warn("updating remote saved list failed",
				"title", key, "user_id", s.User.ID, "saved", saved, "error", rerr)
		}
	}

	return c.State(), nil
}

// cachedSummary returns any summary already generated for the article.
func (c *Card) cachedSummary(ctx context.Context) string {
	for _, variant := range SummaryVariants {
		text, ok, err := c.store.CachedSummary(ctx, c.article.Key(), variant)
		if err != nil {
			slog.Debug("reading cached summary failed", "title", c.article.Key(), "error", err)
			continue
		}
		if ok {
			return text
		}
	}
	return ""
}

// ToggleExpanded opens or closes the card's detail view.
func (c *Card) ToggleExpanded() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Expanded = !c.state.Expanded
	return c.state
}
