package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oneminnews/oneminnews/internal/models"
)

func TestSavedArticles_EmptyDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.SavedIDs(ctx)
	if err != nil {
		t.Fatalf("SavedIDs() error: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("SavedIDs() = %#v, want empty non-nil slice", ids)
	}

	articles, err := s.SavedArticles(ctx)
	if err != nil {
		t.Fatalf("SavedArticles() error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("SavedArticles() = %v, want empty", articles)
	}
}

func TestSavedArticles_CorruptFallsBackToEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.DB().Exec(
		`INSERT INTO local_store (key, value) VALUES (?, 'oops'), (?, '[1,')`,
		KeySavedIDs, KeySavedArticles,
	); err != nil {
		t.Fatalf("seeding rows: %v", err)
	}

	ids, err := s.SavedIDs(ctx)
	if err != nil {
		t.Fatalf("SavedIDs() error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("SavedIDs() = %v, want empty", ids)
	}
	articles, err := s.SavedArticles(ctx)
	if err != nil {
		t.Fatalf("SavedArticles() error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("SavedArticles() = %v, want empty", articles)
	}
}

func TestPutSavedArticle_ReplacesByTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := models.SavedArticle{Title: "Story", Link: "https://a"}
	second := models.SavedArticle{Title: "Story", Link: "https://a", Summary: "short"}

	if err := s.PutSavedArticle(ctx, first); err != nil {
		t.Fatalf("PutSavedArticle() error: %v", err)
	}
	if err := s.PutSavedArticle(ctx, second); err != nil {
		t.Fatalf("PutSavedArticle() error: %v", err)
	}

	articles, err := s.SavedArticles(ctx)
	if err != nil {
		t.Fatalf("SavedArticles() error: %v", err)
	}
	if diff := cmp.Diff([]models.SavedArticle{second}, articles); diff != "" {
		t.Errorf("SavedArticles() mismatch (-want +got):\n%s", diff)
	}

	ids, _ := s.SavedIDs(ctx)
	if diff := cmp.Diff([]string{"Story"}, ids); diff != "" {
		t.Errorf("SavedIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveUnsave_RestoresPriorContents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two"} {
		if err := s.PutSavedArticle(ctx, models.SavedArticle{Title: title}); err != nil {
			t.Fatalf("PutSavedArticle(%q) error: %v", title, err)
		}
	}
	beforeIDs, _ := s.SavedIDs(ctx)
	beforeArticles, _ := s.SavedArticles(ctx)

	if err := s.PutSavedArticle(ctx, models.SavedArticle{Title: "Three", Source: "BBC News"}); err != nil {
		t.Fatalf("PutSavedArticle() error: %v", err)
	}
	saved, err := s.IsSaved(ctx, "Three")
	if err != nil || !saved {
		t.Fatalf("IsSaved(Three) = %v, %v; want true", saved, err)
	}

	if err := s.RemoveSavedArticle(ctx, "Three"); err != nil {
		t.Fatalf("RemoveSavedArticle() error: %v", err)
	}

	afterIDs, _ := s.SavedIDs(ctx)
	afterArticles, _ := s.SavedArticles(ctx)
	if diff := cmp.Diff(beforeIDs, afterIDs); diff != "" {
		t.Errorf("SavedIDs() mismatch (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(beforeArticles, afterArticles); diff != "" {
		t.Errorf("SavedArticles() mismatch (-before +after):\n%s", diff)
	}
	if saved, _ := s.IsSaved(ctx, "Three"); saved {
		t.Error("IsSaved(Three) = true after removal")
	}
}

func TestRemoveSavedArticle_Missing(t *testing.T) {
	s := newTestStore(t)
	if err := s.RemoveSavedArticle(context.Background(), "nope"); err != nil {
		t.Errorf("RemoveSavedArticle() error: %v", err)
	}
}

func TestSavedArticle_Lookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SavedArticle(ctx, "X"); err != ErrNotFound {
		t.Fatalf("SavedArticle() on empty list error = %v, want ErrNotFound", err)
	}
	if err := s.PutSavedArticle(ctx, models.SavedArticle{ID: "5", Title: "X", Link: "https://x"}); err != nil {
		t.Fatalf("PutSavedArticle() error: %v", err)
	}
	got, err := s.SavedArticle(ctx, "X")
	if err != nil {
		t.Fatalf("SavedArticle() error: %v", err)
	}
	if got.Link != "https://x" {
		t.Errorf("SavedArticle() = %+v", got)
	}
}

func TestSavedAndVotes_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	ctx := t.Context()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := range n {
		wg.Go(func() {
			title := fmt.Sprintf("Story %02d", i)
			errs <- s.PutSavedArticle(ctx, models.SavedArticle{ID: models.ArticleID(fmt.Sprint(i)), Title: title})
		})
		wg.Go(func() {
			_, err := s.Vote(ctx, "X", 1)
			errs <- err
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			s.Close()
			t.Fatalf("concurrent write error: %v", err)
		}
	}

	// Reopen so the counts come from disk, not the in-process mirror.
	s.Close()
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	ids, err := s.SavedIDs(ctx)
	if err != nil {
		t.Fatalf("SavedIDs() error: %v", err)
	}
	articles, err := s.SavedArticles(ctx)
	if err != nil {
		t.Fatalf("SavedArticles() error: %v", err)
	}
	if len(ids) != n || len(articles) != n {
		t.Errorf("after %d saves: %d ids, %d snapshots; want %d of each", n, len(ids), len(articles), n)
	}
	if got, _ := s.VoteCount(ctx, "X"); got != n {
		t.Errorf("VoteCount(X) after %d votes = %d, want %d", n, got, n)
	}
}

func TestRemoveSavedArticle_ConcurrentWithPut(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "remove.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()
	ctx := t.Context()

	for i := range 10 {
		if err := s.PutSavedArticle(ctx, models.SavedArticle{Title: fmt.Sprintf("Old %d", i)}); err != nil {
			t.Fatalf("PutSavedArticle() error: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			if err := s.RemoveSavedArticle(ctx, fmt.Sprintf("Old %d", i)); err != nil {
				t.Errorf("RemoveSavedArticle() error: %v", err)
			}
		})
		wg.Go(func() {
			if err := s.PutSavedArticle(ctx, models.SavedArticle{Title: fmt.Sprintf("New %d", i)}); err != nil {
				t.Errorf("PutSavedArticle() error: %v", err)
			}
		})
	}
	wg.Wait()

	ids, _ := s.SavedIDs(ctx)
	articles, _ := s.SavedArticles(ctx)
	if len(ids) != 10 || len(articles) != 10 {
		t.Fatalf("got %d ids, %d snapshots; want 10 of each", len(ids), len(articles))
	}
	for i, a := range articles {
		if a.Article().Key() != ids[i] {
			t.Errorf("snapshot %d = %q, id list has %q", i, a.Article().Key(), ids[i])
		}
	}
}
