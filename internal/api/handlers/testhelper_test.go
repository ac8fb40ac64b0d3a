package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/oneminnews/oneminnews/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test
// completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

// decode decodes the recorded JSON response into v.
func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v; body: %s", err, w.Body.String())
	}
}

// fakeVoter counts votes per title.
type fakeVoter struct {
	counts map[string]int
	err    error
}

func (v *fakeVoter) Vote(_ context.Context, title string, delta int) (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	if v.counts == nil {
		v.counts = map[string]int{}
	}
	v.counts[title] += delta
	return v.counts[title], nil
}
