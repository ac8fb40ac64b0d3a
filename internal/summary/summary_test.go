package summary

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/storage"
)

type fakeSummarizer struct {
	calls   atomic.Int32
	content []string
	mu      sync.Mutex
	reply   string
	err     error
	gate    chan struct{}
}

func (f *fakeSummarizer) Summarize(ctx context.Context, content, variant string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.content = append(f.content, content)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply + " (" + variant + ")", nil
}

type fakeExtractor struct {
	text string
	urls []string
}

func (f *fakeExtractor) ExtractText(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.text, nil
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGet_SecondRequestServedFromCache(t *testing.T) {
	sum := &fakeSummarizer{reply: "<p>Ships <b>sailed</b>.</p>"}
	svc := NewService(sum, newTestStore(t))
	a := models.Article{Title: "Harbour", Content: "The harbour reopened."}
	ctx := context.Background()

	first, err := svc.Get(ctx, a, "brief")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	second, err := svc.Get(ctx, a, "brief")
	if err != nil {
		t.Fatalf("second Get() error: %v", err)
	}

	if first != "Ships sailed. (brief)" || second != first {
		t.Errorf("Get() = %q then %q", first, second)
	}
	if n := sum.calls.Load(); n != 1 {
		t.Errorf("summarizer called %d times, want 1", n)
	}
}

func TestGet_VariantsCachedSeparately(t *testing.T) {
	sum := &fakeSummarizer{reply: "s"}
	store := newTestStore(t)
	svc := NewService(sum, store)
	a := models.Article{Title: "Harbour", Content: "text"}
	ctx := context.Background()

	brief, _ := svc.Get(ctx, a, "brief")
	detailed, _ := svc.Get(ctx, a, "")
	if brief == detailed {
		t.Errorf("brief and detailed summaries are the same: %q", brief)
	}
	if n := sum.calls.Load(); n != 2 {
		t.Errorf("summarizer called %d times, want 2", n)
	}
	if got, ok, _ := store.CachedSummary(ctx, "Harbour", "detailed"); !ok || got != "s (detailed)" {
		t.Errorf("cached detailed summary = %q, %v", got, ok)
	}
}

func TestGet_ConcurrentMissesShareOneCall(t *testing.T) {
	sum := &fakeSummarizer{reply: "shared", gate: make(chan struct{})}
	svc := NewService(sum, newTestStore(t))
	a := models.Article{Title: "Harbour", Content: "text"}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = svc.Get(context.Background(), a, "brief")
		}()
	}

	// Give every caller time to reach the in-flight call.
	time.Sleep(100 * time.Millisecond)
	close(sum.gate)
	wg.Wait()

	if n := sum.calls.Load(); n != 1 {
		t.Errorf("summarizer called %d times for concurrent misses", n)
	}
	for i, r := range results {
		if r != "shared (brief)" {
			t.Errorf("result %d = %q", i, r)
		}
	}
}

func TestGet_SharedCallSurvivesFirstCallerCancel(t *testing.T) {
	sum := &fakeSummarizer{reply: "kept", gate: make(chan struct{})}
	store := newTestStore(t)
	svc := NewService(sum, store)
	a := models.Article{Title: "Harbour", Content: "text"}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Get(firstCtx, a, "brief")
		firstErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	second := make(chan string, 1)
	go func() {
		text, err := svc.Get(context.Background(), a, "brief")
		if err != nil {
			t.Errorf("second Get() error: %v", err)
		}
		second <- text
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first Get() error = %v, want context.Canceled", err)
	}
	close(sum.gate)

	if got := <-second; got != "kept (brief)" {
		t.Errorf("second Get() = %q, want %q", got, "kept (brief)")
	}
	if n := sum.calls.Load(); n != 1 {
		t.Errorf("summarizer called %d times, want 1", n)
	}
	if text, ok, _ := store.CachedSummary(context.Background(), "Harbour", "brief"); !ok || text != "kept (brief)" {
		t.Errorf("CachedSummary() = %q, %v; want the shared result cached", text, ok)
	}
}

func TestGet_FailureIsNotCached(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("quota exceeded")}
	store := newTestStore(t)
	svc := NewService(sum, store)
	a := models.Article{Title: "Harbour", Content: "text"}
	ctx := context.Background()

	if _, err := svc.Get(ctx, a, "brief"); err == nil {
		t.Fatal("Get() error = nil, want the summarizer failure")
	}
	if _, ok := svc.Cached(ctx, a, "brief"); ok {
		t.Error("a failed summary was cached")
	}

	sum.err = nil
	sum.reply = "ok"
	if text, err := svc.Get(ctx, a, "brief"); err != nil || text != "ok (brief)" {
		t.Errorf("retry Get() = %q, %v", text, err)
	}
}

func TestGet_ExtractsTextWhenContentMissing(t *testing.T) {
	sum := &fakeSummarizer{reply: "s"}
	ext := &fakeExtractor{text: "extracted body"}
	svc := NewService(sum, newTestStore(t), WithExtractor(ext))
	ctx := context.Background()

	if _, err := svc.Get(ctx, models.Article{Title: "A", Link: "https://x/a"}, "brief"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(ext.urls) != 1 || ext.urls[0] != "https://x/a" {
		t.Errorf("extractor urls = %v", ext.urls)
	}
	if sum.content[0] != "extracted body" {
		t.Errorf("summarized content = %q", sum.content[0])
	}

	noExtract := NewService(sum, newTestStore(t))
	if _, err := noExtract.Get(ctx, models.Article{Title: "B", Link: "https://x/b"}, "brief"); !errors.Is(err, ErrNoContent) {
		t.Errorf("Get() without content or extractor error = %v, want ErrNoContent", err)
	}
}

func TestRefresh_Overwrites(t *testing.T) {
	sum := &fakeSummarizer{reply: "old"}
	svc := NewService(sum, newTestStore(t))
	a := models.Article{Title: "Harbour", Content: "text"}
	ctx := context.Background()

	svc.Get(ctx, a, "brief")
	sum.reply = "new"
	text, err := svc.Refresh(ctx, a, "brief")
	if err != nil || text != "new (brief)" {
		t.Fatalf("Refresh() = %q, %v", text, err)
	}
	if cached, _ := svc.Cached(ctx, a, "brief"); cached != "new (brief)" {
		t.Errorf("Cached() after Refresh = %q", cached)
	}
}

func TestGet_UnknownVariant(t *testing.T) {
	svc := NewService(&fakeSummarizer{}, newTestStore(t))
	_, err := svc.Get(context.Background(), models.Article{Title: "A", Content: "x"}, "tweet")
	if !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Get() error = %v, want ErrUnknownVariant", err)
	}
}
