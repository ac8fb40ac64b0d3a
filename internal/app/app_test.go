package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oneminnews/oneminnews/internal/config"
	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/feeds"
	"github.com/oneminnews/oneminnews/internal/session"
	"github.com/oneminnews/oneminnews/internal/storage"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>World</title><link>https://example.com</link>
<item><title>First</title><link>https://example.com/1</link><pubDate>Mon, 04 May 2026 10:00:00 GMT</pubDate><description>One</description></item>
<item><title>Second</title><link>https://example.com/2</link><pubDate>Mon, 04 May 2026 09:00:00 GMT</pubDate><description>Two</description></item>
</channel></rss>`

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testConfig(baseURL string, feedList ...feeds.FeedConfig) *config.Config {
	return &config.Config{
		API:     config.APIConfig{BaseURL: baseURL, TimeoutSeconds: 5},
		Feed:    config.FeedConfig{PageSize: 10, Sort: "time", ScrollThreshold: 3},
		AI:      config.AIConfig{Provider: "anthropic"},
		Offline: config.OfflineConfig{RefreshIntervalMinutes: 30, Feeds: feedList},
	}
}

func TestNew_Offline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testRSS))
	}))
	t.Cleanup(srv.Close)

	a, err := New(testConfig("", feeds.FeedConfig{Name: "World", URL: srv.URL}), Options{Store: newTestStore(t)})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer a.Close()
	ctx := context.Background()

	if !a.Offline() {
		t.Fatal("Offline() = false without a base URL")
	}

	if _, err := a.Backend.Vote(ctx, "Second", 1); err != nil {
		t.Fatalf("Vote() error: %v", err)
	}
	got, err := a.Backend.List(ctx, feed.Page{Limit: 10})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "First" || got[1].VoteCount != 1 {
		t.Errorf("List() = %+v, want First then Second with one vote", got)
	}

	art, err := a.Backend.Article(ctx, "Second")
	if err != nil || art.VoteCount != 1 {
		t.Errorf("Article() = %+v, %v", art, err)
	}

	sources, _ := a.Backend.Sources(ctx)
	if len(sources) != 1 || sources[0] != "World" {
		t.Errorf("Sources() = %v", sources)
	}

	if _, err := a.Checkout(ctx); !errors.Is(err, ErrOffline) {
		t.Errorf("Checkout() error = %v, want ErrOffline", err)
	}
	if _, err := a.Summaries.Get(ctx, art, "brief"); !errors.Is(err, ErrNoSummarizer) {
		t.Errorf("Summaries.Get() error = %v, want ErrNoSummarizer", err)
	}
	if msg, err := a.Refresh(ctx); err != nil || msg == "" {
		t.Errorf("Refresh() = %q, %v", msg, err)
	}
}

func TestNew_Remote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /news", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") != "popular" {
			t.Errorf("sort = %q, want popular", r.URL.Query().Get("sort"))
		}
		w.Write([]byte(`{"news":[{"id":1,"title":"Remote","vote_count":4}]}`))
	})
	mux.HandleFunc("POST /news/vote", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":5}`))
	})
	mux.HandleFunc("POST /create-checkout-session", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"https://pay.example.com/c"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	a, err := New(testConfig(srv.URL), Options{Store: newTestStore(t)})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx := context.Background()

	if a.Offline() || a.Client == nil {
		t.Fatal("Offline() = true with a base URL")
	}

	trig := a.NewTrigger()
	res := <-trig.Subscribe(ctx, feed.Filter{Sort: "popular"})
	trig.Wait()
	if res.Err != nil || res.Added != 1 {
		t.Fatalf("first page = %+v", res)
	}

	items := trig.Pager().Snapshot().Items
	card := a.Cards.Get(ctx, items[0])
	st, err := card.ToggleLike(ctx)
	if err != nil || st.VoteCount != 5 {
		t.Errorf("ToggleLike() = %+v, %v; want count 5", st, err)
	}

	url, err := a.Checkout(ctx)
	if err != nil || url != "https://pay.example.com/c" {
		t.Errorf("Checkout() = %q, %v", url, err)
	}
}

func TestNew_OfflineFlagOverridesBaseURL(t *testing.T) {
	a, err := New(testConfig("https://news.example.com"), Options{Offline: true, Store: newTestStore(t)})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !a.Offline() {
		t.Error("Offline() = false with the offline option")
	}
}

func TestContext_CarriesSession(t *testing.T) {
	a, err := New(testConfig(""), Options{Store: newTestStore(t)})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx := context.Background()

	if _, ok := session.FromContext(a.Context(ctx)); ok {
		t.Fatal("Context() carries a session before login")
	}

	// {"sub":"u1","email":"a@b.c"}
	token := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ1MSIsImVtYWlsIjoiYUBiLmMifQ.s"
	if _, err := a.Sessions.Login(ctx, token, ""); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	s, ok := session.FromContext(a.Context(ctx))
	if !ok || s.User.ID != "u1" {
		t.Errorf("Context() session = %+v, %v", s, ok)
	}
}
