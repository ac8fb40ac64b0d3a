package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

const fetcherRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Wire</title><link>https://example.com</link>
<item><title>Budget passes</title><link>https://example.com/budget</link><pubDate>Mon, 04 May 2026 10:00:00 GMT</pubDate><description>&lt;p&gt;The vote was close.&lt;/p&gt;</description></item>
</channel></rss>`

func TestFetchAll_RecordsFailures(t *testing.T) {
	var (
		mu    sync.Mutex
		agent string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agent = r.Header.Get("User-Agent")
		mu.Unlock()
		if r.URL.Path == "/broken" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(fetcherRSS))
	}))
	defer srv.Close()

	f := NewFetcher(WithDomainRate(rate.Inf, 1))
	res, err := f.FetchAll(context.Background(), []FeedConfig{
		{Name: "Wire", URL: srv.URL + "/rss"},
		{Name: "Broken", URL: srv.URL + "/broken"},
	})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}

	if len(res.Articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(res.Articles))
	}
	a := res.Articles[0]
	if a.Title != "Budget passes" || a.Source != "Wire" {
		t.Errorf("article = %+v", a)
	}
	if len(res.Failed) != 1 || res.Failed[0].Source != "Broken" {
		t.Errorf("Failed = %+v, want the broken feed", res.Failed)
	}
	mu.Lock()
	defer mu.Unlock()
	if agent == "" || strings.Contains(agent, "Go-http-client") {
		t.Errorf("User-Agent = %q, want a browser-like agent", agent)
	}
}

func TestFetchAll_FeedTitleAsSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fetcherRSS))
	}))
	defer srv.Close()

	res, err := NewFetcher(WithDomainRate(rate.Inf, 1)).FetchAll(context.Background(), []FeedConfig{{URL: srv.URL}})
	if err != nil {
		t.Fatalf("FetchAll() error: %v", err)
	}
	if len(res.Articles) != 1 || res.Articles[0].Source != "Wire" {
		t.Errorf("articles = %+v, want source from the feed title", res.Articles)
	}
}

func TestFetcher_DomainRateLimit(t *testing.T) {
	f := NewFetcher(WithDomainRate(rate.Every(time.Hour), 1))

	if err := f.wait(context.Background(), "https://a.example/1"); err != nil {
		t.Fatalf("first wait error: %v", err)
	}
	// A different domain has its own budget.
	if err := f.wait(context.Background(), "https://b.example/1"); err != nil {
		t.Fatalf("other domain wait error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := f.wait(ctx, "https://a.example/2"); err == nil {
		t.Error("second wait on the same domain succeeded, want it to exceed the deadline")
	}
}

func TestExtractDomain(t *testing.T) {
	tests := map[string]string{
		"https://www.bbc.co.uk/news/1": "www.bbc.co.uk",
		"http://localhost:8080/x":      "localhost",
		"not a url":                    "not a url",
	}
	for in, want := range tests {
		if got := extractDomain(in); got != want {
			t.Errorf("extractDomain(%q) = %q, want %q", in, got, want)
		}
	}
}
