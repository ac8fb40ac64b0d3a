package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

const articlePage = `<!DOCTYPE html>
<html><head><title>Harbour reopens after storm</title></head>
<body>
<nav><a href="/">Home</a> <a href="/world">World</a></nav>
<article>
<h1>Harbour reopens after storm</h1>
<p>The harbour reopened to shipping on Monday morning after three days of closures caused by the storm that swept the northern coast late last week.</p>
<p>Port officials said crews had worked through the night to clear debris from the main channel and inspect the breakwater, which was damaged in two places by the waves.</p>
<p>Fishing boats were the first to leave, followed by a cargo ship that had been waiting at anchor offshore since Friday. Ferry services are expected to resume on Tuesday.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func TestExtractText(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	f := NewFetcher(WithDomainRate(rate.Inf, 1))
	text, err := f.ExtractText(context.Background(), srv.URL+"/world/harbour")
	if err != nil {
		t.Fatalf("ExtractText() error: %v", err)
	}
	if !strings.Contains(text, "crews had worked through the night") {
		t.Errorf("ExtractText() = %q, want the article body", text)
	}
	if !strings.Contains(gotUA, "oneminnews") {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestExtractText_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	f := NewFetcher(WithDomainRate(rate.Inf, 1))
	if _, err := f.ExtractText(context.Background(), srv.URL); err == nil {
		t.Fatal("ExtractText() error = nil for a 410 page")
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		input    string
		maxWords int
		want     string
	}{
		{"hello world", 5, "hello world"},
		{"one two three", 3, "one two three"},
		{"one two three four five six", 3, "one two three"},
		{"", 5, ""},
		{"one   two   three   four", 2, "one two"},
		{"  one two three  ", 2, "one two"},
		{"one\ttwo\nthree\rfour", 2, "one two"},
	}

	for _, tt := range tests {
		if got := truncateWords(tt.input, tt.maxWords); got != tt.want {
			t.Errorf("truncateWords(%q, %d) = %q, want %q", tt.input, tt.maxWords, got, tt.want)
		}
	}
}
