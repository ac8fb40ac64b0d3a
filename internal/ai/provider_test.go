package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name      string
		cfg       ProviderConfig
		wantErr   bool
		wantModel string
	}{
		{"anthropic", ProviderConfig{Provider: "anthropic", APIKey: "k", Model: "claude-x"}, false, "claude-x"},
		{"anthropic default model", ProviderConfig{Provider: "anthropic", APIKey: "k"}, false, DefaultAnthropicModel},
		{"openai default model", ProviderConfig{Provider: "openai", APIKey: "k"}, false, DefaultOpenAIModel},
		{"unsupported", ProviderConfig{Provider: "invalid", APIKey: "k"}, true, ""},
		{"missing key", ProviderConfig{Provider: "openai"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.cfg)
			if tt.wantErr {
				if err == nil || provider != nil {
					t.Fatalf("NewProvider() = %v, %v; want error", provider, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error: %v", err)
			}

			var model string
			switch p := provider.(type) {
			case *AnthropicProvider:
				model = p.model
			case *OpenAIProvider:
				model = p.model
			default:
				t.Fatalf("unexpected provider type %T", provider)
			}
			if model != tt.wantModel {
				t.Errorf("model = %q, want %q", model, tt.wantModel)
			}
		})
	}
}

func TestSummarizePrompt(t *testing.T) {
	sys, user, tokens := SummarizePrompt("  The harbour reopened.  ", VariantBrief)
	if !strings.Contains(sys, "2-3 sentences") || tokens != 100 {
		t.Errorf("brief prompt = %q, %d tokens", sys, tokens)
	}
	if user != "News content:\nThe harbour reopened." {
		t.Errorf("user prompt = %q", user)
	}

	sys, _, tokens = SummarizePrompt("x", VariantDetailed)
	if !strings.Contains(sys, "at least 65 words") || tokens != 300 {
		t.Errorf("detailed prompt = %q, %d tokens", sys, tokens)
	}
	if _, _, tokens := SummarizePrompt("x", "other"); tokens != 300 {
		t.Errorf("unknown variant tokens = %d, want the detailed budget", tokens)
	}
}

func TestCleanSummary(t *testing.T) {
	tests := map[string]string{
		"  plain  ":                  "plain",
		"Summary: The port reopened.": "The port reopened.",
		"# Summary\nShips sailed.":    "Ships sailed.",
	}
	for in, want := range tests {
		if got := cleanSummary(in); got != want {
			t.Errorf("cleanSummary(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAnthropicSummarize(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"content":[{"type":"text","text":"Summary: Ships sailed."}]}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("key", "claude-x", srv.URL)
	text, err := p.Summarize(context.Background(), "body", VariantBrief)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if text != "Ships sailed." {
		t.Errorf("Summarize() = %q", text)
	}
	if got.Model != "claude-x" || got.MaxTokens != 100 || got.Messages[0].Content != "News content:\nbody" {
		t.Errorf("request = %+v", got)
	}
}

func TestOpenAISummarize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("key", "gpt-x", srv.URL)
	_, err := p.Summarize(context.Background(), "body", VariantDetailed)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Summarize() error = %v, want the API message", err)
	}
}

func TestOpenAISummarize(t *testing.T) {
	var got openaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"  Long summary.  "}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("key", "gpt-x", srv.URL)
	text, err := p.Summarize(context.Background(), "body", VariantDetailed)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if text != "Long summary." || got.MaxTokens != 300 || len(got.Messages) != 2 {
		t.Errorf("Summarize() = %q with request %+v", text, got)
	}
}

func TestAnthropicSummarize_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"status without error object", http.StatusInternalServerError, `{}`, "unexpected status code: 500"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "parsing response (status 502)"},
		{"no text block", http.StatusOK, `{"content":[{"type":"tool_use"}]}`, "no text content"},
		{"blank text", http.StatusOK, `{"content":[{"type":"text","text":"  "}]}`, "summarize: empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAnthropicProvider("key", "claude-x", srv.URL).Summarize(context.Background(), "body", VariantBrief)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Summarize() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
