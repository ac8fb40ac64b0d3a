// Package ai generates article summaries with a hosted LLM. It is used when
// the reader runs without the news service, which otherwise writes the
// summaries itself.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// requestTimeout bounds one call to a provider.
const requestTimeout = 60 * time.Second

// temperature keeps summaries close to the source text.
const temperature = 0.3

// Provider is the interface that all LLM providers must implement.
type Provider interface {
	// Summarize condenses article content into the given variant,
	// VariantBrief or VariantDetailed.
	Summarize(ctx context.Context, content, variant string) (string, error)
}

// Default models per provider, used when the config names none.
const (
	DefaultAnthropicModel = "claude-haiku-4-5"
	DefaultOpenAIModel    = "gpt-4o-mini"
)

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for AI provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case "anthropic":
		if cfg.Model == "" {
			cfg.Model = DefaultAnthropicModel
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "openai":
		if cfg.Model == "" {
			cfg.Model = DefaultOpenAIModel
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// postJSON sends in as a JSON POST to endpoint and decodes the reply into
// out. It returns the HTTP status; a reply that is not JSON is an error
// whatever the status.
func postJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header = header.Clone()
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

// apiError is the error object both providers put in failed replies.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// checkReply turns a decoded reply into an error when the provider
// reported one or the status is not 200.
func checkReply(status int, e *apiError) error {
	if e != nil {
		return fmt.Errorf("API error (status %d): %s", status, e.Message)
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", status)
	}
	return nil
}
