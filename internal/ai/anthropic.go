package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// Compile-time interface check.
var _ Provider = (*AnthropicProvider)(nil)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider implements Provider using the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnthropicProvider creates an AnthropicProvider. An empty baseURL uses
// the public API.
func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	endpoint := anthropicAPIURL
	if baseURL != "" {
		endpoint = baseURL
	}
	return &AnthropicProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// anthropicRequest is the request body for the Anthropic Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the Anthropic request.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Anthropic Messages API.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *apiError `json:"error"`
}

// Summarize generates a summary of content using the Anthropic Messages API.
func (p *AnthropicProvider) Summarize(ctx context.Context, content, variant string) (string, error) {
	systemPrompt, userPrompt, maxTokens := SummarizePrompt(content, variant)

	text, err := p.callAPI(ctx, systemPrompt, userPrompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("anthropic summarize: %w", err)
	}
	text = cleanSummary(text)
	if text == "" {
		return "", errEmpty("anthropic summarize")
	}
	return text, nil
}

// callAPI sends one user turn to the Messages API and returns the text of
// the first content block.
func (p *AnthropicProvider) callAPI(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	header := http.Header{}
	header.Set("x-api-key", p.apiKey)
	header.Set("anthropic-version", anthropicVersion)

	slog.Debug("calling Anthropic API", "model", p.model, "max_tokens", maxTokens)

	var reply anthropicResponse
	status, err := postJSON(ctx, p.client, p.endpoint, header, anthropicRequest{
		Model:       p.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: userPrompt}},
	}, &reply)
	if err != nil {
		return "", err
	}
	if err := checkReply(status, reply.Error); err != nil {
		return "", err
	}

	for _, block := range reply.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response: no text content returned")
}
