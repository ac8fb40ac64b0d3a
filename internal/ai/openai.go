package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// Compile-time interface check.
var _ Provider = (*OpenAIProvider)(nil)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider. An empty baseURL uses the
// public API.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	endpoint := openaiAPIURL
	if baseURL != "" {
		endpoint = baseURL
	}
	return &OpenAIProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// openaiRequest is the request body for the OpenAI Chat Completions API.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

// openaiMessage is a single message in the OpenAI request.
type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiResponse is the response body from the OpenAI Chat Completions API.
type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// Summarize generates a summary of content using the OpenAI Chat
// Completions API.
func (p *OpenAIProvider) Summarize(ctx context.Context, content, variant string) (string, error) {
	systemPrompt, userPrompt, maxTokens := SummarizePrompt(content, variant)

	text, err := p.callAPI(ctx, systemPrompt, userPrompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("openai summarize: %w", err)
	}
	text = cleanSummary(text)
	if text == "" {
		return "", errEmpty("openai summarize")
	}
	return text, nil
}

// callAPI sends a system and a user message to Chat Completions and
// returns the first choice.
func (p *OpenAIProvider) callAPI(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)

	slog.Debug("calling OpenAI API", "model", p.model, "max_tokens", maxTokens)

	var reply openaiResponse
	status, err := postJSON(ctx, p.client, p.endpoint, header, openaiRequest{
		Model: p.model,
		Messages: []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, &reply)
	if err != nil {
		return "", err
	}
	if err := checkReply(status, reply.Error); err != nil {
		return "", err
	}

	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("empty response: no choices returned")
	}
	return reply.Choices[0].Message.Content, nil
}
