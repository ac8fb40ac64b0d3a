package ai

import (
	"fmt"
	"strings"
)

const briefSystemPrompt = `You summarize news articles. Write a concise summary in English of 2-3 sentences, roughly 150-200 characters. Highlight the core facts and key information. Use objective, accurate language and no commentary. Return only the summary, with no heading or preamble.`

const detailedSystemPrompt = `You summarize news articles. Write a detailed summary in English of at least 65 words. Include the background and the likely impact, in a clear structure with a logical flow. Use objective, accurate language. Return only the summary, with no heading or preamble.`

// SummarizePrompt builds the system and user prompts for one summary
// variant, together with the output token budget for it. Unknown variants
// are treated as detailed.
func SummarizePrompt(content, variant string) (systemPrompt, userPrompt string, maxTokens int) {
	switch variant {
	case VariantBrief:
		systemPrompt, maxTokens = briefSystemPrompt, 100
	default:
		systemPrompt, maxTokens = detailedSystemPrompt, 300
	}

	var b strings.Builder
	b.WriteString("News content:\n")
	b.WriteString(strings.TrimSpace(content))
	userPrompt = b.String()
	return systemPrompt, userPrompt, maxTokens
}

// cleanSummary trims whitespace and strips a leading "Summary:" label that
// models sometimes add despite the prompt.
func cleanSummary(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"# Summary", "Summary:", "**Summary:**"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = strings.TrimSpace(after)
		}
	}
	return s
}

// errEmpty is returned when a provider answers without any text.
func errEmpty(provider string) error {
	return fmt.Errorf("%s: empty response", provider)
}
