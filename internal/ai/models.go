package ai

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider string // "anthropic" | "openai"
	APIKey   string
	Model    string

	// BaseURL overrides the provider's API endpoint. Empty uses the
	// provider's public endpoint.
	BaseURL string
}

// Summary variants.
const (
	VariantBrief    = "brief"
	VariantDetailed = "detailed"
)

// ValidVariant reports whether v names a summary variant.
func ValidVariant(v string) bool {
	return v == VariantBrief || v == VariantDetailed
}
