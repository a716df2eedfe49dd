// Package llm wraps the Gemini API behind a small tiered client used
// for trainer note generation.
package llm

// ModelTier picks a capability level without hardcoding model names at
// call sites.
type ModelTier string

const (
	// TierLite handles classification and short summaries.
	TierLite ModelTier = "lite"
	// TierStandard handles structured generation like prep notes.
	TierStandard ModelTier = "standard"
	// TierAdvanced handles long-form reasoning.
	TierAdvanced ModelTier = "advanced"
)

// Provider names an LLM backend.
type Provider string

// ProviderGemini is the only backend currently wired.
const ProviderGemini Provider = "gemini"

// Config maps tiers to concrete model names for one provider.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the stock Gemini tier mapping.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel resolves a tier to a model name, falling back to standard
// then lite when the tier isn't configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	return c.Models[TierLite]
}
