package llmreasoning

import (
	"log"

	"github.com/exotic-travel-booking/backend/internal/llm/providers"
)

// Config selects and configures the reasoning provider.
type Config struct {
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// NewProvider picks a reasoning backend by credential presence: OpenAI
// first, Anthropic second, and the deterministic fallback if neither is
// configured. This mirrors the low-level provider factory's
// provider-by-string-name dispatch, but the decision here is "do we have
// a reasoning backend at all" rather than an explicit operator choice.
func NewProvider(cfg Config) Provider {
	factory := providers.NewProviderFactory()

	if cfg.OpenAIAPIKey != "" {
		backend, err := factory.CreateProvider(&providers.LLMConfig{
			Provider: "openai",
			APIKey:   cfg.OpenAIAPIKey,
			Model:    defaultString(cfg.OpenAIModel, "gpt-4o-mini"),
		})
		if err == nil {
			return NewChatProvider(backend, defaultString(cfg.OpenAIModel, "gpt-4o-mini"))
		}
		log.Printf("llmreasoning: openai provider init failed, trying next: %v", err)
	}

	if cfg.AnthropicAPIKey != "" {
		backend, err := factory.CreateProvider(&providers.LLMConfig{
			Provider: "anthropic",
			APIKey:   cfg.AnthropicAPIKey,
			Model:    defaultString(cfg.AnthropicModel, "claude-3-5-sonnet-20241022"),
		})
		if err == nil {
			return NewChatProvider(backend, defaultString(cfg.AnthropicModel, "claude-3-5-sonnet-20241022"))
		}
		log.Printf("llmreasoning: anthropic provider init failed, falling back to deterministic: %v", err)
	}

	log.Printf("llmreasoning: no reasoning credentials configured, using deterministic fallback")
	return NewFallbackProvider()
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
