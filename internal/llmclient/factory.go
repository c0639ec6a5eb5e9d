package llmclient

import (
	"context"
	"fmt"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// New constructs the Client variant matching req.Provider, using apiKey
// resolved by the caller (request field, provider-specific env var, or
// fallback order described by the gateway).
func New(ctx context.Context, provider models.AgentProvider, apiKey string) (Client, error) {
	switch provider {
	case models.ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{APIKey: apiKey})
	case models.ProviderPerplexity:
		return NewPerplexityClient(PerplexityConfig{APIKey: apiKey})
	case models.ProviderHF:
		return NewHFClient(HFConfig{APIKey: apiKey})
	default:
		return nil, &ProviderError{Provider: string(provider), Class: ErrConfiguration, Err: fmt.Errorf("unknown provider %q", provider)}
	}
}
