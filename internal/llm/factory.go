package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/patente-quiz/internal/config"
)

// New builds the configured provider wrapped as retry -> observability -> base.
func New(ctx context.Context, cfg config.AI, logger zerolog.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "openrouter":
		base, err = NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  cfg.OpenRouterKey,
			Model:   cfg.OpenRouterModel,
			BaseURL: cfg.OpenRouterURL,
			Title:   cfg.OpenRouterTitle,
			Site:    cfg.OpenRouterSite,
			Timeout: cfg.Timeout,
		})
	case "openai":
		base, err = NewOpenAIProvider(OpenAIConfig{APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, Timeout: cfg.Timeout})
	case "anthropic":
		base, err = NewAnthropicProvider(AnthropicConfig{APIKey: cfg.AnthropicKey, Model: cfg.AnthropicModel})
	case "gemini":
		base, err = NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.GeminiKey, Model: cfg.GeminiModel})
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithObservability(base, logger), RetryConfig{
		MaxAttempts: cfg.RetryAttempts,
		InitialWait: cfg.RetryWait,
		MaxWait:     cfg.RetryMaxWait,
		Multiplier:  2,
	}), nil
}
