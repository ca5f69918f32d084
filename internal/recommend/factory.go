package recommend

import (
	"context"
	"fmt"

	"github.com/hyperjump/foodrec/internal/config"
	"go.uber.org/zap"
)

// NewGenerator builds the generator named in cfg, wrapped with retries.
// Provider "none" returns a nil generator and no error.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (Generator, error) {
	var gen Generator
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "gemini":
		g, err := NewGeminiGenerator(ctx, cfg.APIKey(), cfg.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	case "openai":
		gen = NewOpenAIGenerator(cfg.APIKey(), cfg.Model, cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown generation provider %q (expected none, gemini or openai)", cfg.Provider)
	}
	return NewRetryGenerator(gen, cfg.MaxRetries, 0, logger), nil
}

// ParamsFromConfig returns the sampling settings in cfg.
func ParamsFromConfig(cfg config.GenerationConfig) GenerationParams {
	return GenerationParams{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
	}
}
