package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/foodrec/internal/config"
	"go.uber.org/zap"
)

// NewFromConfig returns a provider whose model is built from cfg on first use.
func NewFromConfig(cfg config.EmbeddingConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	load := func(ctx context.Context) (Embedder, error) {
		base, err := newBackend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cache, err := newCache(ctx, cfg, logger)
		if err != nil {
			_ = base.Close()
			return nil, err
		}
		logger.Info("embedding provider ready",
			zap.String("provider", cfg.Provider),
			zap.String("model", cfg.ModelName),
			zap.String("cache", cfg.Cache),
			zap.Int("dimensions", base.Dimensions()))
		if cache == nil {
			return base, nil
		}
		return NewCachedEmbedder(base, cache), nil
	}
	if cfg.Provider == "onnx" && cfg.VocabPath == "" {
		logger.Warn("onnx embedding without vocab_path uses hashed token ids; results are only meaningful for models trained on them",
			zap.String("model_path", cfg.ModelPath))
	}
	return NewProvider(load, WithLogger(logger))
}

func newBackend(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "hash":
		return NewHashEmbedder(cfg.Dimensions), nil
	case "onnx":
		return NewONNXEmbedder(ONNXOptions{
			ModelPath:  cfg.ModelPath,
			VocabPath:  cfg.VocabPath,
			Dimensions: cfg.Dimensions,
			MaxTokens:  cfg.MaxTokens,
		})
	case "gemini":
		return NewGeminiEmbedder(ctx, cfg.APIKey(), cfg.ModelName, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newCache(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (Cache, error) {
	switch cfg.Cache {
	case "none":
		return nil, nil
	case "", "memory":
		return NewEmbeddingCache(cfg.CacheSize), nil
	case "redis":
		return NewRedisCache(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			URL:       cfg.RedisURL,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.Provider + ":" + cfg.ModelName,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown embedding cache %q", cfg.Cache)
	}
}
