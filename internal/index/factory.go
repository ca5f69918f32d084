package index

import (
	"fmt"

	"github.com/hyperjump/foodrec/internal/config"
	"go.uber.org/zap"
)

// NewBackend builds the backend named in cfg. Remote connections are made lazily.
func NewBackend(cfg config.IndexConfig, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case "", "memory":
		logger.Debug("using memory index", zap.String("database", cfg.DatabasePath))
		return NewSQLiteMemoryBackend(cfg.DatabasePath)
	case "qdrant":
		logger.Debug("using qdrant index", zap.String("host", cfg.QdrantHost), zap.Int("port", cfg.QdrantPort))
		return NewQdrantBackend(cfg.QdrantHost, cfg.QdrantPort)
	case "weaviate":
		logger.Debug("using weaviate index", zap.String("host", cfg.WeaviateHost))
		return NewWeaviateBackend(cfg.WeaviateHost, cfg.WeaviateScheme)
	default:
		return nil, fmt.Errorf("unknown index backend %q (expected memory, qdrant or weaviate)", cfg.Backend)
	}
}
