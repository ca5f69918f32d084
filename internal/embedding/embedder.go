// Package embedding turns text into fixed-length vectors and caches the results.
package embedding

import (
	"context"
	"errors"
)

// ErrEmbedding is returned when a model cannot be loaded or invoked.
var ErrEmbedding = errors.New("embedding failed")

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
