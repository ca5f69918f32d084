// Package vector provides an in-process vector index with cosine distance search.
package vector

import "context"

// VectorIndex stores vectors by ID and answers nearest-neighbor queries.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Size() int
	Close() error
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	ID string
	// Distance is the cosine distance to the query, in [0, 2].
	Distance float64
}
