// Package index manages similarity collections: creating them, filling them with
// embedded food records, and answering nearest-neighbor queries.
package index

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hyperjump/foodrec/internal/embedding"
	"github.com/hyperjump/foodrec/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrInvalidName is returned for empty or malformed collection names.
	ErrInvalidName = errors.New("invalid collection name")
	// ErrEmptyInput is returned when populating with no records.
	ErrEmptyInput = errors.New("no records to index")
	// ErrIndexWrite is returned when the backend rejects a write.
	ErrIndexWrite = errors.New("index write failed")
	// ErrQuery is returned when the backend fails to answer a query.
	ErrQuery = errors.New("index query failed")
)

// MaxQueryResults bounds the neighbors a single query returns.
const MaxQueryResults = models.MaxLimit

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,62}$`)

// Backend is a vector store that holds named collections.
type Backend interface {
	Name() string
	CreateCollection(ctx context.Context, coll *models.Collection) error
	// DeleteCollection reports whether a collection was removed.
	DeleteCollection(ctx context.Context, name string) (bool, error)
	// Upsert adds entries in one bulk operation.
	Upsert(ctx context.Context, collection string, entries []*models.IndexedEntry) error
	// Query returns up to k hits ordered by ascending cosine distance.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]*models.Hit, error)
	Count(ctx context.Context, collection string) (int, error)
	// Sample returns one stored entry, or nil when the collection is empty, and
	// whether the backend holds a vector for it.
	Sample(ctx context.Context, collection string) (*models.IndexedEntry, bool, error)
	Close() error
}

// Index ties a Backend to the embedding provider used to fill it.
type Index struct {
	backend  Backend
	provider *embedding.Provider
	logger   *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets a logger for collection lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(ix *Index) { ix.logger = l }
}

// New returns an Index over backend that embeds documents with provider.
func New(backend Backend, provider *embedding.Provider, opts ...Option) *Index {
	ix := &Index{backend: backend, provider: provider, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// ValidateName checks that name can be used as a collection name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (use letters, digits, '_' or '-', up to 63 characters)", ErrInvalidName, name)
	}
	return nil
}

// DeleteCollection removes the named collection and everything in it.
// Reports whether anything was removed.
func (ix *Index) DeleteCollection(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	removed, err := ix.backend.DeleteCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("%w: delete collection %s: %v", ErrIndexWrite, name, err)
	}
	if removed {
		ix.logger.Info("deleted existing collection", zap.String("collection", name), zap.String("backend", ix.backend.Name()))
	}
	return removed, nil
}

// CreateCollection creates an empty collection, first deleting any collection of the same name.
func (ix *Index) CreateCollection(ctx context.Context, name string, metadata map[string]string) (*models.Collection, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if _, err := ix.DeleteCollection(ctx, name); err != nil {
		return nil, err
	}
	dims, err := ix.provider.Dimensions(ctx)
	if err != nil {
		return nil, err
	}
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	coll := &models.Collection{
		Name:       name,
		Metadata:   md,
		Dimensions: dims,
		CreatedAt:  time.Now(),
	}
	if err := ix.backend.CreateCollection(ctx, coll); err != nil {
		return nil, fmt.Errorf("%w: create collection %s: %v", ErrIndexWrite, name, err)
	}
	ix.logger.Info("created collection",
		zap.String("collection", name),
		zap.String("backend", ix.backend.Name()),
		zap.Int("dimensions", dims))
	return coll, nil
}

// Populate embeds every record's document in one batch and adds all entries in
// one bulk write. Entry ids are food_<position> in record order.
func (ix *Index) Populate(ctx context.Context, coll *models.Collection, records []*models.FoodRecord) error {
	if coll == nil {
		return fmt.Errorf("%w: nil collection", ErrInvalidName)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: collection %s", ErrEmptyInput, coll.Name)
	}
	entries := BuildEntries(records)
	docs := make([]string, len(entries))
	for i, e := range entries {
		docs[i] = e.Document
	}

	start := time.Now()
	vecs, err := ix.provider.Embed(ctx, docs)
	if err != nil {
		return fmt.Errorf("populate %s: %w", coll.Name, err)
	}
	for i := range entries {
		entries[i].Embedding = vecs[i]
	}
	ix.logger.Debug("embedded documents",
		zap.String("collection", coll.Name),
		zap.Int("count", len(docs)),
		zap.Duration("took", time.Since(start)))

	if err := ix.backend.Upsert(ctx, coll.Name, entries); err != nil {
		return fmt.Errorf("%w: populate %s: %v", ErrIndexWrite, coll.Name, err)
	}
	ix.logger.Info("populated collection", zap.String("collection", coll.Name), zap.Int("entries", len(entries)))
	return nil
}

// Query returns up to k nearest entries to vector. k is capped at MaxQueryResults;
// k <= 0 returns no hits.
func (ix *Index) Query(ctx context.Context, coll *models.Collection, vector []float32, k int) ([]*models.Hit, error) {
	if coll == nil {
		return nil, fmt.Errorf("%w: nil collection", ErrInvalidName)
	}
	if k <= 0 {
		return []*models.Hit{}, nil
	}
	if k > MaxQueryResults {
		k = MaxQueryResults
	}
	hits, err := ix.backend.Query(ctx, coll.Name, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrQuery, coll.Name, err)
	}
	if hits == nil {
		hits = []*models.Hit{}
	}
	return hits, nil
}

// Count returns the number of entries in the collection.
func (ix *Index) Count(ctx context.Context, coll *models.Collection) (int, error) {
	n, err := ix.backend.Count(ctx, coll.Name)
	if err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", ErrQuery, coll.Name, err)
	}
	return n, nil
}

// Backend returns the underlying vector store.
func (ix *Index) Backend() Backend {
	return ix.backend
}

// Close closes the backend. The embedding provider belongs to the caller.
func (ix *Index) Close() error {
	return ix.backend.Close()
}
