// Package search turns free-text queries into ranked food recommendations,
// with optional cuisine and calorie filters.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/foodrec/internal/config"
	"github.com/hyperjump/foodrec/internal/embedding"
	"github.com/hyperjump/foodrec/internal/index"
	"github.com/hyperjump/foodrec/internal/models"
	"go.uber.org/zap"
)

// ErrSearch is returned when the query cannot be embedded or the index query fails.
var ErrSearch = errors.New("search failed")

// Engine runs similarity search over an index collection.
type Engine struct {
	index    *index.Index
	provider *embedding.Provider
	config   *config.SearchConfig
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine. A nil cfg uses the default search settings.
func NewEngine(ix *index.Index, provider *embedding.Provider, cfg *config.SearchConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.Default().Search
	}
	e := &Engine{index: ix, provider: provider, config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Similarity converts a cosine distance into a score in [0, 1].
// 1 - distance is an approximation of closeness, not a probability.
func Similarity(distance float64) float64 {
	return math.Max(0, math.Min(1, 1-distance))
}

func (e *Engine) limit(n int) int {
	if n <= 0 {
		n = e.config.DefaultLimit
	}
	if n <= 0 {
		n = models.DefaultLimit
	}
	if ceiling := e.config.MaxLimit; ceiling > 0 && n > ceiling {
		n = ceiling
	}
	return n
}

// Search returns up to n results for query, best first. A blank query returns
// no results and no error. Equal scores keep the order the index returned.
func (e *Engine) Search(ctx context.Context, coll *models.Collection, query string, n int) ([]*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.SearchResult{}, nil
	}
	n = e.limit(n)

	vec, err := e.provider.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", ErrSearch, err)
	}
	hits, err := e.index.Query(ctx, coll, vec, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		score := Similarity(hit.Distance)
		if t := e.config.SimilarityThreshold; t > 0 && score < t {
			continue
		}
		results = append(results, models.ResultFromHit(hit, score))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	e.logger.Debug("search",
		zap.String("query", query),
		zap.Int("requested", n),
		zap.Int("results", len(results)))
	return results, nil
}

// CandidatePoolSize is how many neighbors a filtered search fetches before
// filtering: max(n*multiplier, floor).
func (e *Engine) CandidatePoolSize(n int) int {
	mult := e.config.FilterPoolMultiplier
	if mult <= 0 {
		mult = 4
	}
	pool := n * mult
	if pool < e.config.FilterPoolFloor {
		pool = e.config.FilterPoolFloor
	}
	return pool
}

// FilteredSearch searches with the cuisine and calorie filters in q. Without
// filters it is the same as Search. With filters it over-fetches a candidate
// pool, keeps the matches in score order, and truncates to q.Limit.
func (e *Engine) FilteredSearch(ctx context.Context, coll *models.Collection, q *models.SearchQuery) ([]*models.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	n := e.limit(q.Limit)
	if !q.HasFilters() {
		return e.Search(ctx, coll, q.Query, n)
	}

	candidates, err := e.Search(ctx, coll, q.Query, e.CandidatePoolSize(n))
	if err != nil {
		return nil, err
	}
	results := ApplyFilters(candidates, q.Cuisine, q.MaxCalories)
	if len(results) > n {
		results = results[:n]
	}
	e.logger.Debug("filtered search",
		zap.String("cuisine", q.Cuisine),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)))
	return results, nil
}

// Run executes q and wraps the results with timing information.
func (e *Engine) Run(ctx context.Context, coll *models.Collection, q *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	results, err := e.FilteredSearch(ctx, coll, q)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{
		Query:     q.Query,
		Cuisine:   q.Cuisine,
		MaxCal:    q.MaxCalories,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}
