package models

import (
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the number of results returned when none is requested.
	DefaultLimit = 5
	// MaxLimit bounds how many neighbors a single query may ask for.
	MaxLimit = 100
)

// SearchQuery is a free-text search with optional structured filters.
type SearchQuery struct {
	Query       string `json:"query"`
	Limit       int    `json:"limit,omitempty"`
	Cuisine     string `json:"cuisine,omitempty"`
	MaxCalories *int   `json:"max_calories,omitempty"`
}

// Normalize trims the query and cuisine and clamps the limit into [1, MaxLimit].
func (q *SearchQuery) Normalize() {
	q.Query = strings.TrimSpace(q.Query)
	q.Cuisine = strings.TrimSpace(q.Cuisine)
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// Validate normalizes the query and rejects a negative calorie ceiling.
// An empty query text is valid and simply matches nothing.
func (q *SearchQuery) Validate() error {
	q.Normalize()
	if q.MaxCalories != nil && *q.MaxCalories < 0 {
		return fmt.Errorf("max calories cannot be negative: %d", *q.MaxCalories)
	}
	return nil
}

// HasFilters reports whether a cuisine or calorie filter is set.
func (q *SearchQuery) HasFilters() bool {
	return q.Cuisine != "" || q.MaxCalories != nil
}

// IntPtr returns a pointer to v, for building calorie filters.
func IntPtr(v int) *int {
	return &v
}
