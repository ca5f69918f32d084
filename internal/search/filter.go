package search

import (
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
)

// MatchesCuisine reports whether cuisine equals want, ignoring case and surrounding space.
// An empty want matches everything.
func MatchesCuisine(cuisine, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(cuisine), want)
}

// WithinCalories reports whether r fits under maxCalories. A nil limit matches everything.
func WithinCalories(r *models.SearchResult, maxCalories *int) bool {
	return maxCalories == nil || r.CaloriesPerServing <= *maxCalories
}

// ApplyFilters keeps the results that pass both filters, preserving order.
// The returned slice is never nil.
func ApplyFilters(results []*models.SearchResult, cuisine string, maxCalories *int) []*models.SearchResult {
	out := make([]*models.SearchResult, 0, len(results))
	for _, r := range results {
		if MatchesCuisine(r.Cuisine, cuisine) && WithinCalories(r, maxCalories) {
			out = append(out, r)
		}
	}
	return out
}
