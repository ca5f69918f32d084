// Package cli wires the food recommender together and runs its terminal sessions.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
	"github.com/hyperjump/foodrec/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one result per line.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat maps a flag value to a format.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(s) {
	case OutputText, OutputCompact, OutputJSON:
		return SearchOutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

const separator = "=================================================="

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for i, r := range response.Results {
			fmt.Fprintf(w, "%d. %s | %s | %d cal | %.1f%%\n",
				i+1, r.Name, r.Cuisine, r.CaloriesPerServing, Percent(r.SimilarityScore))
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results for '%s' in %dms\n", response.Total, response.Query, response.QueryTime)
	if f := FilterDescription(response.Cuisine, response.MaxCal); f != "no filters" {
		fmt.Fprintf(w, "Filters: %s\n", f)
	}
	WriteResults(w, response.Results, true)
	if len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(response.Suggestions, ", "))
	}
}

// WriteResults prints results either in full or as one summary line each.
func WriteResults(w io.Writer, results []*models.SearchResult, detailed bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matching results found")
		fmt.Fprintln(w, "Try adjusting your search terms or filters")
		return
	}
	fmt.Fprintln(w, separator)
	for i, r := range results {
		if !detailed {
			fmt.Fprintf(w, "   %d. %s (%.1f%% match)\n", i+1, r.Name, Percent(r.SimilarityScore))
			continue
		}
		writeOneResult(w, i+1, r)
		if i < len(results)-1 {
			fmt.Fprintln(w, "   "+strings.Repeat("-", 50))
		}
	}
	fmt.Fprintln(w, separator)
}

func writeOneResult(w io.Writer, rank int, r *models.SearchResult) {
	fmt.Fprintf(w, "\n%d. %s\n", rank, r.Name)
	fmt.Fprintf(w, "   Match Score: %.1f%%\n", Percent(r.SimilarityScore))
	fmt.Fprintf(w, "   Cuisine: %s\n", r.Cuisine)
	fmt.Fprintf(w, "   Calories: %d per serving\n", r.CaloriesPerServing)
	fmt.Fprintf(w, "   Description: %s\n", utils.Truncate(r.Description, 200))
	if r.Ingredients != "" {
		fmt.Fprintf(w, "   Ingredients: %s\n", utils.TruncateWords(r.Ingredients, 12))
	}
}

// Percent converts a similarity score to a percentage.
func Percent(score float64) float64 {
	return score * 100
}

// FilterDescription summarizes the active filters, or "no filters".
func FilterDescription(cuisine string, maxCalories *int) string {
	var parts []string
	if cuisine != "" {
		parts = append(parts, "cuisine: "+cuisine)
	}
	if maxCalories != nil {
		parts = append(parts, fmt.Sprintf("max calories: %d", *maxCalories))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}
