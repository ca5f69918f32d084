package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/hyperjump/foodrec/internal/models"
)

// LimitsCollection is the collection the result limit comparison searches.
const LimitsCollection = "result_test"

// LimitsQuery is the query compared before the interactive loop starts.
const LimitsQuery = "spicy chicken"

// DefaultLimits are the result limits compared for LimitsQuery.
var DefaultLimits = []int{1, 3, 5, 10}

const (
	minAskedLimit = 1
	maxAskedLimit = 20
)

// ScoreSummary describes the similarity scores of one result list.
type ScoreSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Best    float64 `json:"best"`
	Worst   float64 `json:"worst"`
}

// SummarizeScores returns the score summary of results. An empty list gives
// the zero summary.
func SummarizeScores(results []*models.SearchResult) ScoreSummary {
	if len(results) == 0 {
		return ScoreSummary{}
	}
	s := ScoreSummary{Count: len(results), Best: results[0].SimilarityScore, Worst: results[0].SimilarityScore}
	var total float64
	for _, r := range results {
		total += r.SimilarityScore
		if r.SimilarityScore > s.Best {
			s.Best = r.SimilarityScore
		}
		if r.SimilarityScore < s.Worst {
			s.Worst = r.SimilarityScore
		}
	}
	s.Average = total / float64(len(results))
	return s
}

// LimitRun is one search at a fixed result limit.
type LimitRun struct {
	Limit   int                    `json:"limit"`
	Results []*models.SearchResult `json:"results"`
	Summary ScoreSummary           `json:"summary"`
}

// CompareLimits runs query once per limit, in the given order.
func (a *App) CompareLimits(ctx context.Context, query string, limits []int) ([]LimitRun, error) {
	if a.collection == nil {
		return nil, ErrNoCollection
	}
	runs := make([]LimitRun, 0, len(limits))
	for _, limit := range limits {
		results, err := a.engine.Search(ctx, a.collection, query, limit)
		if err != nil {
			return nil, fmt.Errorf("limit %d: %w", limit, err)
		}
		runs = append(runs, LimitRun{Limit: limit, Results: results, Summary: SummarizeScores(results)})
	}
	return runs, nil
}

// WriteLimitRuns prints every run with its results and score summary.
func WriteLimitRuns(w io.Writer, runs []LimitRun) {
	for _, run := range runs {
		fmt.Fprintf(w, "Top %d result(s):\n", run.Limit)
		fmt.Fprintln(w, "------------------------------")
		if len(run.Results) == 0 {
			fmt.Fprintln(w, "  No results found!")
		}
		for i, r := range run.Results {
			fmt.Fprintf(w, "  %d. %s\n", i+1, r.Name)
			fmt.Fprintf(w, "     Score: %.3f\n", r.SimilarityScore)
			fmt.Fprintf(w, "     Cuisine: %s\n", r.Cuisine)
			fmt.Fprintf(w, "     Calories: %d\n\n", r.CaloriesPerServing)
		}
		writeScoreSummary(w, run.Summary)
		fmt.Fprintln(w, separator)
	}
}

func writeScoreSummary(w io.Writer, s ScoreSummary) {
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "  Average score: %.3f\n", s.Average)
	fmt.Fprintf(w, "  Best score: %.3f\n", s.Best)
	if s.Count > 1 {
		fmt.Fprintf(w, "  Worst score: %.3f\n", s.Worst)
	}
}

// askedLimit parses a result limit typed at the prompt. Anything outside 1-20
// falls back to the default limit.
func askedLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < minAskedLimit || n > maxAskedLimit {
		return models.DefaultLimit
	}
	return n
}

// RunLimits compares DefaultLimits for LimitsQuery, then lets the user pick a
// query and a limit until a blank query or end of input.
func (a *App) RunLimits(ctx context.Context, in io.Reader, out io.Writer) error {
	banner(out, "SIMILARITY SEARCH RESULT LIMITER")
	fmt.Fprintf(out, "Testing query: '%s'\n\n", LimitsQuery)
	runs, err := a.CompareLimits(ctx, LimitsQuery, DefaultLimits)
	if err != nil {
		return err
	}
	WriteLimitRuns(out, runs)

	fmt.Fprintln(out, "\nTest your own queries with different result limits.")
	p := newPrompter(in, out)
	for {
		query, ok := p.ask("\nEnter search query (or press Enter to exit): ")
		if !ok || query == "" || isQuit(query) {
			break
		}
		a.Refresh(ctx, out)
		answer, ok := p.ask(fmt.Sprintf("How many results? (%d-%d): ", minAskedLimit, maxAskedLimit))
		if !ok {
			break
		}
		limit := askedLimit(answer)
		fmt.Fprintf(out, "\nSearching for '%s' (limit: %d)\n", query, limit)
		results, err := a.engine.Search(ctx, a.collection, query, limit)
		if err != nil {
			fmt.Fprintf(out, "Error processing request: %v\n", err)
			continue
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "No results found!")
			continue
		}
		fmt.Fprintf(out, "Found %d results:\n", len(results))
		for i, r := range results {
			fmt.Fprintf(out, "  %d. %s (Score: %.3f)\n", i+1, r.Name, r.SimilarityScore)
		}
		fmt.Fprintln(out)
		writeScoreSummary(out, SummarizeScores(results))
	}
	fmt.Fprintln(out, "\nThanks for testing result limits!")
	return nil
}
