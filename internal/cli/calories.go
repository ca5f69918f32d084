package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/hyperjump/foodrec/internal/models"
)

// CalorieCollection is the collection the calorie checker searches.
const CalorieCollection = "calorie_checker"

// maxOverBudgetShown caps how many over-budget foods are listed.
const maxOverBudgetShown = 3

// CalorieReport splits matches for a query by whether they fit a budget.
type CalorieReport struct {
	Budget     int
	Within     []*models.SearchResult
	OverBudget []*models.SearchResult
}

// AverageWithin is the mean calories of the in-budget foods, or 0 when none fit.
func (r *CalorieReport) AverageWithin() float64 {
	if len(r.Within) == 0 {
		return 0
	}
	total := 0
	for _, res := range r.Within {
		total += res.CaloriesPerServing
	}
	return float64(total) / float64(len(r.Within))
}

// CheckCalories finds foods matching query that fit budget, plus a few close
// matches that exceed it.
func (a *App) CheckCalories(ctx context.Context, query string, budget int) (*CalorieReport, error) {
	within, err := a.engine.FilteredSearch(ctx, a.collection, &models.SearchQuery{
		Query:       query,
		MaxCalories: models.IntPtr(budget),
		Limit:       5,
	})
	if err != nil {
		return nil, err
	}
	all, err := a.engine.Search(ctx, a.collection, query, 5)
	if err != nil {
		return nil, err
	}
	report := &CalorieReport{Budget: budget, Within: within}
	for _, r := range all {
		if r.CaloriesPerServing > budget && len(report.OverBudget) < maxOverBudgetShown {
			report.OverBudget = append(report.OverBudget, r)
		}
	}
	return report, nil
}

// RunCalories asks for a food and a calorie budget, then reports what fits.
func (a *App) RunCalories(ctx context.Context, in io.Reader, out io.Writer) error {
	banner(out, "CALORIE CHECKER")
	fmt.Fprintln(out, "Find foods that fit a calorie budget. Type 'quit' to exit.")

	p := newPrompter(in, out)
	for {
		query, ok := p.ask("\nWhat would you like to eat? ")
		if !ok {
			return nil
		}
		if isQuit(query) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if query == "" {
			fmt.Fprintln(out, "Please enter a food to search for!")
			continue
		}
		budget, ok := askBudget(p)
		if !ok {
			return nil
		}
		a.Refresh(ctx, out)

		report, err := a.CheckCalories(ctx, query, budget)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		writeCalorieReport(out, query, report)
	}
}

// askBudget re-prompts until it reads a positive integer.
func askBudget(p *prompter) (int, bool) {
	for {
		s, ok := p.ask("Maximum calories per serving: ")
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			fmt.Fprintln(p.out, "Please enter a valid number!")
		case n <= 0:
			fmt.Fprintln(p.out, "Please enter a positive number!")
		default:
			return n, true
		}
	}
}

func writeCalorieReport(out io.Writer, query string, report *CalorieReport) {
	fmt.Fprintf(out, "\nFoods matching '%s' under %d calories:\n", query, report.Budget)
	if len(report.Within) == 0 {
		fmt.Fprintln(out, "   None found within your budget.")
	}
	for i, r := range report.Within {
		fmt.Fprintf(out, "   %d. %s (%s) - %d cal, %d remaining [%.1f%% match]\n",
			i+1, r.Name, r.Cuisine, r.CaloriesPerServing, report.Budget-r.CaloriesPerServing, Percent(r.SimilarityScore))
	}
	if len(report.OverBudget) > 0 {
		fmt.Fprintln(out, "\nOver budget:")
		for _, r := range report.OverBudget {
			fmt.Fprintf(out, "   - %s - %d cal (%d over)\n", r.Name, r.CaloriesPerServing, r.CaloriesPerServing-report.Budget)
		}
	}
	if len(report.Within) > 0 {
		fmt.Fprintf(out, "\nAverage calories of matches within budget: %.0f\n", report.AverageWithin())
	}
}
