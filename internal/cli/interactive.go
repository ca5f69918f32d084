package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/hyperjump/foodrec/internal/models"
)

// InteractiveCollection is the collection the interactive session searches.
const InteractiveCollection = "interactive_food_search"

// historyShown is how many recent searches the history command prints.
const historyShown = 10

// RunInteractive runs the free-text search loop until quit or end of input.
func (a *App) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	banner(out, "INTERACTIVE FOOD SEARCH")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  - Type any food name or description to search")
	fmt.Fprintln(out, "  - 'help' shows available commands")
	fmt.Fprintln(out, "  - 'history' shows your recent searches")
	fmt.Fprintln(out, "  - 'quit' or 'exit' leaves the session")

	p := newPrompter(in, out)
	var history []string
	for {
		line, ok := p.ask("\nSearch for food: ")
		if !ok {
			return nil
		}
		a.Refresh(ctx, out)
		switch {
		case line == "":
			fmt.Fprintln(out, "   Please enter a search term or 'help' for commands")
		case isQuit(line):
			fmt.Fprintln(out, "\nThank you for using the Food Recommendation System! Goodbye!")
			return nil
		case isHelp(line):
			interactiveHelp(out)
		case line == "history":
			writeHistory(out, history)
		default:
			history = append(history, line)
			if err := a.interactiveSearch(ctx, out, line); err != nil {
				fmt.Fprintf(out, "Error processing request: %v\n", err)
			}
		}
	}
}

func (a *App) interactiveSearch(ctx context.Context, out io.Writer, query string) error {
	fmt.Fprintf(out, "\nSearching for '%s'...\n", query)
	results, err := a.engine.Search(ctx, a.collection, query, 5)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching foods found.")
		fmt.Fprintln(out, "Try different keywords like:")
		fmt.Fprintln(out, "   - Cuisine types: 'Italian', 'Thai', 'Mexican'")
		fmt.Fprintln(out, "   - Ingredients: 'chicken', 'vegetables', 'cheese'")
		fmt.Fprintln(out, "   - Descriptors: 'spicy', 'sweet', 'healthy'")
		return nil
	}
	fmt.Fprintf(out, "\nFound %d recommendations:\n", len(results))
	WriteResults(out, results, true)
	for _, s := range RelatedSearches(results) {
		fmt.Fprintf(out, "   - %s\n", s)
	}
	return nil
}

// RelatedSearches suggests follow-up searches: up to three of the result
// cuisines, then a lighter or heartier search depending on average calories.
func RelatedSearches(results []*models.SearchResult) []string {
	if len(results) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var cuisines []string
	total := 0
	for _, r := range results {
		total += r.CaloriesPerServing
		if !seen[r.Cuisine] {
			seen[r.Cuisine] = true
			cuisines = append(cuisines, r.Cuisine)
		}
	}
	sort.Strings(cuisines)
	if len(cuisines) > 3 {
		cuisines = cuisines[:3]
	}

	out := make([]string, 0, len(cuisines)+1)
	for _, c := range cuisines {
		out = append(out, fmt.Sprintf("Try '%s dishes' for more %s options", c, c))
	}
	if float64(total)/float64(len(results)) > 350 {
		out = append(out, "Try 'low calorie' for lighter options")
	} else {
		out = append(out, "Try 'hearty meal' for more substantial dishes")
	}
	return out
}

func writeHistory(out io.Writer, history []string) {
	if len(history) == 0 {
		fmt.Fprintln(out, "No search history available")
		return
	}
	fmt.Fprintln(out, "\nYour Search History:")
	start := 0
	if len(history) > historyShown {
		start = len(history) - historyShown
	}
	for i, q := range history[start:] {
		fmt.Fprintf(out, "%d. %s\n", i+1, q)
	}
}

func interactiveHelp(out io.Writer) {
	fmt.Fprintln(out, "\nHELP MENU")
	fmt.Fprintln(out, "Search Examples:")
	fmt.Fprintln(out, "  - 'chocolate dessert' finds chocolate desserts")
	fmt.Fprintln(out, "  - 'Italian food' finds Italian cuisine")
	fmt.Fprintln(out, "  - 'baked goods' finds baked items")
	fmt.Fprintln(out, "  - 'low calorie' finds lower-calorie options")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  - 'help' shows this help menu")
	fmt.Fprintln(out, "  - 'history' shows your recent searches")
	fmt.Fprintln(out, "  - 'quit' exits the system")
}
