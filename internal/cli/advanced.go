package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
)

// AdvancedCollection is the collection the advanced search session searches.
const AdvancedCollection = "advanced_food_search"

// Demo is a canned filtered search shown in demonstration mode.
type Demo struct {
	Title       string
	Query       string
	Cuisine     string
	MaxCalories *int
}

// Demos are the searches run by demonstration mode.
var Demos = []Demo{
	{Title: "Italian Cuisine Search", Query: "creamy pasta", Cuisine: "Italian"},
	{Title: "Low-Calorie Healthy Options", Query: "healthy meal", MaxCalories: models.IntPtr(300)},
	{Title: "Asian Light Dishes", Query: "light fresh meal", Cuisine: "Japanese", MaxCalories: models.IntPtr(250)},
}

// RunAdvanced runs the filter menu until exit or end of input.
func (a *App) RunAdvanced(ctx context.Context, in io.Reader, out io.Writer) error {
	banner(out, "ADVANCED SEARCH WITH FILTERS")
	advancedMenu(out)

	p := newPrompter(in, out)
	for {
		choice, ok := p.ask("\nSelect option (1-7): ")
		if !ok {
			return nil
		}
		a.Refresh(ctx, out)
		var err error
		switch choice {
		case "1":
			err = a.basicSearch(ctx, p)
		case "2":
			err = a.cuisineSearch(ctx, p)
		case "3":
			err = a.calorieSearch(ctx, p)
		case "4":
			err = a.combinedSearch(ctx, p)
		case "5":
			err = a.runDemos(ctx, p)
		case "6":
			advancedHelp(out)
		case "7":
			fmt.Fprintln(out, "Exiting Advanced Search System. Goodbye!")
			return nil
		default:
			fmt.Fprintln(out, "Invalid option. Please select 1-7.")
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func advancedMenu(out io.Writer) {
	fmt.Fprintln(out, "Search Options:")
	fmt.Fprintln(out, "  1. Basic similarity search")
	fmt.Fprintln(out, "  2. Cuisine-filtered search")
	fmt.Fprintln(out, "  3. Calorie-filtered search")
	fmt.Fprintln(out, "  4. Combined filters search")
	fmt.Fprintln(out, "  5. Demonstration mode")
	fmt.Fprintln(out, "  6. Help")
	fmt.Fprintln(out, "  7. Exit")
}

// parseCalories reads an optional calorie ceiling. Anything but a plain
// non-negative integer means no limit.
func parseCalories(s string) *int {
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func (a *App) runFiltered(ctx context.Context, out io.Writer, q *models.SearchQuery, title string, detailed bool) error {
	resp, err := a.Search(ctx, q)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", title)
	WriteResults(out, resp.Results, detailed)
	if len(resp.Suggestions) > 0 {
		fmt.Fprintf(out, "Did you mean: %s?\n", strings.Join(resp.Suggestions, ", "))
	}
	return nil
}

func (a *App) basicSearch(ctx context.Context, p *prompter) error {
	fmt.Fprintln(p.out, "\nBASIC SIMILARITY SEARCH")
	query, _ := p.ask("Enter search query: ")
	if query == "" {
		fmt.Fprintln(p.out, "Please enter a search term")
		return nil
	}
	fmt.Fprintf(p.out, "\nSearching for '%s'...\n", query)
	return a.runFiltered(ctx, p.out, &models.SearchQuery{Query: query, Limit: 5}, "Basic Search Results", true)
}

func (a *App) cuisineSearch(ctx context.Context, p *prompter) error {
	fmt.Fprintln(p.out, "\nCUISINE-FILTERED SEARCH")
	fmt.Fprintln(p.out, "Available cuisines:")
	for i, c := range a.cuisines {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, c)
	}
	query, _ := p.ask("\nEnter search query: ")
	choice, _ := p.ask("Enter cuisine number (or cuisine name): ")
	if query == "" {
		fmt.Fprintln(p.out, "Please enter a search term")
		return nil
	}

	cuisine := choice
	if n, err := strconv.Atoi(choice); err == nil {
		cuisine = ""
		if n >= 1 && n <= len(a.cuisines) {
			cuisine = a.cuisines[n-1]
		}
	}
	if cuisine == "" {
		fmt.Fprintln(p.out, "Invalid cuisine selection")
		return nil
	}
	fmt.Fprintf(p.out, "\nSearching for '%s' in %s cuisine...\n", query, cuisine)
	q := &models.SearchQuery{Query: query, Cuisine: cuisine, Limit: 5}
	return a.runFiltered(ctx, p.out, q, fmt.Sprintf("Cuisine-Filtered Results (%s)", cuisine), true)
}

func (a *App) calorieSearch(ctx context.Context, p *prompter) error {
	fmt.Fprintln(p.out, "\nCALORIE-FILTERED SEARCH")
	query, _ := p.ask("Enter search query: ")
	maxCal := parseCalories(mustAsk(p, "Enter maximum calories (or press Enter for no limit): "))
	if query == "" {
		fmt.Fprintln(p.out, "Please enter a search term")
		return nil
	}
	label := "any calories"
	if maxCal != nil {
		label = fmt.Sprintf("under %d calories", *maxCal)
	}
	fmt.Fprintf(p.out, "\nSearching for '%s' with %s...\n", query, label)
	q := &models.SearchQuery{Query: query, MaxCalories: maxCal, Limit: 5}
	return a.runFiltered(ctx, p.out, q, fmt.Sprintf("Calorie-Filtered Results (%s)", label), true)
}

func (a *App) combinedSearch(ctx context.Context, p *prompter) error {
	fmt.Fprintln(p.out, "\nCOMBINED FILTERS SEARCH")
	query, _ := p.ask("Enter search query: ")
	cuisine, _ := p.ask("Enter cuisine type (optional): ")
	maxCal := parseCalories(mustAsk(p, "Enter maximum calories (optional): "))
	if query == "" {
		fmt.Fprintln(p.out, "Please enter a search term")
		return nil
	}
	filters := FilterDescription(cuisine, maxCal)
	fmt.Fprintf(p.out, "\nSearching for '%s' with %s...\n", query, filters)
	q := &models.SearchQuery{Query: query, Cuisine: cuisine, MaxCalories: maxCal, Limit: 5}
	return a.runFiltered(ctx, p.out, q, fmt.Sprintf("Combined Filtered Results (%s)", filters), true)
}

func (a *App) runDemos(ctx context.Context, p *prompter) error {
	fmt.Fprintln(p.out, "\nSEARCH DEMONSTRATIONS")
	for i, d := range Demos {
		fmt.Fprintf(p.out, "\n%d. %s\n", i+1, d.Title)
		fmt.Fprintf(p.out, "   Query: '%s'\n", d.Query)
		if f := FilterDescription(d.Cuisine, d.MaxCalories); f != "no filters" {
			fmt.Fprintf(p.out, "   Filters: %s\n", f)
		}
		q := &models.SearchQuery{Query: d.Query, Cuisine: d.Cuisine, MaxCalories: d.MaxCalories, Limit: 3}
		if err := a.runFiltered(ctx, p.out, q, d.Title, false); err != nil {
			return err
		}
		if i < len(Demos)-1 {
			if _, ok := p.ask("\nPress Enter to continue to next demonstration..."); !ok {
				return nil
			}
		}
	}
	return nil
}

func mustAsk(p *prompter, label string) string {
	s, _ := p.ask(label)
	return s
}

func advancedHelp(out io.Writer) {
	fmt.Fprintln(out, "\nADVANCED SEARCH HELP")
	fmt.Fprintln(out, "Search Types:")
	fmt.Fprintln(out, "  1. Basic Search - Standard similarity search")
	fmt.Fprintln(out, "  2. Cuisine Filter - Search within specific cuisine types")
	fmt.Fprintln(out, "  3. Calorie Filter - Search for foods under calorie limits")
	fmt.Fprintln(out, "  4. Combined Filters - Use multiple filters together")
	fmt.Fprintln(out, "  5. Demonstrations - See predefined search examples")
	fmt.Fprintln(out, "Tips:")
	fmt.Fprintln(out, "  - Use descriptive terms: 'creamy', 'spicy', 'light'")
	fmt.Fprintln(out, "  - Combine ingredients: 'chicken vegetables'")
	fmt.Fprintln(out, "  - Filter by calories for dietary goals")
}
