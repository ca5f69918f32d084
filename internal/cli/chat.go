package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
	"github.com/hyperjump/foodrec/internal/recommend"
	"github.com/hyperjump/foodrec/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// ChatCollection is the collection the recommendation chat searches.
const ChatCollection = "enhanced_rag_food_chatbot"

// chatResults is how many matches back each recommendation.
const chatResults = 3

// RunChat runs the recommendation chat. 'compare' contrasts two queries and
// 'history' lists recent requests.
func (a *App) RunChat(ctx context.Context, in io.Reader, out io.Writer) error {
	banner(out, "FOOD RECOMMENDATION CHAT")
	if a.recommender.HasGenerator() {
		fmt.Fprintf(out, "Recommendations by %s\n", a.generator.Name())
	} else {
		fmt.Fprintln(out, "No text generator configured, using template recommendations")
	}
	chatHelp(out)

	p := newPrompter(in, out)
	var history recommend.History
	for {
		line, ok := p.ask("\nYou: ")
		if !ok {
			return nil
		}
		a.Refresh(ctx, out)
		switch {
		case line == "":
			fmt.Fprintln(out, "Bot: Please tell me what kind of food you're looking for!")
		case isQuit(line):
			fmt.Fprintln(out, "\nBot: Thanks for chatting! Enjoy your meal!")
			return nil
		case isHelp(line):
			chatHelp(out)
		case strings.EqualFold(line, "history"):
			writeChatHistory(out, history.Items())
		case strings.EqualFold(line, "compare"):
			if !a.chatCompare(ctx, p) {
				return nil
			}
		default:
			history.Add(line)
			if err := a.chatRecommend(ctx, out, line); err != nil {
				fmt.Fprintf(out, "Bot: Sorry, I ran into a problem: %v\n", err)
			}
		}
	}
}

func (a *App) chatRecommend(ctx context.Context, out io.Writer, query string) error {
	results, err := a.engine.Search(ctx, a.collection, query, chatResults)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nBot: %s\n", a.recommender.Recommend(ctx, query, results))
	if len(results) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nMatches:")
	WriteResults(out, results, false)
	return nil
}

// chatCompare reads two queries and prints their comparison. It returns false at end of input.
func (a *App) chatCompare(ctx context.Context, p *prompter) bool {
	q1, ok := p.ask("First food query: ")
	if !ok {
		return false
	}
	q2, ok := p.ask("Second food query: ")
	if !ok {
		return false
	}
	if q1 == "" || q2 == "" {
		fmt.Fprintln(p.out, "Bot: Please give me two things to compare!")
		return true
	}
	var r1, r2 []*models.SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r1, err = a.engine.Search(gctx, a.collection, q1, chatResults)
		return err
	})
	g.Go(func() (err error) {
		r2, err = a.engine.Search(gctx, a.collection, q2, chatResults)
		return err
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(p.out, "Bot: Sorry, I ran into a problem: %v\n", err)
		return true
	}
	writeSideBySide(p.out, q1, q2, r1, r2)
	fmt.Fprintf(p.out, "\nBot: %s\n", a.recommender.Compare(ctx, q1, q2, r1, r2))
	return true
}

// writeSideBySide lists the matches for two queries in two columns.
func writeSideBySide(out io.Writer, q1, q2 string, r1, r2 []*models.SearchResult) {
	fmt.Fprintf(out, "\n%-35s | %s\n", utils.Truncate(q1, 30), utils.Truncate(q2, 30))
	fmt.Fprintln(out, strings.Repeat("-", 35)+"-+-"+strings.Repeat("-", 35))
	rows := len(r1)
	if len(r2) > rows {
		rows = len(r2)
	}
	for i := 0; i < rows; i++ {
		fmt.Fprintf(out, "%-35s | %s\n", sideCell(r1, i), sideCell(r2, i))
	}
}

func sideCell(results []*models.SearchResult, i int) string {
	if i >= len(results) {
		return ""
	}
	r := results[i]
	return fmt.Sprintf("%s (%d cal)", utils.Truncate(r.Name, 20), r.CaloriesPerServing)
}

func writeChatHistory(out io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(out, "Bot: You haven't asked for anything yet.")
		return
	}
	fmt.Fprintln(out, "Bot: Your recent requests:")
	for i, q := range items {
		fmt.Fprintf(out, "   %d. %s\n", i+1, q)
	}
}

func chatHelp(out io.Writer) {
	fmt.Fprintln(out, "Tell me what you're in the mood for and I'll recommend something.")
	fmt.Fprintln(out, "  - 'compare' compares two food queries side by side")
	fmt.Fprintln(out, "  - 'history' shows your recent requests")
	fmt.Fprintln(out, "  - 'quit' ends the chat")
}
