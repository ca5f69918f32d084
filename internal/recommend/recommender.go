package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/foodrec/internal/models"
	"go.uber.org/zap"
)

// NoResultsMessage is the reply when a search found nothing.
const NoResultsMessage = "I couldn't find any food items matching your request. Try describing what you're in the mood for with different words!"

// Generated text at or below these lengths is treated as a failed generation.
const (
	minAnswerLength     = 20
	minComparisonLength = 30
)

// contextSize is how many results are described to the generator.
const contextSize = 3

// Recommender writes recommendations from search results.
type Recommender struct {
	gen    Generator
	params GenerationParams
	logger *zap.Logger
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithLogger sets the recommender logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// WithParams overrides the generation parameters.
func WithParams(p GenerationParams) Option {
	return func(r *Recommender) { r.params = p }
}

// NewRecommender returns a recommender using gen. A nil gen always uses the template answers.
func NewRecommender(gen Generator, opts ...Option) *Recommender {
	r := &Recommender{gen: gen, params: DefaultParams, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasGenerator reports whether a text generator is configured.
func (r *Recommender) HasGenerator() bool {
	return r.gen != nil
}

func describe(res *models.SearchResult) string {
	return fmt.Sprintf("%s (%s, %d cal)", res.Name, res.Cuisine, res.CaloriesPerServing)
}

// BuildPrompt describes the top results for the generator.
func BuildPrompt(query string, results []*models.SearchResult) string {
	n := len(results)
	if n > contextSize {
		n = contextSize
	}
	foods := make([]string, n)
	for i := 0; i < n; i++ {
		foods[i] = describe(results[i])
	}
	return fmt.Sprintf("User wants: %s\nAvailable foods: %s\nRecommend 2-3 foods and explain why:", query, strings.Join(foods, ", "))
}

// BuildComparePrompt asks the generator to weigh the best match of two queries.
func BuildComparePrompt(query1, food1, query2, food2 string) string {
	return fmt.Sprintf("Compare: '%s' (best match: %s) vs '%s' (best match: %s). Which is better and why?", query1, food1, query2, food2)
}

// FallbackResponse is the template answer used when no generator is available.
func FallbackResponse(query string, results []*models.SearchResult) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	top := results[0]
	parts := []string{
		fmt.Sprintf("Based on your request for '%s', I'd recommend %s.", query, top.Name),
		fmt.Sprintf("It's a %s dish with %d calories per serving.", top.Cuisine, top.CaloriesPerServing),
	}
	if len(results) > 1 {
		parts = append(parts, fmt.Sprintf("Another great option would be %s.", results[1].Name))
	}
	return strings.Join(parts, " ")
}

func (r *Recommender) generate(ctx context.Context, prompt string) (string, error) {
	text, err := r.gen.Generate(ctx, prompt, r.params)
	if err != nil {
		r.logger.Warn("generation failed", zap.String("generator", r.gen.Name()), zap.Error(err))
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Recommend answers query from its search results. Generation failures and
// answers too short to be useful fall back to a template built from the top result.
func (r *Recommender) Recommend(ctx context.Context, query string, results []*models.SearchResult) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	if r.gen == nil {
		return FallbackResponse(query, results)
	}
	top := results[0]
	text, err := r.generate(ctx, BuildPrompt(query, results))
	if err != nil {
		return fmt.Sprintf("I recommend %s, a %s dish with %d calories.", top.Name, top.Cuisine, top.CaloriesPerServing)
	}
	if len(text) <= minAnswerLength {
		return fmt.Sprintf("I recommend %s, a %s dish with %d calories. It matches your request for '%s'.",
			top.Name, top.Cuisine, top.CaloriesPerServing, query)
	}
	return text
}

// Compare contrasts the best matches for two queries.
func (r *Recommender) Compare(ctx context.Context, query1, query2 string, results1, results2 []*models.SearchResult) string {
	switch {
	case len(results1) == 0 && len(results2) == 0:
		return "No results found for either query."
	case len(results1) == 0:
		return fmt.Sprintf("Found results for '%s' but none for '%s'.", query2, query1)
	case len(results2) == 0:
		return fmt.Sprintf("Found results for '%s' but none for '%s'.", query1, query2)
	}
	food1, food2 := results1[0].Name, results2[0].Name
	fallback := fmt.Sprintf("For '%s', I recommend %s. For '%s', %s would be perfect.", query1, food1, query2, food2)
	if r.gen == nil {
		return fallback
	}
	text, err := r.generate(ctx, BuildComparePrompt(query1, food1, query2, food2))
	if err != nil || len(text) <= minComparisonLength {
		return fallback
	}
	return text
}
