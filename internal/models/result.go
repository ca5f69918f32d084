package models

import "strconv"

// SearchResult is one ranked hit rehydrated from index metadata.
type SearchResult struct {
	ID                 string  `json:"id"`
	Name               string  `json:"food_name"`
	Cuisine            string  `json:"cuisine_type"`
	Description        string  `json:"food_description"`
	CaloriesPerServing int     `json:"food_calories_per_serving"`
	Ingredients        string  `json:"food_ingredients"`
	HealthBenefits     string  `json:"food_health_benefits"`
	CookingMethod      string  `json:"cooking_method"`
	TasteProfile       string  `json:"taste_profile"`
	SimilarityScore    float64 `json:"similarity_score"`
}

// SearchResponse wraps results for display.
type SearchResponse struct {
	Query     string          `json:"query"`
	Cuisine   string          `json:"cuisine,omitempty"`
	MaxCal    *int            `json:"max_calories,omitempty"`
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	// Suggestions holds "did you mean" cuisine names when a cuisine filter matched nothing.
	Suggestions []string `json:"suggestions,omitempty"`
}

// ResultFromHit rehydrates a hit's metadata into a SearchResult with the given score.
func ResultFromHit(hit *Hit, score float64) *SearchResult {
	md := hit.Metadata
	return &SearchResult{
		ID:                 hit.ID,
		Name:               md[MetaFoodName],
		Cuisine:            md[MetaCuisineType],
		Description:        md[MetaDescription],
		CaloriesPerServing: ParseCalories(md[MetaCalories]),
		Ingredients:        md[MetaIngredients],
		HealthBenefits:     md[MetaHealthBenefits],
		CookingMethod:      md[MetaCookingMethod],
		TasteProfile:       md[MetaTasteProfile],
		SimilarityScore:    score,
	}
}

// ParseCalories reads a calorie count stored as text. Anything that is not a
// plain run of ASCII digits, or does not fit an int, gives 0.
func ParseCalories(s string) int {
	if s == "" {
		return 0
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
