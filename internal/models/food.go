// Package models defines core data structures for food records, indexed entries, queries, and results.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FoodRecord is one validated catalog entry.
type FoodRecord struct {
	Name               string      `json:"food_name"`
	Cuisine            string      `json:"cuisine_type"`
	Description        string      `json:"food_description"`
	CaloriesPerServing int         `json:"food_calories_per_serving"`
	Ingredients        Ingredients `json:"food_ingredients"`
	HealthBenefits     string      `json:"food_health_benefits,omitempty"`
	CookingMethod      string      `json:"cooking_method,omitempty"`
	TasteProfile       string      `json:"taste_profile,omitempty"`
}

// Ingredients holds either an ordered list of ingredients or a single free-text blob,
// depending on how the catalog spelled them.
type Ingredients struct {
	List []string
	Text string
}

// IngredientList returns ingredients given as a list.
func IngredientList(items ...string) Ingredients {
	return Ingredients{List: items}
}

// IngredientText returns ingredients given as one string.
func IngredientText(s string) Ingredients {
	return Ingredients{Text: s}
}

// IsEmpty reports whether there are no ingredients at all.
func (in Ingredients) IsEmpty() bool {
	return len(in.List) == 0 && in.Text == ""
}

// String joins list ingredients with spaces, or returns the text blob.
func (in Ingredients) String() string {
	if len(in.List) > 0 {
		return strings.Join(in.List, " ")
	}
	return in.Text
}

// MarshalJSON writes a list as a JSON array and a blob as a JSON string.
func (in Ingredients) MarshalJSON() ([]byte, error) {
	if in.Text != "" && len(in.List) == 0 {
		return json.Marshal(in.Text)
	}
	if in.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(in.List)
}

// UnmarshalJSON accepts an array (non-string items are formatted) or a string.
func (in *Ingredients) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = IngredientsFrom(raw)
	return nil
}

// IngredientsFrom converts a decoded JSON value into Ingredients. Items are trimmed
// and empty items dropped; nil and unsupported shapes give empty Ingredients.
func IngredientsFrom(raw interface{}) Ingredients {
	switch v := raw.(type) {
	case string:
		return Ingredients{Text: strings.TrimSpace(v)}
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			s, ok := item.(string)
			if !ok {
				s = fmt.Sprint(item)
			}
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		return Ingredients{List: list}
	case []string:
		return Ingredients{List: v}
	}
	return Ingredients{}
}
