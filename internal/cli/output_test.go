package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/foodrec/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:     "spicy noodles",
		Cuisine:   "Thai",
		MaxCal:    models.IntPtr(500),
		QueryTime: 12,
		Total:     2,
		Results: []*models.SearchResult{
			{ID: "food_0", Name: "Pad Thai", Cuisine: "Thai", CaloriesPerServing: 420, Description: "stir-fried rice noodles", Ingredients: "rice noodles tamarind peanuts", SimilarityScore: 0.8123},
			{ID: "food_4", Name: "Drunken Noodles", Cuisine: "Thai", CaloriesPerServing: 480, Description: "wide noodles with basil", SimilarityScore: 0.5},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "spicy noodles" || len(decoded.Results) != 2 || decoded.Results[0].Name != "Pad Thai" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.MaxCal == nil || *decoded.MaxCal != 500 {
		t.Errorf("max calories lost: %v", decoded.MaxCal)
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Found 2 results for 'spicy noodles' in 12ms",
		"Filters: cuisine: Thai, max calories: 500",
		"1. Pad Thai",
		"Match Score: 81.2%",
		"Calories: 420 per serving",
		"Ingredients: rice noodles tamarind peanuts",
		"2. Drunken Noodles",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[0] != "1. Pad Thai | Thai | 420 cal | 81.2%" {
		t.Errorf("compact output = %q", lines)
	}
}

func TestWriteSearchResults_emptyWithSuggestions(t *testing.T) {
	resp := &models.SearchResponse{Query: "curry", Cuisine: "Thia", Results: []*models.SearchResult{}, Suggestions: []string{"Thai"}}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No matching results found") || !strings.Contains(out, "Did you mean: Thai?") {
		t.Errorf("output:\n%s", out)
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "compact", "json"} {
		if f, err := ParseOutputFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestFilterDescription(t *testing.T) {
	if got := FilterDescription("", nil); got != "no filters" {
		t.Errorf("got %q", got)
	}
	if got := FilterDescription("Italian", nil); got != "cuisine: Italian" {
		t.Errorf("got %q", got)
	}
	if got := FilterDescription("", models.IntPtr(300)); got != "max calories: 300" {
		t.Errorf("got %q", got)
	}
}
