package models

import (
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name      string
		query     *SearchQuery
		wantErr   bool
		wantLimit int
	}{
		{"empty query is valid", &SearchQuery{Query: ""}, false, DefaultLimit},
		{"valid query", &SearchQuery{Query: "pasta", Limit: 3}, false, 3},
		{"sets default limit", &SearchQuery{Query: "x", Limit: 0}, false, DefaultLimit},
		{"negative limit gets default", &SearchQuery{Query: "x", Limit: -4}, false, DefaultLimit},
		{"caps limit at 100", &SearchQuery{Query: "x", Limit: 200}, false, MaxLimit},
		{"negative calories", &SearchQuery{Query: "x", MaxCalories: IntPtr(-1)}, true, DefaultLimit},
		{"zero calories allowed", &SearchQuery{Query: "x", MaxCalories: IntPtr(0)}, false, DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.query.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.query.Limit, tt.wantLimit)
			}
		})
	}
}

func TestSearchQuery_NormalizeTrims(t *testing.T) {
	q := &SearchQuery{Query: "  spicy curry \n", Cuisine: " Thai "}
	q.Normalize()
	if q.Query != "spicy curry" || q.Cuisine != "Thai" {
		t.Errorf("got query %q cuisine %q", q.Query, q.Cuisine)
	}
}

func TestSearchQuery_HasFilters(t *testing.T) {
	if (&SearchQuery{Query: "x"}).HasFilters() {
		t.Error("no filters expected")
	}
	if !(&SearchQuery{Cuisine: "Thai"}).HasFilters() {
		t.Error("cuisine is a filter")
	}
	if !(&SearchQuery{MaxCalories: IntPtr(0)}).HasFilters() {
		t.Error("zero calorie ceiling is still a filter")
	}
}
