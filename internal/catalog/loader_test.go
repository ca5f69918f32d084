package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foods.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_testdata(t *testing.T) {
	records, err := Load(filepath.Join("testdata", "foods.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	want := []string{"Veggie Stir Fry", "Alfredo Pasta", "Miso Soup"}
	for i, r := range records {
		if r.Name != want[i] {
			t.Errorf("record %d name = %q, want %q", i, r.Name, want[i])
		}
	}
	if got := records[0].Ingredients.String(); got != "broccoli bell pepper soy sauce" {
		t.Errorf("list ingredients = %q", got)
	}
	if got := records[1].Ingredients.String(); got != "fettuccine, butter, parmesan" {
		t.Errorf("text ingredients = %q", got)
	}
	if !records[2].Ingredients.IsEmpty() || records[2].TasteProfile != "" {
		t.Errorf("optional fields should default empty: %+v", records[2])
	}
}

func TestLoad_dropsExactlyInvalidRecords(t *testing.T) {
	path := writeCatalog(t, `[
		{"food_name":"A","cuisine_type":"Thai","food_description":"one"},
		{"food_name":"  ","cuisine_type":"Thai","food_description":"blank name"},
		{"food_name":"B","food_description":"no cuisine"},
		{"food_name":"C","cuisine_type":"Thai","food_description":"three"},
		{"food_name":"D","cuisine_type":"Thai","food_description":42},
		[1,2,3],
		null
	]`)
	records, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0].Name != "A" || records[1].Name != "C" || records[2].Name != "D" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[2].Description != "42" {
		t.Errorf("numeric description = %q, want \"42\"", records[2].Description)
	}
}

func TestLoad_normalizesFields(t *testing.T) {
	path := writeCatalog(t, `[{
		"food_name": "  Green   Curry\n",
		"cuisine_type": " Thai ",
		"food_description": "spicy\tcoconut curry",
		"food_calories_per_serving": "380",
		"food_ingredients": [" chicken ", "", "basil"],
		"taste_profile": "  spicy "
	}]`)
	records, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	r := records[0]
	if r.Name != "Green   Curry" || r.Cuisine != "Thai" || r.Description != "spicy\tcoconut curry" {
		t.Errorf("text should be trimmed only: %+v", r)
	}
	if r.CaloriesPerServing != 380 {
		t.Errorf("calories = %d", r.CaloriesPerServing)
	}
	if got := r.Ingredients.String(); got != "chicken basil" {
		t.Errorf("ingredients = %q", got)
	}
	if r.TasteProfile != "spicy" {
		t.Errorf("taste profile = %q", r.TasteProfile)
	}
}

func TestParse_scalarTextFields(t *testing.T) {
	records, err := Parse([]byte(`[
		{"food_name": 42, "cuisine_type": "Thai", "food_description": "numbered dish", "taste_profile": 5, "cooking_method": true},
		{"food_name": "Pad Thai", "cuisine_type": "Thai", "food_description": "rice noodles"},
		{"food_name": null, "cuisine_type": "Thai", "food_description": "null name"},
		{"food_name": {"en": "Soup"}, "cuisine_type": "Thai", "food_description": "object name"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	r := records[0]
	if r.Name != "42" || r.TasteProfile != "5" || r.CookingMethod != "true" {
		t.Errorf("scalars not kept as text: %+v", r)
	}
	if records[1].Name != "Pad Thai" {
		t.Errorf("second record = %q", records[1].Name)
	}
}

func TestLoad_calorieCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"integer", `250`, 250},
		{"float truncates", `250.9`, 250},
		{"numeric string", `"120"`, 120},
		{"negative", `-40`, 0},
		{"bad string", `"lots"`, 0},
		{"fraction string", `"12.5"`, 0},
		{"bool", `true`, 0},
		{"null", `null`, 0},
		{"huge", `1e40`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalog(t, `[{"food_name":"A","cuisine_type":"B","food_description":"C","food_calories_per_serving":`+tt.raw+`}]`)
			records, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if records[0].CaloriesPerServing != tt.want {
				t.Errorf("calories = %d, want %d", records[0].CaloriesPerServing, tt.want)
			}
		})
	}
}

func TestLoad_missingCalories(t *testing.T) {
	records, err := Parse([]byte(`[{"food_name":"A","cuisine_type":"B","food_description":"C"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if records[0].CaloriesPerServing != 0 {
		t.Errorf("calories = %d", records[0].CaloriesPerServing)
	}
}

func TestLoad_errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "missing.json"), ErrNotFound},
		{"directory", dir, ErrNotFound},
		{"invalid json", writeCatalog(t, `[{"food_name": `), ErrFormat},
		{"object not array", writeCatalog(t, `{"food_name":"A"}`), ErrFormat},
		{"trailing data", writeCatalog(t, `[] []`), ErrFormat},
		{"empty array", writeCatalog(t, `[]`), ErrEmptyCatalog},
		{"all invalid", writeCatalog(t, `[{"food_name":"A"}, 3, "x"]`), ErrEmptyCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}
