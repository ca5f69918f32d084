package vector

import (
	"context"
	"math"
	"testing"
)

func TestMemoryIndex_AddSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	ids := []string{"a", "b", "c"}
	if err := idx.Add(ctx, ids, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("order = %s, %s", results[0].ID, results[1].ID)
	}
	if math.Abs(results[0].Distance) > 1e-9 {
		t.Errorf("identical vector distance = %v", results[0].Distance)
	}
}

func TestMemoryIndex_cosineIgnoresMagnitude(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"long", "opposite"}, [][]float32{{10, 0}, {-1, 0}})
	results, err := idx.Search(ctx, []float32{0.5, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if math.Abs(results[0].Distance) > 1e-9 {
		t.Errorf("same direction distance = %v", results[0].Distance)
	}
	if math.Abs(results[1].Distance-2) > 1e-9 {
		t.Errorf("opposite direction distance = %v", results[1].Distance)
	}
}

func TestMemoryIndex_tiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	ids := []string{"food_0", "food_1", "food_2", "food_3"}
	vecs := [][]float32{{0, 1}, {0, 1}, {1, 0}, {0, 1}}
	if err := idx.Add(ctx, ids, vecs); err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 10; run++ {
		results, _ := idx.Search(ctx, []float32{0, 1}, 4)
		want := []string{"food_0", "food_1", "food_3", "food_2"}
		for i, r := range results {
			if r.ID != want[i] {
				t.Fatalf("run %d position %d = %s, want %s", run, i, r.ID, want[i])
			}
		}
	}
}

func TestMemoryIndex_zeroVectors(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"z"}, [][]float32{{0, 0}})
	results, err := idx.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Distance != 1 {
		t.Errorf("zero vector distance = %v, want 1", results[0].Distance)
	}
}

func TestMemoryIndex_errorsAndEdges(t *testing.T) {
	if _, err := NewMemoryIndex(0); err == nil {
		t.Error("expected error for zero dimensions")
	}
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	if err := idx.Add(ctx, []string{"a"}, nil); err == nil {
		t.Error("expected length mismatch error")
	}
	if err := idx.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {1, 0, 0}}); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if idx.Size() != 0 {
		t.Errorf("failed add should not leave partial entries, size=%d", idx.Size())
	}
	if _, err := idx.Search(ctx, []float32{1}, 1); err == nil {
		t.Error("expected query dimension error")
	}
	results, err := idx.Search(ctx, []float32{1, 0}, 3)
	if err != nil || len(results) != 0 {
		t.Errorf("empty index search = %v, %v", results, err)
	}
	_ = idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}})
	if results, _ := idx.Search(ctx, []float32{1, 0}, 0); len(results) != 0 {
		t.Error("k=0 should return nothing")
	}
	if results, _ := idx.Search(ctx, []float32{1, 0}, 5); len(results) != 1 {
		t.Errorf("k larger than size returned %d", len(results))
	}
	idx.Reset()
	if idx.Size() != 0 {
		t.Error("Reset should empty the index")
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 3}, 1},
		{"opposite", []float32{1, 1}, []float32{-2, -2}, 2},
		{"zero", []float32{0, 0}, []float32{1, 0}, 1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineDistance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}
