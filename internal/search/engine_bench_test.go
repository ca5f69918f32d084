package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/foodrec/internal/embedding"
	"github.com/hyperjump/foodrec/internal/index"
	"github.com/hyperjump/foodrec/internal/models"
)

func BenchmarkEngine_FilteredSearch(b *testing.B) {
	backend, err := index.NewSQLiteMemoryBackend(":memory:")
	if err != nil {
		b.Fatal(err)
	}
	provider := embedding.NewStaticProvider(embedding.NewHashEmbedder(384))
	ix := index.New(backend, provider)
	defer ix.Close()

	cuisines := []string{"Italian", "Thai", "Japanese", "Mexican"}
	records := make([]*models.FoodRecord, 500)
	for i := range records {
		records[i] = &models.FoodRecord{
			Name:               fmt.Sprintf("Dish %d", i),
			Cuisine:            cuisines[i%len(cuisines)],
			Description:        fmt.Sprintf("dish number %d with vegetables and rice", i),
			CaloriesPerServing: 100 + i%600,
		}
	}
	ctx := context.Background()
	coll, err := ix.CreateCollection(ctx, "bench", nil)
	if err != nil {
		b.Fatal(err)
	}
	if err := ix.Populate(ctx, coll, records); err != nil {
		b.Fatal(err)
	}
	engine := NewEngine(ix, provider, nil)
	q := &models.SearchQuery{Query: "vegetables and rice", Cuisine: "thai", MaxCalories: models.IntPtr(400), Limit: 5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.FilteredSearch(ctx, coll, q)
	}
}
