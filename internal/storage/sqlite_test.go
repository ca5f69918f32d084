package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hyperjump/foodrec/internal/models"
)

func newMemoryStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func entries(n int) []*models.IndexedEntry {
	out := make([]*models.IndexedEntry, n)
	for i := range out {
		out[i] = &models.IndexedEntry{
			ID:        fmt.Sprintf("food_%d", i),
			Position:  i,
			Document:  fmt.Sprintf("dish %d", i),
			Metadata:  map[string]string{models.MetaFoodName: fmt.Sprintf("Dish %d", i)},
			Embedding: []float32{float32(i), 1},
		}
	}
	return out
}

func TestSQLiteStorage_collectionLifecycle(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	coll := &models.Collection{Name: "foods", Dimensions: 2, Metadata: map[string]string{"description": "test"}}
	if err := store.CreateCollection(ctx, coll); err != nil {
		t.Fatal(err)
	}
	if coll.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if err := store.CreateCollection(ctx, &models.Collection{Name: "foods", Dimensions: 2}); !errors.Is(err, ErrCollectionExists) {
		t.Errorf("duplicate create error = %v", err)
	}

	got, err := store.GetCollection(ctx, "foods")
	if err != nil {
		t.Fatal(err)
	}
	if got.Dimensions != 2 || got.Metadata["description"] != "test" {
		t.Errorf("got %+v", got)
	}

	list, err := store.ListCollections(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListCollections = %v, %v", list, err)
	}

	removed, err := store.DeleteCollection(ctx, "foods")
	if err != nil || !removed {
		t.Fatalf("DeleteCollection = %v, %v", removed, err)
	}
	removed, err = store.DeleteCollection(ctx, "foods")
	if err != nil || removed {
		t.Errorf("second delete = %v, %v", removed, err)
	}
	if _, err := store.GetCollection(ctx, "foods"); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("get after delete error = %v", err)
	}
}

func TestSQLiteStorage_entries(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	if err := store.CreateCollection(ctx, &models.Collection{Name: "foods", Dimensions: 2}); err != nil {
		t.Fatal(err)
	}
	if err := store.BatchCreateEntries(ctx, "foods", entries(3), nil); err != nil {
		t.Fatal(err)
	}
	n, err := store.CountEntries(ctx, "foods")
	if err != nil || n != 3 {
		t.Fatalf("CountEntries = %d, %v", n, err)
	}

	list, err := store.ListEntries(ctx, "foods", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range list {
		if e.Position != i || e.ID != fmt.Sprintf("food_%d", i) {
			t.Errorf("entry %d = %+v", i, e)
		}
	}
	if len(list[2].Embedding) != 2 || list[2].Embedding[0] != 2 {
		t.Errorf("embedding round trip: %v", list[2].Embedding)
	}

	got, err := store.GetEntries(ctx, "foods", []string{"food_1", "food_9"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["food_1"].Metadata[models.MetaFoodName] != "Dish 1" {
		t.Errorf("GetEntries = %+v", got)
	}

	if _, err := store.DeleteCollection(ctx, "foods"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountEntries(ctx, "foods"); n != 0 {
		t.Errorf("entries should be removed with the collection, got %d", n)
	}
}

func TestSQLiteStorage_batchRollsBackOnHookFailure(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	if err := store.CreateCollection(ctx, &models.Collection{Name: "foods", Dimensions: 2}); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("vector add failed")
	err := store.BatchCreateEntries(ctx, "foods", entries(2), func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v", err)
	}
	if n, _ := store.CountEntries(ctx, "foods"); n != 0 {
		t.Errorf("rolled back batch left %d entries", n)
	}
}

func TestSQLiteStorage_batchRejectsDuplicatesAtomically(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	_ = store.CreateCollection(ctx, &models.Collection{Name: "foods", Dimensions: 2})
	batch := entries(2)
	batch[1].ID = batch[0].ID
	if err := store.BatchCreateEntries(ctx, "foods", batch, nil); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if n, _ := store.CountEntries(ctx, "foods"); n != 0 {
		t.Errorf("failed batch left %d entries", n)
	}
}

func TestSQLiteStorage_batchUnknownCollection(t *testing.T) {
	store := newMemoryStore(t)
	err := store.BatchCreateEntries(context.Background(), "nope", entries(1), nil)
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("error = %v", err)
	}
}

func TestSQLiteStorage_fileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := store.CreateCollection(ctx, &models.Collection{Name: "foods", Dimensions: 2}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, err := reopened.GetCollection(ctx, "foods"); err != nil {
		t.Errorf("collection not persisted: %v", err)
	}
}
