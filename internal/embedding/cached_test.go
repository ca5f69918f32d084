package embedding

import (
	"context"
	"testing"
)

func TestCachedEmbedder_onlyEmbedsMisses(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(16)}
	e := NewCachedEmbedder(inner, NewEmbeddingCache(10))

	first, err := e.EmbedBatch(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if inner.texts != 2 {
		t.Fatalf("inner texts = %d, want 2", inner.texts)
	}

	second, err := e.EmbedBatch(ctx, []string{"b", "c", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if inner.texts != 3 {
		t.Errorf("inner texts = %d, want 3 (only c is new)", inner.texts)
	}
	for i := range first[0] {
		if second[2][i] != first[0][i] || second[0][i] != first[1][i] {
			t.Fatal("cached vectors returned out of order")
		}
	}

	if _, err := e.Embed(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if inner.batches != 2 {
		t.Errorf("single cached embed should not reach inner, batches = %d", inner.batches)
	}
}

func TestCachedEmbedder_allHits(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(4)}
	e := NewCachedEmbedder(inner, NewEmbeddingCache(10))
	if _, err := e.Embed(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.EmbedBatch(ctx, []string{"x", "x"}); err != nil {
		t.Fatal(err)
	}
	if inner.batches != 0 {
		t.Errorf("batches = %d, want 0", inner.batches)
	}
	if e.Dimensions() != 4 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
	if err := e.Close(); err != nil || !inner.closed {
		t.Errorf("Close: err=%v closed=%v", err, inner.closed)
	}
}
