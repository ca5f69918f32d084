package index

import (
	"testing"

	"github.com/hyperjump/foodrec/internal/config"
)

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(config.IndexConfig{Backend: "memory", DatabasePath: ":memory:"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if b.Name() != "memory" {
		t.Errorf("name = %q", b.Name())
	}

	q, err := NewBackend(config.IndexConfig{Backend: "qdrant", QdrantHost: "localhost", QdrantPort: 6334}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()
	if q.Name() != "qdrant" {
		t.Errorf("name = %q", q.Name())
	}

	if _, err := NewBackend(config.IndexConfig{Backend: "faiss"}, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}
