package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/foodrec/internal/models"
	"github.com/hyperjump/foodrec/internal/storage"
	"github.com/hyperjump/foodrec/internal/vector"
)

// rebuildPageSize is how many entries are read per page when reloading vectors.
const rebuildPageSize = 500

// MemoryBackend keeps documents and metadata in a Storage and vectors in an
// in-process MemoryIndex per collection. A populate either lands in both or in neither.
type MemoryBackend struct {
	store     storage.Storage
	ownsStore bool
	mu        sync.Mutex
	indexes   map[string]*vector.MemoryIndex
}

// NewMemoryBackend returns a backend over store. The caller keeps ownership of store.
func NewMemoryBackend(store storage.Storage) *MemoryBackend {
	return &MemoryBackend{store: store, indexes: make(map[string]*vector.MemoryIndex)}
}

// NewSQLiteMemoryBackend opens a SQLite store at dbPath (":memory:" for process scope)
// and returns a backend that closes it on Close.
func NewSQLiteMemoryBackend(dbPath string) (*MemoryBackend, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	b := NewMemoryBackend(store)
	b.ownsStore = true
	return b, nil
}

// Name identifies the backend in logs and health reports.
func (b *MemoryBackend) Name() string {
	return "memory"
}

// CreateCollection stores the collection and allocates its vector index.
func (b *MemoryBackend) CreateCollection(ctx context.Context, coll *models.Collection) error {
	idx, err := vector.NewMemoryIndex(coll.Dimensions)
	if err != nil {
		return err
	}
	if err := b.store.CreateCollection(ctx, coll); err != nil {
		return err
	}
	b.mu.Lock()
	b.indexes[coll.Name] = idx
	b.mu.Unlock()
	return nil
}

// DeleteCollection drops the collection's rows and vectors.
func (b *MemoryBackend) DeleteCollection(ctx context.Context, name string) (bool, error) {
	removed, err := b.store.DeleteCollection(ctx, name)
	if err != nil {
		return false, err
	}
	b.mu.Lock()
	if idx, ok := b.indexes[name]; ok {
		_ = idx.Close()
		delete(b.indexes, name)
		removed = true
	}
	b.mu.Unlock()
	return removed, nil
}

// indexFor returns the vector index for name, rebuilding it from storage when the
// collection exists there but not in this process (a reopened database file).
func (b *MemoryBackend) indexFor(ctx context.Context, name string) (*vector.MemoryIndex, error) {
	b.mu.Lock()
	idx, ok := b.indexes[name]
	b.mu.Unlock()
	if ok {
		return idx, nil
	}
	coll, err := b.store.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	idx, err = vector.NewMemoryIndex(coll.Dimensions)
	if err != nil {
		return nil, err
	}
	if err := b.reload(ctx, name, idx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.indexes[name] = idx
	b.mu.Unlock()
	return idx, nil
}

func (b *MemoryBackend) reload(ctx context.Context, name string, idx *vector.MemoryIndex) error {
	idx.Reset()
	for offset := 0; ; offset += rebuildPageSize {
		page, err := b.store.ListEntries(ctx, name, offset, rebuildPageSize)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(page))
		vecs := make([][]float32, 0, len(page))
		for _, e := range page {
			if len(e.Embedding) != idx.Dimensions() {
				continue
			}
			ids = append(ids, e.ID)
			vecs = append(vecs, e.Embedding)
		}
		if err := idx.Add(ctx, ids, vecs); err != nil {
			return err
		}
		if len(page) < rebuildPageSize {
			return nil
		}
	}
}

// Upsert writes entries to storage and vectors to the index in one transaction.
func (b *MemoryBackend) Upsert(ctx context.Context, collection string, entries []*models.IndexedEntry) error {
	idx, err := b.indexFor(ctx, collection)
	if err != nil {
		return err
	}
	ids := make([]string, len(entries))
	vecs := make([][]float32, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		vecs[i] = e.Embedding
	}
	added := false
	err = b.store.BatchCreateEntries(ctx, collection, entries, func() error {
		if err := idx.Add(ctx, ids, vecs); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil && added {
		// The commit failed after the vectors went in; bring the index back in line with storage.
		if rerr := b.reload(ctx, collection, idx); rerr != nil {
			return fmt.Errorf("%v (and reloading vectors failed: %v)", err, rerr)
		}
	}
	return err
}

// Query searches the vector index and joins the hits with their stored documents.
func (b *MemoryBackend) Query(ctx context.Context, collection string, vec []float32, k int) ([]*models.Hit, error) {
	idx, err := b.indexFor(ctx, collection)
	if err != nil {
		return nil, err
	}
	results, err := idx.Search(ctx, vec, k)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []*models.Hit{}, nil
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	stored, err := b.store.GetEntries(ctx, collection, ids)
	if err != nil {
		return nil, err
	}
	hits := make([]*models.Hit, 0, len(results))
	for _, r := range results {
		e, ok := stored[r.ID]
		if !ok {
			continue
		}
		hits = append(hits, &models.Hit{
			ID:       e.ID,
			Document: e.Document,
			Metadata: e.Metadata,
			Distance: r.Distance,
		})
	}
	return hits, nil
}

// Count returns the number of stored entries.
func (b *MemoryBackend) Count(ctx context.Context, collection string) (int, error) {
	if _, err := b.store.GetCollection(ctx, collection); err != nil {
		return 0, err
	}
	n, err := b.store.CountEntries(ctx, collection)
	return int(n), err
}

// Sample returns the first stored entry.
func (b *MemoryBackend) Sample(ctx context.Context, collection string) (*models.IndexedEntry, bool, error) {
	if _, err := b.store.GetCollection(ctx, collection); err != nil {
		return nil, false, err
	}
	page, err := b.store.ListEntries(ctx, collection, 0, 1)
	if err != nil || len(page) == 0 {
		return nil, false, err
	}
	return page[0], len(page[0].Embedding) > 0, nil
}

// Close releases the vector indexes and, if this backend opened it, the store.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	for name, idx := range b.indexes {
		_ = idx.Close()
		delete(b.indexes, name)
	}
	b.mu.Unlock()
	if b.ownsStore {
		return b.store.Close()
	}
	return nil
}
