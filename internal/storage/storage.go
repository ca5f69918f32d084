// Package storage defines persistence for similarity collections and their entries.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/foodrec/internal/models"
)

var (
	// ErrCollectionNotFound is returned when a named collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCollectionExists is returned when creating a collection whose name is taken.
	ErrCollectionExists = errors.New("collection already exists")
)

// Storage defines collection and entry persistence operations.
type Storage interface {
	// Collection operations
	CreateCollection(ctx context.Context, coll *models.Collection) error
	GetCollection(ctx context.Context, name string) (*models.Collection, error)
	DeleteCollection(ctx context.Context, name string) (bool, error)
	ListCollections(ctx context.Context) ([]*models.Collection, error)

	// Entry operations
	GetEntries(ctx context.Context, collection string, ids []string) (map[string]*models.IndexedEntry, error)
	ListEntries(ctx context.Context, collection string, offset, limit int) ([]*models.IndexedEntry, error)

	// BatchCreateEntries inserts entries in one transaction. beforeCommit, when
	// non-nil, runs inside the transaction; if it fails nothing is written.
	BatchCreateEntries(ctx context.Context, collection string, entries []*models.IndexedEntry, beforeCommit func() error) error

	// Stats
	CountEntries(ctx context.Context, collection string) (int64, error)

	Close() error
}
