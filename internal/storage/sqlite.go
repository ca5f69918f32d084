package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/foodrec/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Use ":memory:" for a process-scoped database. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	inMemory := dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
	if !inMemory {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database, so keep exactly one.
	db.SetMaxOpenConns(1)

	if !inMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		metadata TEXT,
		dimensions INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS entries (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		document TEXT NOT NULL,
		metadata TEXT NOT NULL,
		embedding BLOB,
		PRIMARY KEY (collection, id),
		FOREIGN KEY (collection) REFERENCES collections(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_entries_position ON entries(collection, position);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateCollection inserts a collection. Returns ErrCollectionExists if the name is taken.
func (s *SQLiteStorage) CreateCollection(ctx context.Context, coll *models.Collection) error {
	metadataJSON, err := json.Marshal(coll.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if coll.CreatedAt.IsZero() {
		coll.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections (name, metadata, dimensions, created_at) VALUES (?, ?, ?, ?)`,
		coll.Name, string(metadataJSON), coll.Dimensions, coll.CreatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", ErrCollectionExists, coll.Name)
	}
	return err
}

// GetCollection returns a collection by name.
func (s *SQLiteStorage) GetCollection(ctx context.Context, name string) (*models.Collection, error) {
	var coll models.Collection
	var metadataJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, metadata, dimensions, created_at FROM collections WHERE name = ?`, name,
	).Scan(&coll.Name, &metadataJSON, &coll.Dimensions, &coll.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalMetadata(metadataJSON, &coll.Metadata); err != nil {
		return nil, err
	}
	return &coll, nil
}

// DeleteCollection removes a collection and its entries. Reports whether it existed.
func (s *SQLiteStorage) DeleteCollection(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE collection = ?`, name); err != nil {
		return false, err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListCollections returns all collections ordered by name.
func (s *SQLiteStorage) ListCollections(ctx context.Context) ([]*models.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, metadata, dimensions, created_at FROM collections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colls []*models.Collection
	for rows.Next() {
		var coll models.Collection
		var metadataJSON string
		if err := rows.Scan(&coll.Name, &metadataJSON, &coll.Dimensions, &coll.CreatedAt); err != nil {
			return nil, err
		}
		_ = unmarshalMetadata(metadataJSON, &coll.Metadata)
		colls = append(colls, &coll)
	}
	return colls, rows.Err()
}

// GetEntries returns the entries with the given ids, keyed by id. Missing ids are absent from the map.
func (s *SQLiteStorage) GetEntries(ctx context.Context, collection string, ids []string) (map[string]*models.IndexedEntry, error) {
	out := make(map[string]*models.IndexedEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, collection)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, document, metadata, embedding FROM entries
		 WHERE collection = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out[entry.ID] = entry
	}
	return out, rows.Err()
}

// ListEntries returns entries in insertion position order.
func (s *SQLiteStorage) ListEntries(ctx context.Context, collection string, offset, limit int) ([]*models.IndexedEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, document, metadata, embedding FROM entries
		 WHERE collection = ? ORDER BY position LIMIT ? OFFSET ?`,
		collection, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.IndexedEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (*models.IndexedEntry, error) {
	var entry models.IndexedEntry
	var metadataJSON string
	var embedding []byte
	if err := rows.Scan(&entry.ID, &entry.Position, &entry.Document, &metadataJSON, &embedding); err != nil {
		return nil, err
	}
	if err := unmarshalMetadata(metadataJSON, &entry.Metadata); err != nil {
		return nil, err
	}
	entry.Embedding = bytesToFloat32Slice(embedding)
	return &entry, nil
}

// BatchCreateEntries inserts entries in a transaction.
func (s *SQLiteStorage) BatchCreateEntries(ctx context.Context, collection string, entries []*models.IndexedEntry, beforeCommit func() error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections WHERE name = ?`, collection).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (collection, id, position, document, metadata, embedding)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		metadataJSON, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, collection, entry.ID, entry.Position, entry.Document,
			string(metadataJSON), float32SliceToBytes(entry.Embedding)); err != nil {
			return err
		}
	}
	if beforeCommit != nil {
		if err := beforeCommit(); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountEntries returns the number of entries in a collection.
func (s *SQLiteStorage) CountEntries(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE collection = ?`, collection).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func unmarshalMetadata(s string, dst *map[string]string) error {
	if s == "" || s == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return nil
}

func float32SliceToBytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	out := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	if len(b) < 4 {
		return nil
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}
