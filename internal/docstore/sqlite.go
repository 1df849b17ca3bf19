// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/careerlink/pkg/types"
)

// SQLiteStore keeps every collection in one SQLite table, with the document
// body stored as JSON.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates the database at cfg.Path and creates the
// schema if it does not exist.
func NewSQLiteStore(cfg types.SQLiteConfig) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, path: cfg.Path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			fields TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// List returns the documents of collection in insertion order.
func (s *SQLiteStore) List(ctx context.Context, collection string) ([]types.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields, created_at FROM documents WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var id, fieldsJSON, created string
		if err := rows.Scan(&id, &fieldsJSON, &created); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		d, err := decodeRow(collection, id, fieldsJSON, created)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (types.Document, error) {
	var fieldsJSON, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields, created_at FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&fieldsJSON, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return types.Document{}, fmt.Errorf("looking up %s/%s: %w", collection, id, err)
	}
	return decodeRow(collection, id, fieldsJSON, created)
}

// Put upserts doc. The original created_at survives replacement unless doc
// carries its own.
func (s *SQLiteStore) Put(ctx context.Context, doc types.Document) error {
	if err := validateRef(doc.Collection, doc.ID); err != nil {
		return err
	}
	fields := doc.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", doc.Collection, doc.ID, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	created := now
	if !doc.CreatedAt.IsZero() {
		created = doc.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET
			fields=excluded.fields,
			updated_at=excluded.updated_at,
			created_at=CASE WHEN ? THEN excluded.created_at ELSE documents.created_at END`,
		doc.Collection, doc.ID, string(fieldsJSON), created, now, !doc.CreatedAt.IsZero(),
	)
	if err != nil {
		return fmt.Errorf("upserting %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func decodeRow(collection, id, fieldsJSON, created string) (types.Document, error) {
	d := types.Document{ID: id, Collection: collection}
	if err := json.Unmarshal([]byte(fieldsJSON), &d.Fields); err != nil {
		return d, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		d.CreatedAt = t
	}
	return d, nil
}
