// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docstore provides collection-based document storage behind a
// single Store interface, with SQLite, SurrealDB, Firestore and in-memory
// backends.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdiddy/careerlink/pkg/types"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store reads and writes documents grouped into named collections.
type Store interface {
	// List returns every document in collection. Order is backend-defined
	// but stable between calls on an unchanged collection.
	List(ctx context.Context, collection string) ([]types.Document, error)

	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (types.Document, error)

	// Put creates or replaces a document.
	Put(ctx context.Context, doc types.Document) error

	// Delete removes a document. Deleting an absent document returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	// Close releases backend resources.
	Close() error
}

// Open returns the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg types.StoreConfig, log *slog.Logger) (Store, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("backend", string(cfg.Backend))

	switch cfg.Backend {
	case types.BackendSQLite, "":
		return NewSQLiteStore(cfg.SQLite)
	case types.BackendSurrealDB:
		return NewSurrealStore(ctx, cfg.SurrealDB, log)
	case types.BackendFirestore:
		return NewFirestoreStore(ctx, cfg.Firestore, log)
	case types.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q: use sqlite, surrealdb, firestore or memory", cfg.Backend)
	}
}

func validateRef(collection, id string) error {
	if collection == "" {
		return errors.New("collection is required")
	}
	if id == "" {
		return errors.New("document id is required")
	}
	return nil
}
