// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/careerlink/pkg/types"
)

// testStoreContract exercises the behaviour every backend must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	docs := []types.Document{
		{ID: "nul-1", Collection: "institutions", Fields: map[string]any{"name": "NUL", "address": "Roma"}},
		{ID: "nul-2", Collection: "institutions", Fields: map[string]any{"name": "nul ", "address": ""}},
		{ID: "u-1", Collection: "users", Fields: map[string]any{"email": "thabo@example.ls"}},
	}
	for _, d := range docs {
		require.NoError(t, s.Put(ctx, d))
	}

	t.Run("list scopes by collection", func(t *testing.T) {
		got, err := s.List(ctx, "institutions")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "nul-1", got[0].ID)
		assert.Equal(t, "nul-2", got[1].ID)
		assert.Equal(t, "institutions", got[0].Collection)
		assert.Equal(t, "Roma", got[0].String("address"))
		assert.False(t, got[0].CreatedAt.IsZero())
	})

	t.Run("list of unknown collection is empty", func(t *testing.T) {
		got, err := s.List(ctx, "jobs")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("get", func(t *testing.T) {
		got, err := s.Get(ctx, "users", "u-1")
		require.NoError(t, err)
		assert.Equal(t, "thabo@example.ls", got.String("email"))

		_, err = s.Get(ctx, "users", "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put replaces and keeps creation time", func(t *testing.T) {
		before, err := s.Get(ctx, "users", "u-1")
		require.NoError(t, err)

		require.NoError(t, s.Put(ctx, types.Document{
			ID: "u-1", Collection: "users", Fields: map[string]any{"email": "new@example.ls"},
		}))
		after, err := s.Get(ctx, "users", "u-1")
		require.NoError(t, err)
		assert.Equal(t, "new@example.ls", after.String("email"))
		assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	})

	t.Run("put requires a reference", func(t *testing.T) {
		assert.Error(t, s.Put(ctx, types.Document{Collection: "users"}))
		assert.Error(t, s.Put(ctx, types.Document{ID: "x"}))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "institutions", "nul-2"))
		assert.ErrorIs(t, s.Delete(ctx, "institutions", "nul-2"), ErrNotFound)

		got, err := s.List(ctx, "institutions")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "nul-1", got[0].ID)
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	fields := map[string]any{"name": "Botho"}
	require.NoError(t, s.Put(ctx, types.Document{ID: "1", Collection: "institutions", Fields: fields}))

	fields["name"] = "changed"
	got, err := s.Get(ctx, "institutions", "1")
	require.NoError(t, err)
	assert.Equal(t, "Botho", got.String("name"))
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().List(ctx, "users")
	assert.ErrorIs(t, err, context.Canceled)
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(types.SQLiteConfig{Path: filepath.Join(t.TempDir(), "data", "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	testStoreContract(t, newSQLiteStore(t))
}

func TestSQLiteStoreCreatesSchema(t *testing.T) {
	s := newSQLiteStore(t)
	var count int
	err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'documents'`,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteStoreExplicitCreatedAt(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	created := time.Date(2023, 2, 1, 8, 30, 0, 0, time.UTC)

	require.NoError(t, s.Put(ctx, types.Document{
		ID: "j-1", Collection: "jobs", Fields: map[string]any{"title": "Teller"}, CreatedAt: created,
	}))
	got, err := s.Get(ctx, "jobs", "j-1")
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(types.SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, types.Document{ID: "c-1", Collection: "companies", Fields: map[string]any{"name": "Econet"}}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(types.SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()
	got, err := s.List(ctx, "companies")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Econet", got[0].String("name"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, types.StoreConfig{Backend: types.BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, types.StoreConfig{
		Backend: types.BackendSQLite,
		SQLite:  types.SQLiteConfig{Path: filepath.Join(t.TempDir(), "open.db")},
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, types.StoreConfig{Backend: types.BackendFirestore}, nil)
	assert.ErrorContains(t, err, "project_id")

	_, err = Open(ctx, types.StoreConfig{Backend: "mongo"}, nil)
	assert.ErrorContains(t, err, "unsupported store backend")
}
