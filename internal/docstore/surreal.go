// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/pdiddy/careerlink/pkg/types"
)

func init() {
	// WebSocket upgrades fail when ALPN negotiates HTTP/2 on wss:// endpoints.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// SurrealStore maps each collection to a SurrealDB table. Records hold the
// document body under fields and the creation time under created_at.
type SurrealStore struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger logger.Logger
}

// createdLayout has fixed-width fractions so created_at sorts as a string.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// surrealRecord is the stored shape of a document.
type surrealRecord struct {
	ID        models.RecordID `json:"id"`
	Fields    map[string]any  `json:"fields"`
	CreatedAt string          `json:"created_at"`
}

// NewSurrealStore connects, authenticates and selects the namespace and
// database. The websocket reconnects with exponential backoff.
func NewSurrealStore(ctx context.Context, cfg types.SurrealConfig, log *slog.Logger) (*SurrealStore, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())
	codec := surrealcbor.New()

	// gorillaws appends /rpc itself.
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	log.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	auth := surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}
	if cfg.AuthLevel == "database" {
		auth.Namespace = cfg.Namespace
		auth.Database = cfg.Database
	}
	if _, err := db.SignIn(ctx, auth); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	log.Info("SurrealDB connection established", "namespace", cfg.Namespace, "database", cfg.Database)
	return &SurrealStore{conn: conn, db: db, logger: sdkLogger}, nil
}

// Close closes the websocket connection.
func (s *SurrealStore) Close() error {
	return s.conn.Close(context.Background())
}

func (s *SurrealStore) List(ctx context.Context, collection string) ([]types.Document, error) {
	results, err := surrealdb.Query[[]surrealRecord](ctx, s.db,
		`SELECT * FROM type::table($tb) ORDER BY created_at ASC`,
		map[string]any{"tb": collection})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	records := (*results)[0].Result
	docs := make([]types.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, r.document(collection))
	}
	return docs, nil
}

func (s *SurrealStore) Get(ctx context.Context, collection, id string) (types.Document, error) {
	results, err := surrealdb.Query[[]surrealRecord](ctx, s.db,
		`SELECT * FROM type::record($tb, $id)`,
		map[string]any{"tb": collection, "id": id})
	if err != nil {
		return types.Document{}, fmt.Errorf("looking up %s/%s: %w", collection, id, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return types.Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return (*results)[0].Result[0].document(collection), nil
}

// Put upserts doc, keeping the stored created_at unless doc sets one.
func (s *SurrealStore) Put(ctx context.Context, doc types.Document) error {
	if err := validateRef(doc.Collection, doc.ID); err != nil {
		return err
	}
	fields := doc.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	sql := `UPSERT type::record($tb, $id) SET fields = $fields, created_at = created_at ?? $created_at RETURN NONE`
	created := time.Now().UTC().Format(createdLayout)
	if !doc.CreatedAt.IsZero() {
		sql = `UPSERT type::record($tb, $id) SET fields = $fields, created_at = $created_at RETURN NONE`
		created = doc.CreatedAt.UTC().Format(createdLayout)
	}

	_, err := surrealdb.Query[any](ctx, s.db, sql, map[string]any{
		"tb":         doc.Collection,
		"id":         doc.ID,
		"fields":     fields,
		"created_at": created,
	})
	if err != nil {
		return fmt.Errorf("upserting %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

// Delete removes one record. RETURN BEFORE yields the deleted record, so an
// empty result means it did not exist.
func (s *SurrealStore) Delete(ctx context.Context, collection, id string) error {
	results, err := surrealdb.Query[[]surrealRecord](ctx, s.db,
		`DELETE type::record($tb, $id) RETURN BEFORE`,
		map[string]any{"tb": collection, "id": id})
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (r surrealRecord) document(collection string) types.Document {
	d := types.Document{
		ID:         fmt.Sprint(r.ID.ID),
		Collection: collection,
		Fields:     r.Fields,
	}
	if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		d.CreatedAt = t
	}
	return d
}
