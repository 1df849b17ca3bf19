// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pdiddy/careerlink/pkg/types"
)

// emulatorHostEnv is read by the Firestore client to route requests to a
// local emulator without credentials.
const emulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

// FirestoreStore keeps documents in top-level Firestore collections.
type FirestoreStore struct {
	client *firestore.Client
	cfg    types.FirestoreConfig
	log    *slog.Logger
}

// NewFirestoreStore connects to cfg.ProjectID and cfg.DatabaseID.
func NewFirestoreStore(ctx context.Context, cfg types.FirestoreConfig, log *slog.Logger) (*FirestoreStore, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project_id is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.EmulatorHost != "" {
		if err := os.Setenv(emulatorHostEnv, cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("firestore: setting emulator host: %w", err)
		}
	}

	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("firestore: creating client: %w", err)
	}
	log.Debug("connected to firestore", "project", cfg.ProjectID, "database", cfg.DatabaseID,
		"emulator", cfg.EmulatorHost != "")
	return &FirestoreStore{client: client, cfg: cfg, log: log}, nil
}

// clientOptions picks one credential source: bearer token, then API key,
// then a credentials file. With none set the client falls back to
// Application Default Credentials, or no authentication on the emulator.
func clientOptions(cfg types.FirestoreConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.UserAgent != "" {
		opts = append(opts, option.WithUserAgent(cfg.UserAgent))
	}
	switch {
	case cfg.EmulatorHost != "":
	case cfg.BearerToken != "":
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.BearerToken,
			TokenType:   "Bearer",
		})))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return opts
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// List returns collection in document ID order.
func (s *FirestoreStore) List(ctx context.Context, collection string) ([]types.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	iter := s.client.Collection(collection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var docs []types.Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", collection, err)
		}
		docs = append(docs, snapshotDocument(collection, snap))
	}
	s.log.Debug("listed collection", "collection", collection, "documents", len(docs))
	return docs, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (types.Document, error) {
	if err := validateRef(collection, id); err != nil {
		return types.Document{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return types.Document{}, fmt.Errorf("looking up %s/%s: %w", collection, id, mapStatus(err))
	}
	return snapshotDocument(collection, snap), nil
}

// Put replaces the whole document or creates it. CreatedAt is managed by
// Firestore.
func (s *FirestoreStore) Put(ctx context.Context, doc types.Document) error {
	if err := validateRef(doc.Collection, doc.ID); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	fields := doc.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	if _, err := s.client.Collection(doc.Collection).Doc(doc.ID).Set(ctx, fields); err != nil {
		return fmt.Errorf("upserting %s/%s: %w", doc.Collection, doc.ID, mapStatus(err))
	}
	return nil
}

// Delete requires the document to exist so that a missing document is
// reported as ErrNotFound instead of succeeding silently.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, mapStatus(err))
	}
	return nil
}

// mapStatus turns the NotFound gRPC status into ErrNotFound.
func mapStatus(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func snapshotDocument(collection string, snap *firestore.DocumentSnapshot) types.Document {
	return types.Document{
		ID:         snap.Ref.ID,
		Collection: collection,
		Fields:     normalizeFields(snap.Data()),
		CreatedAt:  snap.CreateTime,
	}
}
