// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/pdiddy/careerlink/pkg/types"
)

// MemoryStore keeps documents in process memory in insertion order. It is
// used for tests and dry runs against fixture data.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memCollection
	now         func() time.Time
}

type memCollection struct {
	order []string
	docs  map[string]types.Document
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: map[string]*memCollection{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: map[string]types.Document{}}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	docs := make([]types.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, copyDoc(c.docs[id]))
	}
	return docs, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (types.Document, error) {
	if err := ctx.Err(); err != nil {
		return types.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.collection(collection).docs[id]
	if !ok {
		return types.Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return copyDoc(d), nil
}

func (s *MemoryStore) Put(ctx context.Context, doc types.Document) error {
	if err := validateRef(doc.Collection, doc.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(doc.Collection)
	if prev, ok := c.docs[doc.ID]; ok {
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = prev.CreatedAt
		}
	} else {
		c.order = append(c.order, doc.ID)
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = s.now()
		}
	}
	c.docs[doc.ID] = copyDoc(doc)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func copyDoc(d types.Document) types.Document {
	d.Fields = maps.Clone(d.Fields)
	return d
}
