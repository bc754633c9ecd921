// Package memstore provides an ephemeral, thread-safe, in-memory
// implementation of the docstore.Store interface.
//
// Payloads are copied on Put and Get, so callers may reuse their buffers.
// sync.Map fits the access pattern: keys are written once and then read
// concurrently by docstore.OpenAll.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/dynagrid/internal/docstore"
)

// Store is an in-memory docstore.Store.
type Store struct {
	docs sync.Map // Key: document key, Value: []byte
}

// New creates a new, empty in-memory document store.
func New() docstore.Store {
	return &Store{}
}

// Put stores a copy of data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("memstore: empty key")
	}
	s.docs.Store(key, bytes.Clone(data))
	return nil
}

// Get returns a copy of the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.docs.Load(key)
	if !ok {
		return nil, fmt.Errorf("memstore: %q: %w", key, docstore.ErrNotFound)
	}
	return bytes.Clone(v.([]byte)), nil
}

// List returns the stored keys in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var keys []string
	s.docs.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys, nil
}
