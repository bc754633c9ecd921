// Package docstore defines where serialized system documents live and how
// they are written to and restored from those places.
//
// # Keys and Payloads
//
// A store maps a key to the HCL text of one document. Keys are
// slash-separated names chosen by the caller; stores never interpret the
// payload. Serialization and validation happen in Save and Open so every
// backend observes the same document semantics.
//
// # Implementations
//
//   - memstore: ephemeral, for tests and single runs
//   - filestore: one .hcl file per key below a directory
//   - mongostore: one MongoDB document per key, upserted by key
//   - redisstore: one Redis string per key under a prefix
//   - objectstore: one object per key in an S3-compatible bucket
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/dynagrid/internal/ctxlog"
	"github.com/vk/dynagrid/internal/serde"
	"github.com/vk/dynagrid/internal/system"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by Get when no document is stored under a key.
var ErrNotFound = errors.New("document not found")

// Store is a keyed collection of serialized documents.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data under key, replacing any previous payload.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the payload stored under key, or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every stored key in ascending order.
	List(ctx context.Context) ([]string, error)
}

// Save serializes doc and stores it under key.
func Save(ctx context.Context, s Store, key string, doc *system.Document) error {
	data, err := serde.Serialize(ctx, doc)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", key, err)
	}
	if err := s.Put(ctx, key, data); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	ctxlog.FromContext(ctx).Debug("Document saved", "key", key, "bytes", len(data))
	return nil
}

// Open loads and deserializes the document stored under key.
func Open(ctx context.Context, s Store, key string) (*system.Document, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	doc, err := serde.Deserialize(ctx, data, key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return doc, nil
}

// OpenAll opens every key with at most workers concurrent deserializations.
// Results keep the order of keys. The first failure cancels the remaining
// work and is returned.
func OpenAll(ctx context.Context, s Store, keys []string, workers int) ([]*system.Document, error) {
	docs := make([]*system.Document, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := Open(ctxlog.With(gctx, "key", key), s, key)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Copy saves docs[i] into dst under keys[i].
func Copy(ctx context.Context, dst Store, keys []string, docs []*system.Document) error {
	if len(keys) != len(docs) {
		return fmt.Errorf("copy: %d keys for %d documents", len(keys), len(docs))
	}
	for i, key := range keys {
		if err := Save(ctx, dst, key, docs[i]); err != nil {
			return err
		}
	}
	return nil
}
