// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package mongostore keeps documents in a MongoDB collection, one record
// per key:
//
//	{ "key": "grids/two-bus", "source": "<hcl text>", "updated": ISODate(...) }
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/dynagrid/internal/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the collection used by Connect.
const DefaultCollection = "documents"

type record struct {
	Key     string    `bson:"key"`
	Source  string    `bson:"source"`
	Updated time.Time `bson:"updated"`
}

// Store is a docstore.Store over one MongoDB collection.
type Store struct {
	coll *mongo.Collection
	now  func() time.Time
}

// New wraps an existing collection.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll, now: time.Now}
}

// Connect dials uri and returns a store over database.DefaultCollection
// together with a function that disconnects the client.
func Connect(ctx context.Context, uri, database string) (*Store, func(context.Context) error, error) {
	if database == "" {
		return nil, nil, fmt.Errorf("mongostore: database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongostore: connecting: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	s := New(client.Database(database).Collection(DefaultCollection))
	return s, client.Disconnect, nil
}

// Put upserts the record for key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("mongostore: empty key")
	}
	update := bson.D{
		{Key: "$set", Value: bson.M{
			"source":  string(data),
			"updated": s.now().UTC(),
		}},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, bson.M{"key": key}, update, opts); err != nil {
		return fmt.Errorf("mongostore: upserting %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"key": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("mongostore: %q: %w", key, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: reading %q: %w", key, err)
	}
	return []byte(rec.Source), nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "key", Value: 1}}).
		SetProjection(bson.M{"key": 1, "_id": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: listing: %w", err)
	}
	var recs []record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("mongostore: listing: %w", err)
	}
	keys := make([]string, 0, len(recs))
	for _, r := range recs {
		keys = append(keys, r.Key)
	}
	return keys, nil
}
