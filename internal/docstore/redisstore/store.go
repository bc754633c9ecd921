// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package redisstore keeps documents as plain Redis string values under a
// common key prefix.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/vk/dynagrid/internal/docstore"
)

// DefaultPrefix namespaces document keys in a shared database.
const DefaultPrefix = "dynagrid:doc:"

// Store is a docstore.Store over one Redis database.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// New wraps an existing client. An empty prefix selects DefaultPrefix.
func New(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Connect parses a redis:// or rediss:// URI, checks the server is reachable
// and returns a store together with a function that closes the client.
func Connect(ctx context.Context, uri string) (*Store, func(context.Context) error, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("redisstore: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redisstore: ping: %w", err)
	}
	closeFn := func(context.Context) error { return rdb.Close() }
	return New(rdb, ""), closeFn, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("redisstore: empty key")
	}
	if err := s.rdb.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redisstore: %q: %w", key, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: reading %q: %w", key, err)
	}
	return data, nil
}

// List scans the prefix incrementally so large databases are never blocked
// by a single KEYS call.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var keys []string
	it := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for it.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(it.Val(), s.prefix))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("redisstore: listing: %w", err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}
