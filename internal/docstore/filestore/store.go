// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package filestore keeps documents as .hcl files below a root directory.
// The key "grids/two-bus" maps to "<root>/grids/two-bus.hcl".
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/dynagrid/internal/docstore"
	"github.com/vk/dynagrid/internal/fsutil"
)

// Ext is the extension of stored documents.
const Ext = ".hcl"

// Store is a directory-backed docstore.Store. An empty root resolves keys
// as plain paths relative to the working directory, which also admits
// absolute keys.
type Store struct {
	root string
}

// New returns a store rooted at dir. The directory is created on the first
// Put.
func New(dir string) *Store {
	return &Store{root: dir}
}

// KeyOf returns the key under which an unrooted store finds the file at
// path.
func KeyOf(path string) string {
	return filepath.ToSlash(strings.TrimSuffix(path, Ext))
}

func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("filestore: empty key")
	}
	p := filepath.FromSlash(key)
	if s.root != "" && !filepath.IsLocal(p) {
		return "", fmt.Errorf("filestore: key %q escapes %s", key, s.root)
	}
	return filepath.Join(s.root, p) + Ext, nil
}

// Put writes data through a temporary file so readers never see a partial
// document.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".dynagrid-*")
	if err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("filestore: %s: %w", path, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	return data, nil
}

// List returns the keys of every .hcl file below the root. A missing root
// directory holds no documents.
func (s *Store) List(ctx context.Context) ([]string, error) {
	base := s.root
	if base == "" {
		base = "."
	}
	files, err := fsutil.FindFilesByExtension(base, Ext)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	keys := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(base, f)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		keys = append(keys, KeyOf(rel))
	}
	slices.Sort(keys)
	return keys, nil
}
