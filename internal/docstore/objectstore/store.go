// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package objectstore keeps documents as .hcl objects in an S3-compatible
// bucket through the MinIO client.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vk/dynagrid/internal/docstore"
)

const (
	ext         = ".hcl"
	contentType = "text/plain; charset=utf-8"
)

// Location addresses a bucket and an object prefix on an S3 endpoint.
type Location struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// ParseURI reads a location of the form
//
//	s3://ACCESS:SECRET@host:port/bucket/prefix?secure=false
//
// TLS is enabled unless secure=false is given.
func ParseURI(uri string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("objectstore: %w", err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("objectstore: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("objectstore: missing endpoint in %q", uri)
	}
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("objectstore: missing bucket in %q", uri)
	}
	loc := Location{
		Endpoint: u.Host,
		Bucket:   bucket,
		Prefix:   prefix,
		Secure:   u.Query().Get("secure") != "false",
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		loc.Prefix += "/"
	}
	if u.User != nil {
		loc.AccessKey = u.User.Username()
		loc.SecretKey, _ = u.User.Password()
	}
	return loc, nil
}

// Store is a docstore.Store over one bucket prefix.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New wraps an existing client.
func New(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Connect dials the endpoint of loc and checks that its bucket exists.
func Connect(ctx context.Context, loc Location) (*Store, error) {
	client, err := minio.New(loc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(loc.AccessKey, loc.SecretKey, ""),
		Secure: loc.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: %w", err)
	}
	ok, err := client.BucketExists(ctx, loc.Bucket)
	if err != nil {
		return nil, fmt.Errorf("objectstore: checking bucket %s: %w", loc.Bucket, err)
	}
	if !ok {
		return nil, fmt.Errorf("objectstore: bucket %s does not exist", loc.Bucket)
	}
	return New(client, loc.Bucket, loc.Prefix), nil
}

func (s *Store) object(key string) string {
	return s.prefix + key + ext
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("objectstore: empty key")
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.object(key), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("objectstore: uploading %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.readError(key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.readError(key, err)
	}
	return data, nil
}

func (s *Store) readError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("objectstore: %q: %w", key, docstore.ErrNotFound)
	}
	return fmt.Errorf("objectstore: downloading %q: %w", key, err)
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	opts := minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}
	for info := range s.client.ListObjects(ctx, s.bucket, opts) {
		if info.Err != nil {
			return nil, fmt.Errorf("objectstore: listing: %w", info.Err)
		}
		name := strings.TrimPrefix(info.Key, s.prefix)
		if strings.HasSuffix(name, ext) {
			keys = append(keys, strings.TrimSuffix(name, ext))
		}
	}
	slices.Sort(keys)
	return keys, nil
}
