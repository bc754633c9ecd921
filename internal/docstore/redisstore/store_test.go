package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynagrid/internal/docstore"
)

func TestConnectRejectsBadURI(t *testing.T) {
	_, _, err := Connect(context.Background(), "http://localhost:6379")
	assert.Error(t, err)
}

func TestPutGetList(t *testing.T) {
	uri := os.Getenv("DYNAGRID_REDIS_URI")
	if uri == "" {
		t.Skip("DYNAGRID_REDIS_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, closeFn, err := Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn(context.Background()) })
	prefix := fmt.Sprintf("dynagrid:test:%d:", time.Now().UnixNano())
	s := New(conn.rdb, prefix)
	t.Cleanup(func() {
		keys, _ := s.List(context.Background())
		for _, k := range keys {
			conn.rdb.Del(context.Background(), prefix+k)
		}
	})

	_, err = s.Get(ctx, "grids/two-bus")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	require.NoError(t, s.Put(ctx, "grids/two-bus", []byte("one")))
	require.NoError(t, s.Put(ctx, "grids/two-bus", []byte("two")))
	require.NoError(t, s.Put(ctx, "a", []byte("first")))

	got, err := s.Get(ctx, "grids/two-bus")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "grids/two-bus"}, keys)
}

func TestNewDefaultsPrefix(t *testing.T) {
	assert.Equal(t, DefaultPrefix, New(nil, "").prefix)
}
