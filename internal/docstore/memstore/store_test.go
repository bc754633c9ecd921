package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynagrid/internal/docstore"
)

func TestPutAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Missing keys report ErrNotFound
	_, err := s.Get(ctx, "a")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	buf := []byte("base_power = 100")
	require.NoError(t, s.Put(ctx, "a", buf))
	buf[0] = 'X'

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "base_power = 100", string(got), "Put must copy its input")

	got[0] = 'Y'
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "base_power = 100", string(again), "Get must return a copy")
}

func TestPutRejectsEmptyKey(t *testing.T) {
	assert.Error(t, New().Put(context.Background(), "", nil))
}

func TestListIsSorted(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, k := range []string{"c", "a", "b/x"} {
		require.NoError(t, s.Put(ctx, k, nil))
	}

	keys, err := s.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b/x", "c"}, keys)
}

// TestStore_ConcurrentAccess verifies that concurrent writers and readers
// neither race nor lose writes.
func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	numGoroutines := 100
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("doc-%d", i)
			if err := s.Put(ctx, key, []byte(key)); err != nil {
				t.Errorf("put %s: %v", key, err)
			}
		}(i)
	}
	wg.Wait()

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("doc-%d", i)
			got, err := s.Get(ctx, key)
			assert.NoError(t, err)
			assert.Equal(t, key, string(got), "mismatched payload for %s", key)
		}(i)
	}
	wg.Wait()

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, numGoroutines)
}
