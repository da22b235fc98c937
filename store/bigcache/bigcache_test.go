package bigcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bpcache/store"
	"github.com/unkn0wn-root/bpcache/store/storetest"
)

func newTestStore(t *testing.T, clock func() time.Time) *Store {
	t.Helper()
	s, err := New(Config{Shards: 8, MaxEntriesInWindow: 64, MaxEntrySize: 64, Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t, nil) })
}

func TestPerEntryExpiry(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	s := newTestStore(t, clock)

	_, err := s.SetEx(ctx, "short", 5, []byte("a"))
	require.NoError(t, err)
	_, err = s.Set(ctx, "long", []byte("b"))
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(6 * time.Second)
	mu.Unlock()

	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "framed expiry must hide the entry")

	keys, err := s.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"long"}, keys)

	n, err := s.Del(ctx, "short", "long")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "expired entries are not counted as removed")
}

func TestForeignBytesReadAsMiss(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	require.NoError(t, s.c.Set("raw", []byte("not framed")))

	_, ok, err := s.Get(ctx, "raw")
	require.NoError(t, err)
	assert.False(t, ok)
}
