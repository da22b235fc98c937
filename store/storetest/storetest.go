// Package storetest holds a conformance suite every store.Store implementation runs.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bpcache/store"
)

// Run exercises the Redis-compatible semantics of the Store returned by newStore.
// newStore is called once per subtest and must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Miss", func(t *testing.T) { testMiss(t, newStore(t)) })
	t.Run("SetGet", func(t *testing.T) { testSetGet(t, newStore(t)) })
	t.Run("SetEx", func(t *testing.T) { testSetEx(t, newStore(t)) })
	t.Run("SetExRejectsNonPositive", func(t *testing.T) { testSetExNonPositive(t, newStore(t)) })
	t.Run("SetClearsTTL", func(t *testing.T) { testSetClearsTTL(t, newStore(t)) })
	t.Run("KeysByPattern", func(t *testing.T) { testKeys(t, newStore(t)) })
	t.Run("DelCounts", func(t *testing.T) { testDel(t, newStore(t)) })
}

func testMiss(t *testing.T, s store.Store) {
	ctx := context.Background()
	v, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	ttl, err := s.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, store.TTLMissing, ttl)

	n, err := s.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testSetGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	payload := []byte{0x00, 0xff, 'v', 0x01}
	ok, err := s.Set(ctx, "k", payload)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, got)

	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, store.TTLNoExpiry, ttl)

	n, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func testSetEx(t *testing.T, s store.Store) {
	ctx := context.Background()
	ok, err := s.SetEx(ctx, "k", 100, []byte("v"))
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ttl, int64(98))
	assert.LessOrEqual(t, ttl, int64(100))
}

func testSetExNonPositive(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, ttl := range []int64{0, -1} {
		ok, err := s.SetEx(ctx, "k", ttl, []byte("v"))
		assert.Error(t, err, "ttl=%d", ttl)
		assert.False(t, ok)
	}
	n, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testSetClearsTTL(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.SetEx(ctx, "k", 50, []byte("a"))
	require.NoError(t, err)
	_, err = s.Set(ctx, "k", []byte("b"))
	require.NoError(t, err)

	ttl, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, store.TTLNoExpiry, ttl)
}

func testKeys(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, k := range []string{"BpCache:a", "BpCache:bb", "Other:a"} {
		_, err := s.Set(ctx, k, []byte(k))
		require.NoError(t, err)
	}

	keys, err := s.Keys(ctx, "BpCache:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BpCache:a", "BpCache:bb"}, keys)

	keys, err = s.Keys(ctx, "BpCache:?")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BpCache:a"}, keys)

	keys, err = s.Keys(ctx, "Nope:*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func testDel(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		_, err := s.Set(ctx, k, []byte("x"))
		require.NoError(t, err)
	}

	n, err := s.Del(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Del(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.Del(ctx, "b", "c", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Exists(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Zero(t, n)
}
