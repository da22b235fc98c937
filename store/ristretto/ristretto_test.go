package ristretto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bpcache/store"
	"github.com/unkn0wn-root/bpcache/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64, Metrics: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestKeysPrunesDeletedEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Set(ctx, "a", []byte("1"))
	require.NoError(t, err)
	_, err = s.Set(ctx, "b", []byte("2"))
	require.NoError(t, err)

	// bypass the store so the index still lists "a"
	s.c.Del("a")

	keys, err := s.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
	assert.Len(t, s.idx, 1)
}

func TestMetricsExposed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _ = s.Set(ctx, "k", []byte("v"))
	_, _, _ = s.Get(ctx, "k")
	require.NotNil(t, s.Metrics())
	assert.GreaterOrEqual(t, s.Metrics().Hits(), uint64(1))
}
