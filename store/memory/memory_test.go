package memory

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

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClocked() (*Memory, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(WithClock(clk.Now)), clk
}

func TestGetSetAndMiss(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Set(ctx, "k", []byte("v"))
	require.NoError(t, err)
	assert.True(t, ok)

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	in := []byte("abc")
	_, _ = s.Set(ctx, "k", in)
	in[0] = 'X'

	v, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
	v[1] = 'Y'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestTTLSemantics(t *testing.T) {
	ctx := context.Background()
	s, clk := newClocked()

	ttl, err := s.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, store.TTLMissing, ttl)

	_, _ = s.Set(ctx, "forever", []byte("x"))
	ttl, _ = s.TTL(ctx, "forever")
	assert.Equal(t, store.TTLNoExpiry, ttl)

	_, err = s.SetEx(ctx, "short", 10, []byte("x"))
	require.NoError(t, err)
	ttl, _ = s.TTL(ctx, "short")
	assert.Equal(t, int64(10), ttl)

	clk.Advance(4 * time.Second)
	ttl, _ = s.TTL(ctx, "short")
	assert.Equal(t, int64(6), ttl)

	clk.Advance(6 * time.Second)
	_, ok, _ := s.Get(ctx, "short")
	assert.False(t, ok, "entry must expire once its TTL elapses")
	ttl, _ = s.TTL(ctx, "short")
	assert.Equal(t, store.TTLMissing, ttl)
}

func TestSetDropsPreviousTTL(t *testing.T) {
	ctx := context.Background()
	s, _ := newClocked()
	_, _ = s.SetEx(ctx, "k", 5, []byte("a"))
	_, _ = s.Set(ctx, "k", []byte("b"))
	ttl, _ := s.TTL(ctx, "k")
	assert.Equal(t, store.TTLNoExpiry, ttl)
}

func TestSetExRejectsNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, ttl := range []int64{0, -3} {
		ok, err := s.SetEx(ctx, "k", ttl, []byte("v"))
		assert.ErrorIs(t, err, store.ErrInvalidExpire)
		assert.False(t, ok)
	}
	n, _ := s.Exists(ctx, "k")
	assert.Zero(t, n)
}

func TestKeysExistsDel(t *testing.T) {
	ctx := context.Background()
	s, clk := newClocked()
	_, _ = s.Set(ctx, "BpCache:a", []byte("1"))
	_, _ = s.Set(ctx, "BpCache:b", []byte("2"))
	_, _ = s.SetEx(ctx, "BpCache:gone", 1, []byte("3"))
	_, _ = s.Set(ctx, "Other:a", []byte("4"))
	clk.Advance(2 * time.Second)

	keys, err := s.Keys(ctx, "BpCache:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"BpCache:a", "BpCache:b"}, keys)

	keys, _ = s.Keys(ctx, "BpCache:?")
	assert.Len(t, keys, 2)

	n, _ := s.Exists(ctx, "BpCache:a", "BpCache:a", "Other:a", "missing")
	assert.Equal(t, int64(3), n, "exists counts repeated keys like redis")

	n, _ = s.Del(ctx, "BpCache:a", "BpCache:b", "missing")
	assert.Equal(t, int64(2), n)
	n, _ = s.Del(ctx, "BpCache:a")
	assert.Zero(t, n)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	s, clk := newClocked()
	_, _ = s.SetEx(ctx, "a", 1, []byte("x"))
	_, _ = s.SetEx(ctx, "b", 100, []byte("x"))
	_, _ = s.Set(ctx, "c", []byte("x"))
	clk.Advance(5 * time.Second)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 2, s.Len())
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() })
}
