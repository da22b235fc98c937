// Package memory implements store.Store in process memory.
//
// It backs the RESP dev server and tests. Expired entries are dropped lazily on
// access; Sweep removes them eagerly.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/match"

	"github.com/unkn0wn-root/bpcache/store"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Memory struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

var _ store.Store = (*Memory)(nil)

// Option configures a Memory store.
type Option func(*Memory)

// WithClock replaces time.Now. Used by tests to move time forward.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

func New(opts ...Option) *Memory {
	s := &Memory{m: make(map[string]entry), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// lookup returns the live entry for key. Caller holds mu.
func (s *Memory) lookup(key string) (entry, bool) {
	e, ok := s.m[key]
	if !ok {
		return entry{}, false
	}
	if !e.exp.IsZero() && !s.now().Before(e.exp) {
		delete(s.m, key)
		return entry{}, false
	}
	return e, true
}

func (s *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(e.v))
	copy(out, e.v)
	return out, true, nil
}

// TTL rounds to the nearest second the way Redis does.
func (s *Memory) TTL(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		return store.TTLMissing, nil
	}
	if e.exp.IsZero() {
		return store.TTLNoExpiry, nil
	}
	return int64((e.exp.Sub(s.now()) + 500*time.Millisecond) / time.Second), nil
}

func (s *Memory) Exists(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.lookup(k); ok {
			n++
		}
	}
	return n, nil
}

// Keys returns matches in lexical order.
func (s *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for k := range s.m {
		if _, ok := s.lookup(k); !ok {
			continue
		}
		if match.Match(k, pattern) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Memory) Del(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.lookup(k); ok {
			delete(s.m, k)
			n++
		}
	}
	return n, nil
}

func (s *Memory) SetEx(_ context.Context, key string, ttlSeconds int64, value []byte) (bool, error) {
	if ttlSeconds <= 0 {
		return false, store.ErrInvalidExpire
	}
	s.put(key, value, s.now().Add(time.Duration(ttlSeconds)*time.Second))
	return true, nil
}

func (s *Memory) Set(_ context.Context, key string, value []byte) (bool, error) {
	s.put(key, value, time.Time{})
	return true, nil
}

func (s *Memory) put(key string, value []byte, exp time.Time) {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.m[key] = entry{v: v, exp: exp}
	s.mu.Unlock()
}

// Sweep drops every expired entry and returns how many were removed.
func (s *Memory) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.m {
		if _, ok := s.lookup(k); !ok {
			n++
		}
	}
	return n
}

// Len reports the number of stored entries, expired ones included until swept.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
