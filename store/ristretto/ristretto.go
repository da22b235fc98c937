// Package ristretto implements store.Store on top of dgraph-io/ristretto.
//
// Ristretto hashes keys and cannot enumerate them, so the store keeps a side
// index of written keys for Keys. Index entries whose value was evicted or
// expired are pruned lazily.
package ristretto

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"
	"github.com/tidwall/match"

	"github.com/unkn0wn-root/bpcache/store"
)

type Store struct {
	c *rc.Cache

	mu  sync.Mutex
	idx map[string]struct{}
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // cost of an entry is len(key)+len(value)
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c, idx: make(map[string]struct{})}, nil
}

func (s *Store) get(key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		s.c.Del(key)
		return nil, false
	}
	return b, true
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := s.get(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) TTL(_ context.Context, key string) (int64, error) {
	d, ok := s.c.GetTTL(key)
	if !ok {
		return store.TTLMissing, nil
	}
	if d == 0 {
		return store.TTLNoExpiry, nil
	}
	return int64((d + 500*time.Millisecond) / time.Second), nil
}

func (s *Store) Exists(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := s.get(k); ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for k := range s.idx {
		if _, ok := s.get(k); !ok {
			delete(s.idx, k)
			continue
		}
		if match.Match(k, pattern) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Del(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.get(k); ok {
			n++
		}
		s.c.Del(k)
		delete(s.idx, k)
	}
	return n, nil
}

func (s *Store) SetEx(_ context.Context, key string, ttlSeconds int64, value []byte) (bool, error) {
	if ttlSeconds <= 0 {
		return false, store.ErrInvalidExpire
	}
	return s.put(key, value, time.Duration(ttlSeconds)*time.Second), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) (bool, error) {
	return s.put(key, value, 0), nil
}

// put applies the write synchronously. Ristretto admits writes asynchronously,
// so a refused write is detected by reading the key back after Wait.
func (s *Store) put(key string, value []byte, ttl time.Duration) bool {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.c.SetWithTTL(key, v, int64(len(key)+len(v)), ttl) {
		return false
	}
	s.c.Wait()
	if _, ok := s.get(key); !ok {
		return false
	}
	s.idx[key] = struct{}{}
	return true
}

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
