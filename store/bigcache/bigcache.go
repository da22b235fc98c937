// Package bigcache implements store.Store on top of allegro/bigcache.
//
// BigCache only knows a global LifeWindow, so every value is framed with its
// own absolute expiry (internal/wire) and expired frames read as misses.
// LifeWindow still caps the life of every entry, including ones saved without
// a TTL.
package bigcache

import (
	"context"
	"errors"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"
	"github.com/tidwall/match"

	"github.com/unkn0wn-root/bpcache/internal/wire"
	"github.com/unkn0wn-root/bpcache/store"
)

const (
	defaultLifeWindow  = 24 * time.Hour
	defaultShards      = 64
	defaultMaxEntries  = 4096
	defaultMaxEntryLen = 512
)

type Store struct {
	// mu serialises read-modify-write sequences (Del, Exists) against writers.
	mu  sync.RWMutex
	c   *bc.BigCache
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => 24h
	CleanWindow        time.Duration // 0 => no background cleanup
	Shards             int           // power of two; 0 => 64
	MaxEntriesInWindow int           // sizing hint; 0 => 4096
	MaxEntrySize       int           // sizing hint in bytes; 0 => 512
	HardMaxCacheSizeMB int           // ~ memory limit; 0 = unlimited
	Clock              func() time.Time
}

func New(cfg Config) (*Store, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = defaultLifeWindow
	}
	conf := bc.DefaultConfig(life)
	conf.Shards = defaultShards
	conf.MaxEntriesInWindow = defaultMaxEntries
	conf.MaxEntrySize = defaultMaxEntryLen
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Store{c: c, now: now}, nil
}

// live reads and unframes key. Expired or corrupt frames count as missing.
func (s *Store) live(key string) (time.Time, []byte, bool, error) {
	raw, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return time.Time{}, nil, false, nil
	}
	if err != nil {
		return time.Time{}, nil, false, err
	}
	exp, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		return time.Time{}, nil, false, nil
	}
	if !exp.IsZero() && !s.now().Before(exp) {
		return time.Time{}, nil, false, nil
	}
	return exp, payload, true, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, payload, ok, err := s.live(key)
	if err != nil || !ok {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *Store) TTL(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, _, ok, err := s.live(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return store.TTLMissing, nil
	}
	if exp.IsZero() {
		return store.TTLNoExpiry, nil
	}
	return int64((exp.Sub(s.now()) + 500*time.Millisecond) / time.Second), nil
}

func (s *Store) Exists(_ context.Context, keys ...string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, k := range keys {
		_, _, ok, err := s.live(k)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0)
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			// entry vanished mid-iteration
			continue
		}
		k := info.Key()
		if !match.Match(k, pattern) {
			continue
		}
		if _, _, ok, _ := s.live(k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *Store) Del(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		_, _, ok, err := s.live(k)
		if err != nil {
			return n, err
		}
		if err := s.c.Delete(k); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) SetEx(_ context.Context, key string, ttlSeconds int64, value []byte) (bool, error) {
	if ttlSeconds <= 0 {
		return false, store.ErrInvalidExpire
	}
	return s.put(key, s.now().Add(time.Duration(ttlSeconds)*time.Second), value)
}

func (s *Store) Set(_ context.Context, key string, value []byte) (bool, error) {
	return s.put(key, time.Time{}, value)
}

func (s *Store) put(key string, exp time.Time, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.c.Set(key, wire.EncodeEntry(exp, value)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Close(_ context.Context) error {
	return s.c.Close()
}
