// Package store defines the backing store capability set consumed by bpcache.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly the
// bytes previously passed to Set/SetEx for a key. The semantics follow Redis:
// TTL reports -2 for a missing key and -1 for a key without expiry, Del and
// Exists count keys, and SetEx rejects non-positive TTLs.
//
// The keyspace under a pool's prefix is owned by that pool. Clear deletes
// everything matching "<prefix>*".
package store

import (
	"context"
	"errors"
)

// TTL sentinels, identical to the values Redis returns.
const (
	TTLNoExpiry int64 = -1
	TTLMissing  int64 = -2
)

// ErrInvalidExpire is returned by SetEx for a non-positive TTL.
var ErrInvalidExpire = errors.New("store: invalid expire time")

// Store is a minimal key/value byte store with per-key expiry.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// TTL returns the remaining time to live in whole seconds,
	// TTLNoExpiry or TTLMissing.
	TTL(ctx context.Context, key string) (int64, error)

	// Exists returns how many of the given keys are present.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Keys lists keys matching a glob pattern; "*" matches any run of
	// characters and "?" a single one.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Del removes keys and returns how many were removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// SetEx stores value with a TTL in seconds. ttlSeconds <= 0 fails: Redis
	// answers "invalid expire time", in-process stores return ErrInvalidExpire.
	SetEx(ctx context.Context, key string, ttlSeconds int64, value []byte) (bool, error)

	// Set stores value without expiry, dropping any previous TTL.
	// ok=false means the store refused the write (e.g. admission under pressure).
	Set(ctx context.Context, key string, value []byte) (bool, error)
}
