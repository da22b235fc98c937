package bpcache

import "time"

// CacheItem is the capability a value must expose to be saved by a Pool.
// *Item[V] satisfies it, as can any caller type.
type CacheItem[V any] interface {
	Key() string
	Get() V
}

// Expirer is an optional CacheItem capability. ok=false means no expiry.
type Expirer interface {
	Expires() (t time.Time, ok bool)
}

// Hitter is an optional CacheItem capability carried over by ItemFrom.
type Hitter interface {
	IsHit() bool
}

// Item is one cache entry. Pools return a fresh Item per fetch; callers own it.
type Item[V any] struct {
	key       string
	value     V
	expiresAt time.Time // UTC; zero => no expiry
	hit       bool
}

var (
	_ CacheItem[string] = (*Item[string])(nil)
	_ Expirer           = (*Item[string])(nil)
	_ Hitter            = (*Item[string])(nil)
)

// NewItem builds an item to hand to Save or SaveDeferred.
func NewItem[V any](key string, value V) *Item[V] {
	return &Item[V]{key: key, value: value}
}

func missItem[V any](key string) *Item[V] {
	return &Item[V]{key: key}
}

func hitItem[V any](key string, value V, expiresAt time.Time) *Item[V] {
	return &Item[V]{key: key, value: value, expiresAt: expiresAt, hit: true}
}

// ItemFrom normalises any CacheItem into an *Item. It is a no-op for *Item.
func ItemFrom[V any](ci CacheItem[V]) *Item[V] {
	if it, ok := ci.(*Item[V]); ok {
		return it
	}
	it := &Item[V]{key: ci.Key(), value: ci.Get()}
	if e, ok := ci.(Expirer); ok {
		if t, ok := e.Expires(); ok {
			it.expiresAt = t.UTC()
		}
	}
	if h, ok := ci.(Hitter); ok {
		it.hit = h.IsHit()
	}
	return it
}

func (it *Item[V]) Key() string { return it.key }

// Get returns the value; the zero V on a miss.
func (it *Item[V]) Get() V { return it.value }

func (it *Item[V]) IsHit() bool { return it.hit }

// Expires returns the absolute expiry in UTC.
func (it *Item[V]) Expires() (time.Time, bool) {
	return it.expiresAt, !it.expiresAt.IsZero()
}

func (it *Item[V]) Set(v V) *Item[V] {
	it.value = v
	return it
}

// ExpiresAt sets an absolute expiry. The zero time clears it.
func (it *Item[V]) ExpiresAt(t time.Time) *Item[V] {
	if t.IsZero() {
		it.expiresAt = time.Time{}
		return it
	}
	it.expiresAt = t.UTC()
	return it
}

// ExpiresAfter sets the expiry to now+d. A non-positive d yields an instant
// that is already due; Save passes the resulting TTL to the store as is.
func (it *Item[V]) ExpiresAfter(d time.Duration) *Item[V] {
	it.expiresAt = time.Now().UTC().Add(d)
	return it
}

// NeverExpires clears any expiry.
func (it *Item[V]) NeverExpires() *Item[V] {
	it.expiresAt = time.Time{}
	return it
}
