package bpcache

import (
	"context"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/bpcache/codec"
	"github.com/unkn0wn-root/bpcache/store"
)

// ItemPool is the item-based caching contract implemented by Pool.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
type ItemPool[V any] interface {
	GetItem(ctx context.Context, key string) (*Item[V], error)
	GetItems(ctx context.Context, keys []string) (*Collection[V], error)
	HasItem(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) (bool, error)
	DeleteItem(ctx context.Context, key string) (bool, error)
	DeleteItems(ctx context.Context, keys []string) (bool, error)
	Save(ctx context.Context, item CacheItem[V]) (bool, error)
	SaveDeferred(item CacheItem[V]) bool
	Commit(ctx context.Context) (bool, error)
}

// Options configure a Pool. Only Store is required.
type Options[V any] struct {
	// Required. The pool never closes it.
	Store store.Store

	Prefix string     // key namespace; "" => "BpCache:"
	Codec  c.Codec[V] // nil => codec.Msgpack
	Logger Logger     // nil => NopLogger
	Hooks  Hooks      // nil => NopHooks

	// Now is the clock used for TTL translation; nil => time.Now.
	Now func() time.Time

	// LegacyBatchDelete makes DeleteItems report success only when the store
	// removed exactly one key, whatever the batch size. Off by default.
	LegacyBatchDelete bool
}

func New[V any](opts Options[V]) (*Pool[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("bpcache: store is required")
	}

	p := &Pool[V]{
		store:             opts.Store,
		legacyBatchDelete: opts.LegacyBatchDelete,
	}

	// defaults
	p.prefix = coalesce[string](opts.Prefix, DefaultPrefix)
	p.codec = coalesce[c.Codec[V]](opts.Codec, c.Default[V]())
	p.log = coalesce[Logger](opts.Logger, NopLogger{})
	p.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	p.now = opts.Now
	if p.now == nil {
		p.now = time.Now
	}

	return p, nil
}
