package bpcache

import (
	"context"
	"strings"
	"time"

	c "github.com/unkn0wn-root/bpcache/codec"
	"github.com/unkn0wn-root/bpcache/store"
)

// Pool adapts a store.Store to the item contract. See ItemPool.
//
// The deferred queue is unguarded: SaveDeferred and Commit must not run
// concurrently on the same Pool.
type Pool[V any] struct {
	store             store.Store
	prefix            string
	codec             c.Codec[V]
	log               Logger
	hooks             Hooks
	now               func() time.Time
	legacyBatchDelete bool

	deferred []CacheItem[V]
}

var _ ItemPool[string] = (*Pool[string])(nil)

func (p *Pool[V]) Prefix() string { return p.prefix }

// PrefixKey maps a caller key to its storage key.
func (p *Pool[V]) PrefixKey(key string) string { return p.prefix + key }

// GetItem always returns a fresh item. A missing key yields a miss item and no
// error. The expiry is rebuilt from a TTL query issued after the read, so it
// is accurate to about a second.
func (p *Pool[V]) GetItem(ctx context.Context, key string) (*Item[V], error) {
	k := p.PrefixKey(key)
	raw, ok, err := p.store.Get(ctx, k)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.hooks.Miss(k)
		return missItem[V](key), nil
	}

	ttl, err := p.store.TTL(ctx, k)
	if err != nil {
		return nil, err
	}
	var exp time.Time
	if ttl > 0 {
		exp = p.now().UTC().Add(time.Duration(ttl) * time.Second)
	}

	v, err := p.codec.Decode(raw)
	if err != nil {
		p.hooks.DecodeError(k, err)
		p.log.Warn("stored value failed to decode", Fields{"key": key, "err": err})
		return nil, &DecodeError{Key: key, Err: err}
	}
	p.hooks.Hit(k)
	return hitItem(key, v, exp), nil
}

// GetItems fetches keys one by one. The collection keeps the order of keys,
// duplicates included. The first error aborts the whole call.
func (p *Pool[V]) GetItems(ctx context.Context, keys []string) (*Collection[V], error) {
	out := &Collection[V]{items: make([]*Item[V], 0, len(keys))}
	for _, k := range keys {
		it, err := p.GetItem(ctx, k)
		if err != nil {
			return nil, err
		}
		out.items = append(out.items, it)
	}
	return out, nil
}

func (p *Pool[V]) HasItem(ctx context.Context, key string) (bool, error) {
	n, err := p.store.Exists(ctx, p.PrefixKey(key))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear deletes every key under the prefix, one Del per key. It reports true
// even when some keys were already gone; store errors still abort it.
func (p *Pool[V]) Clear(ctx context.Context) (bool, error) {
	keys, err := p.store.Keys(ctx, p.PrefixKey("*"))
	if err != nil {
		return false, err
	}
	deleted := 0
	for _, k := range keys {
		// glob metacharacters in the prefix may widen the match
		if !strings.HasPrefix(k, p.prefix) {
			continue
		}
		n, err := p.store.Del(ctx, k)
		if err != nil {
			return false, err
		}
		if n == 0 {
			p.hooks.ClearMiss(k)
			continue
		}
		deleted++
	}
	p.log.Debug("cleared namespace", Fields{"prefix": p.prefix, "listed": len(keys), "deleted": deleted})
	return true, nil
}

// DeleteItem reports whether the key existed and was removed.
func (p *Pool[V]) DeleteItem(ctx context.Context, key string) (bool, error) {
	n, err := p.store.Del(ctx, p.PrefixKey(key))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteItems removes keys with a single batched Del. It reports true when the
// store removed every distinct key requested (or exactly one key when
// Options.LegacyBatchDelete is set). An empty batch is a no-op that succeeds.
func (p *Pool[V]) DeleteItems(ctx context.Context, keys []string) (bool, error) {
	if len(keys) == 0 {
		return true, nil
	}
	storageKeys := make([]string, len(keys))
	distinct := make(map[string]struct{}, len(keys))
	for i, k := range keys {
		storageKeys[i] = p.PrefixKey(k)
		distinct[k] = struct{}{}
	}
	n, err := p.store.Del(ctx, storageKeys...)
	if err != nil {
		return false, err
	}
	if p.legacyBatchDelete {
		return n == 1, nil
	}
	return n == int64(len(distinct)), nil
}

// Save writes the item now. Items exposing an expiry (Expirer) are written
// with SetEx and a TTL of expiry minus now in whole seconds; a TTL that is
// already zero or negative is passed through and the store decides.
func (p *Pool[V]) Save(ctx context.Context, item CacheItem[V]) (bool, error) {
	key := item.Key()
	k := p.PrefixKey(key)
	raw, err := p.codec.Encode(item.Get())
	if err != nil {
		return false, &EncodeError{Key: key, Err: err}
	}

	var ok bool
	if exp, has := expiresOf(item); has {
		ttl := exp.Unix() - p.now().UTC().Unix()
		ok, err = p.store.SetEx(ctx, k, ttl, raw)
	} else {
		ok, err = p.store.Set(ctx, k, raw)
	}
	if err != nil {
		return false, err
	}
	if !ok {
		p.hooks.SaveRejected(k)
		p.log.Warn("save rejected by store", Fields{"key": key})
	}
	return ok, nil
}

func expiresOf(item any) (time.Time, bool) {
	e, ok := item.(Expirer)
	if !ok {
		return time.Time{}, false
	}
	return e.Expires()
}

// SaveDeferred queues the item for the next Commit. The item is kept by
// reference, so later mutations are what Commit writes.
func (p *Pool[V]) SaveDeferred(item CacheItem[V]) bool {
	p.deferred = append(p.deferred, item)
	p.log.Debug("save deferred", Fields{"key": item.Key(), "pending": len(p.deferred)})
	return true
}

// Pending reports how many items wait for Commit.
func (p *Pool[V]) Pending() int { return len(p.deferred) }

// Commit saves every deferred item in the order it was queued and empties the
// queue whatever happens. Store rejections (ok=false) do not fail the commit.
// Errors do not stop it either: they are collected into a *CommitError.
func (p *Pool[V]) Commit(ctx context.Context) (bool, error) {
	queued := p.deferred
	p.deferred = nil

	var failures []KeyError
	for _, it := range queued {
		if _, err := p.Save(ctx, it); err != nil {
			p.hooks.CommitFailed(p.PrefixKey(it.Key()), err)
			failures = append(failures, KeyError{Key: it.Key(), Err: err})
		}
	}
	if len(failures) > 0 {
		p.log.Warn("commit finished with failures", Fields{"queued": len(queued), "failed": len(failures)})
		return false, &CommitError{Failures: failures}
	}
	p.log.Debug("commit finished", Fields{"queued": len(queued)})
	return true, nil
}
