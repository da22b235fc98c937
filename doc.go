// Package bpcache exposes a key/value backing store through an item-based
// caching contract: fetch, check, save, delete and clear entries by string
// key, with optional absolute expiration.
//
// Components:
//   - Store: the backing store capability set (store.Store). Redis via
//     store/redis; in-process stores in store/memory, store/bigcache, store/ristretto.
//   - Codec[V]: (de)serializes V <-> []byte (codec.Msgpack by default).
//   - Item[V] / Collection[V]: results of single and multi-key fetches.
//   - Pool[V]: the adapter. It prefixes keys, translates between absolute
//     expiry instants and the store's relative TTLs, and batches deferred saves.
//
// Keys:
//
//	<prefix><key>   prefix defaults to "BpCache:"
//
// Deferred writes:
//
//	pool.SaveDeferred(bpcache.NewItem("a", v1))
//	pool.SaveDeferred(bpcache.NewItem("b", v2).ExpiresAfter(time.Minute))
//	ok, err := pool.Commit(ctx) // one store write per item, in order
//
// A Pool is not safe for concurrent use of SaveDeferred/Commit; callers that
// share a pool across goroutines must serialise those calls themselves.
package bpcache
