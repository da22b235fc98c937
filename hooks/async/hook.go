// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 10,
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	pool, _ := bpcache.New[User](bpcache.Options[User]{
//	    Store:  redisstore.New(redisstore.Config{Client: rdb}),
//	    Prefix: "app:prod:",
//	    Hooks:  hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/bpcache"
)

type Hooks struct {
	inner bpcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu     sync.RWMutex
	closed bool
}

var _ bpcache.Hooks = (*Hooks)(nil)

func New(inner bpcache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = bpcache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
// Events fired after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(k string)          { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)         { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) SaveRejected(k string) { h.try(func() { h.inner.SaveRejected(k) }) }
func (h *Hooks) ClearMiss(k string)    { h.try(func() { h.inner.ClearMiss(k) }) }
func (h *Hooks) DecodeError(k string, err error) {
	h.try(func() { h.inner.DecodeError(k, err) })
}
func (h *Hooks) CommitFailed(k string, err error) {
	h.try(func() { h.inner.CommitFailed(k, err) })
}
