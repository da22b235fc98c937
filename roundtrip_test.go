package bpcache

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/unkn0wn-root/bpcache/store/memory"
)

func newMemPool[V any](t *testing.T, mem *memory.Memory, prefix string) *Pool[V] {
	t.Helper()
	p, err := New[V](Options[V]{Store: mem, Prefix: prefix})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestRoundTripWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	p := newMemPool[[]string](t, memory.New(), "")

	want := []string{"test", "foo", "bar"}
	if ok, err := p.Save(ctx, NewItem("a-key", want)); err != nil || !ok {
		t.Fatalf("Save: ok=%v err=%v", ok, err)
	}
	it, err := p.GetItem(ctx, "a-key")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if it.Key() != "a-key" || !it.IsHit() || !reflect.DeepEqual(it.Get(), want) {
		t.Fatalf("got key=%q hit=%v value=%v", it.Key(), it.IsHit(), it.Get())
	}
	if _, ok := it.Expires(); ok {
		t.Fatalf("expected no expiry")
	}
}

// The expiry is rebuilt from a TTL query, so allow a couple of seconds of drift.
func TestRoundTripWithExpiry(t *testing.T) {
	ctx := context.Background()
	p := newMemPool[[]string](t, memory.New(), "")

	want := time.Now().UTC().Add(500 * time.Second)
	if ok, err := p.Save(ctx, NewItem("foo", []string{"test"}).ExpiresAt(want)); err != nil || !ok {
		t.Fatalf("Save: ok=%v err=%v", ok, err)
	}
	it, err := p.GetItem(ctx, "foo")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !it.IsHit() || !reflect.DeepEqual(it.Get(), []string{"test"}) {
		t.Fatalf("got hit=%v value=%v", it.IsHit(), it.Get())
	}
	exp, ok := it.Expires()
	if !ok {
		t.Fatalf("expected an expiry")
	}
	if d := exp.Sub(want); d < -2*time.Second || d > 2*time.Second {
		t.Fatalf("expiry %v too far from %v", exp, want)
	}
}

func TestExpiredSaveIsRejectedByStore(t *testing.T) {
	ctx := context.Background()
	p := newMemPool[string](t, memory.New(), "")

	_, err := p.Save(ctx, NewItem("old", "v").ExpiresAt(time.Now().Add(-time.Minute)))
	if err == nil {
		t.Fatalf("memory store rejects non-positive TTLs")
	}
	if has, _ := p.HasItem(ctx, "old"); has {
		t.Fatalf("rejected save must not store the key")
	}
}

func TestHasItemTracksPresence(t *testing.T) {
	ctx := context.Background()
	p := newMemPool[string](t, memory.New(), "")

	if has, err := p.HasItem(ctx, "k"); err != nil || has {
		t.Fatalf("HasItem before save: has=%v err=%v", has, err)
	}
	_, _ = p.Save(ctx, NewItem("k", ""))
	if has, err := p.HasItem(ctx, "k"); err != nil || !has {
		t.Fatalf("HasItem after save: has=%v err=%v", has, err)
	}
}

func TestClearScopesToPrefix(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	mine := newMemPool[string](t, mem, "mine:")
	theirs := newMemPool[string](t, mem, "theirs:")

	for _, k := range []string{"a", "b", "c"} {
		_, _ = mine.Save(ctx, NewItem(k, k))
		_, _ = theirs.Save(ctx, NewItem(k, k))
	}

	if ok, err := mine.Clear(ctx); err != nil || !ok {
		t.Fatalf("Clear: ok=%v err=%v", ok, err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if has, _ := mine.HasItem(ctx, k); has {
			t.Fatalf("mine:%s survived Clear", k)
		}
		if has, _ := theirs.HasItem(ctx, k); !has {
			t.Fatalf("theirs:%s was deleted by another pool's Clear", k)
		}
	}
}

func TestDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newMemPool[string](t, memory.New(), "")
	_, _ = p.Save(ctx, NewItem("a", "1"))
	_, _ = p.Save(ctx, NewItem("b", "2"))
	_, _ = p.Save(ctx, NewItem("c", "3"))

	if ok, _ := p.DeleteItem(ctx, "a"); !ok {
		t.Fatalf("DeleteItem on present key should be true")
	}
	if ok, _ := p.DeleteItem(ctx, "a"); ok {
		t.Fatalf("DeleteItem on absent key should be false")
	}
	if has, _ := p.HasItem(ctx, "b"); !has {
		t.Fatalf("DeleteItem removed more than its key")
	}
	if ok, _ := p.DeleteItems(ctx, []string{"b", "c"}); !ok {
		t.Fatalf("DeleteItems removing every key should be true")
	}
}

func TestGetItemsOrderMatchesRequest(t *testing.T) {
	ctx := context.Background()
	p := newMemPool[string](t, memory.New(), "")
	_, _ = p.Save(ctx, NewItem("k2", "two"))

	items, err := p.GetItems(ctx, []string{"k1", "k2", "k1"})
	if err != nil {
		t.Fatal(err)
	}
	if items.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", items.Len())
	}
	if items.At(0).IsHit() || !items.At(1).IsHit() || items.At(1).Get() != "two" || items.At(2).Key() != "k1" {
		t.Fatalf("unexpected collection: %+v", items.Items())
	}
	if items.At(0) == items.At(2) {
		t.Fatalf("every fetch must return a fresh item")
	}
}

func TestCommitWritesInOrder(t *testing.T) {
	ctx := context.Background()
	p := newMemPool[string](t, memory.New(), "")
	p.SaveDeferred(NewItem("k", "first"))
	p.SaveDeferred(NewItem("k", "second"))

	if has, _ := p.HasItem(ctx, "k"); has {
		t.Fatalf("deferred item visible before Commit")
	}
	if ok, err := p.Commit(ctx); err != nil || !ok {
		t.Fatalf("Commit: ok=%v err=%v", ok, err)
	}
	it, _ := p.GetItem(ctx, "k")
	if it.Get() != "second" {
		t.Fatalf("last deferred write should win, got %q", it.Get())
	}
}
