package bpcache

import "iter"

// Collection is an ordered list of items, in the order their keys were requested.
type Collection[V any] struct {
	items []*Item[V]
}

func NewCollection[V any](items ...CacheItem[V]) *Collection[V] {
	c := &Collection[V]{items: make([]*Item[V], 0, len(items))}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

// Add appends an item, normalised through ItemFrom.
func (c *Collection[V]) Add(ci CacheItem[V]) *Collection[V] {
	c.items = append(c.items, ItemFrom(ci))
	return c
}

func (c *Collection[V]) Len() int { return len(c.items) }

// At returns the i-th item. It panics when i is out of range, like a slice.
func (c *Collection[V]) At(i int) *Item[V] { return c.items[i] }

// All iterates from position 0 in order.
func (c *Collection[V]) All() iter.Seq2[int, *Item[V]] {
	return func(yield func(int, *Item[V]) bool) {
		for i, it := range c.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Items returns a copy of the underlying slice.
func (c *Collection[V]) Items() []*Item[V] {
	out := make([]*Item[V], len(c.items))
	copy(out, c.items)
	return out
}
