// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lru provides a frame-aged LRU cache for per-frame resource slots.
//
// Entries record the frame they were last used in. [Cache.EndFrame] evicts
// entries that have not been touched for a configurable number of frames,
// and inserting past the soft limit evicts the least recently used quarter.
//
// Cache is NOT safe for concurrent use; it is owned by the frame builder.
package lru

import "sort"

type entry[V any] struct {
	value V
	frame uint64 // frame of last use
	tick  uint64 // access order within and across frames
}

// Cache maps keys to values with frame-based aging.
type Cache[K comparable, V any] struct {
	entries   map[K]*entry[V]
	softLimit int
	maxAge    uint64
	frame     uint64
	tick      uint64

	// OnEvict, if set, is called for every evicted entry.
	OnEvict func(K, V)
}

// New returns a cache. A softLimit of 0 means unlimited; a maxAge of 0 keeps
// entries until the soft limit evicts them.
func New[K comparable, V any](softLimit int, maxAge uint64) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*entry[V]),
		softLimit: softLimit,
		maxAge:    maxAge,
	}
}

// Get returns the value for key and marks it used in the current frame.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.touch(e)
	return e.value, true
}

// GetOrCreate returns the value for key, calling create on a miss.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Set(key, v)
	return v
}

// Set stores value under key.
func (c *Cache[K, V]) Set(key K, value V) {
	e := &entry[V]{value: value}
	c.touch(e)
	c.entries[key] = e
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Frame returns the current frame counter.
func (c *Cache[K, V]) Frame() uint64 {
	return c.frame
}

// EndFrame advances the frame counter and evicts entries older than maxAge.
// It returns the number of evicted entries.
func (c *Cache[K, V]) EndFrame() int {
	c.frame++
	if c.maxAge == 0 {
		return 0
	}
	evicted := 0
	for k, e := range c.entries {
		if c.frame-e.frame > c.maxAge {
			c.evict(k, e)
			evicted++
		}
	}
	return evicted
}

// Clear removes all entries without calling OnEvict.
func (c *Cache[K, V]) Clear() {
	c.entries = make(map[K]*entry[V])
}

func (c *Cache[K, V]) touch(e *entry[V]) {
	c.tick++
	e.tick = c.tick
	e.frame = c.frame
}

func (c *Cache[K, V]) evict(k K, e *entry[V]) {
	delete(c.entries, k)
	if c.OnEvict != nil {
		c.OnEvict(k, e.value)
	}
}

// evictOldest removes the least recently used quarter of the entries.
func (c *Cache[K, V]) evictOldest() {
	type aged struct {
		key  K
		tick uint64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.tick})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].tick < all[j].tick })

	n := max(len(all)/4, 1)
	for _, a := range all[:n] {
		c.evict(a.key, c.entries[a.key])
	}
}
