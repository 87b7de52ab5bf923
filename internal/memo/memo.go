// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package memo provides an in-memory map with a soft size limit.
//
// When the map grows past its limit, the least recently used quarter of
// the entries is evicted. Access order is tracked with a monotonic tick
// rather than a linked list; eviction sorts once per overflow.
//
//	m := memo.New[[32]byte, *shader.Artifact](32)
//	m.Put(digest, art)
//	art, ok := m.Get(digest)
package memo

import (
	"slices"
	"sync"
)

// Map is a thread-safe LRU map with a soft limit.
// Map must not be copied after creation.
type Map[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	limit   int
	tick    int64
	hits    uint64
	misses  uint64
}

type entry[V any] struct {
	value V
	atime int64
}

// Stats is a snapshot of map usage.
type Stats struct {
	Len    int
	Limit  int
	Hits   uint64
	Misses uint64
}

// New creates a map holding about limit entries. A limit of 0 means
// unlimited.
func New[K comparable, V any](limit int) *Map[K, V] {
	return &Map[K, V]{
		entries: make(map[K]*entry[V]),
		limit:   limit,
	}
}

// Get returns the value for key and marks it recently used.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		m.misses++
		var zero V
		return zero, false
	}
	m.hits++
	m.tick++
	e.atime = m.tick
	return e.value, true
}

// Put stores value under key, evicting old entries past the limit.
func (m *Map[K, V]) Put(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick++
	m.entries[key] = &entry[V]{value: value, atime: m.tick}
	if m.limit > 0 && len(m.entries) > m.limit {
		m.evict()
	}
}

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	return true
}

// Clear removes every entry. Counters are kept.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stats returns usage counters.
func (m *Map[K, V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Len: len(m.entries), Limit: m.limit, Hits: m.hits, Misses: m.misses}
}

// evict shrinks the map to three quarters of the limit, oldest first.
// Caller must hold m.mu.
func (m *Map[K, V]) evict() {
	target := max(m.limit*3/4, 1)
	n := len(m.entries) - target
	if n <= 0 {
		return
	}

	type aged struct {
		key   K
		atime int64
	}
	all := make([]aged, 0, len(m.entries))
	for k, e := range m.entries {
		all = append(all, aged{k, e.atime})
	}
	slices.SortFunc(all, func(a, b aged) int {
		switch {
		case a.atime < b.atime:
			return -1
		case a.atime > b.atime:
			return 1
		}
		return 0
	})
	for _, a := range all[:n] {
		delete(m.entries, a.key)
	}
}
