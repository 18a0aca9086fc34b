// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

// Package tinymap implements a small, linear companion map for a handful
// of entries, promoting itself to a phamt.Map once it grows past a small
// threshold or hits a cheap collision signal. It exists because most maps
// in practice are tiny, and a HAMT root node for three entries is a
// needless branch and allocation compared to a flat array scan.
package tinymap

import "github.com/triegrove/phamt"

// maxEntries bounds how many pairs a Map carries before Assoc promotes it
// to a phamt.Map instead of growing the linear array further.
const maxEntries = 16

type entry[K any, V any] struct {
	key K
	val V
}

// Map is a small, copy-on-write array of key/value pairs addressed by
// linear scan. Its zero value is not usable; construct one with New.
type Map[K any, V any] struct {
	hasher  phamt.Hasher[K]
	entries []entry[K, V]
	seen    uint64
}

// New returns an empty Map that hashes and compares keys with hasher.
func New[K any, V any](hasher phamt.Hasher[K]) *Map[K, V] {
	return &Map[K, V]{hasher: hasher}
}

// bitPair derives the two 6-bit slice positions of h used by the
// collision-signal bitmap: one from its low 6 bits, one from the next 6,
// matching the convention of a small two-probe Bloom filter.
func bitPair(h uint32) (uint64, uint64) {
	return uint64(1) << (h & 0x3f), uint64(1) << ((h >> 6) & 0x3f)
}

// Count returns the number of entries currently held.
func (m *Map[K, V]) Count() int {
	return len(m.entries)
}

// Lookup returns the value stored under key, or notFound if absent.
func (m *Map[K, V]) Lookup(key K, notFound V) V {
	for _, e := range m.entries {
		if m.hasher.Equal(e.key, key) {
			return e.val
		}
	}
	return notFound
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	for _, e := range m.entries {
		if m.hasher.Equal(e.key, key) {
			return true
		}
	}
	return false
}

// Assoc binds key to value. It returns either a new Map (tiny stays tiny)
// or, if the bound is exceeded or a double-hash conflict is flagged, a
// promoted phamt.Map holding every prior entry plus this one -- exactly
// one of the two return values is non-nil. Callers that keep reassigning
// their handle to whichever of the two comes back transparently ride the
// promotion.
func (m *Map[K, V]) Assoc(key K, value V) (*Map[K, V], *phamt.Map[K, V]) {
	for i, e := range m.entries {
		if m.hasher.Equal(e.key, key) {
			cp := m.clone()
			cp.entries[i].val = value
			return cp, nil
		}
	}

	h := m.hasher.Hash(key)
	p1, p2 := bitPair(h)
	doubleHit := m.seen&p1 != 0 && m.seen&p2 != 0
	if len(m.entries) >= maxEntries || doubleHit {
		return nil, m.promote(key, value)
	}

	cp := m.clone()
	cp.entries = append(cp.entries, entry[K, V]{key: key, val: value})
	cp.seen |= p1 | p2
	return cp, nil
}

// Dissoc removes key, if present. The collision-signal bitmap is
// recomputed from the surviving entries rather than having its two bits
// cleared directly: the two bits a deleted entry set may still be load-
// bearing for an entirely different surviving entry that happens to hash
// into the same slice, and the bitmap is only ever used as a promotion
// heuristic, never to skip a real lookup, so recomputing it is both safe
// and still cheap at this size.
func (m *Map[K, V]) Dissoc(key K) *Map[K, V] {
	idx := -1
	for i, e := range m.entries {
		if m.hasher.Equal(e.key, key) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return m
	}
	cp := &Map[K, V]{hasher: m.hasher, entries: make([]entry[K, V], 0, len(m.entries)-1)}
	for i, e := range m.entries {
		if i == idx {
			continue
		}
		cp.entries = append(cp.entries, e)
		p1, p2 := bitPair(m.hasher.Hash(e.key))
		cp.seen |= p1 | p2
	}
	return cp
}

func (m *Map[K, V]) clone() *Map[K, V] {
	entries := make([]entry[K, V], len(m.entries), len(m.entries)+1)
	copy(entries, m.entries)
	return &Map[K, V]{hasher: m.hasher, entries: entries, seen: m.seen}
}

// promote builds a fresh phamt.Map containing every entry of m plus the
// one that triggered promotion, batching the inserts through a transient
// so the resulting trie is built with one allocation per touched node
// rather than one full persistent copy per entry.
func (m *Map[K, V]) promote(key K, value V) *phamt.Map[K, V] {
	t := phamt.New[K, V](m.hasher).AsTransient()
	for _, e := range m.entries {
		t, _ = t.Assoc(e.key, e.val)
	}
	t, _ = t.Assoc(key, value)
	out, _ := t.Persistent()
	return out
}
