// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import "sync/atomic"

// Transient is a single-owner, mutation-in-place batching facade over a
// Map. AsTransient seeds one from a persistent snapshot; a run of Assoc and
// Dissoc calls on the Transient mutates the trie's freshly-copied nodes
// directly instead of copying on every call, amortizing the cost of a
// large batch of changes to roughly one copy per touched node rather than
// one copy per call. Persistent freezes the batch back into an ordinary,
// sharable Map and invalidates the Transient for any further use.
//
// A Transient is not safe for concurrent use: it is meant to be built,
// mutated, and published by a single goroutine. published guards against
// the one mistake that actually matters here -- calling a method again
// after Persistent has already handed the trie back out for sharing.
type Transient[K any, V any] struct {
	ed        *transientEditor[K, V]
	root      *bitmapNode[K, V]
	hasher    Hasher[K]
	published atomic.Bool
}

func newTransient[K any, V any](m *Map[K, V]) *Transient[K, V] {
	ed := newTransientEditor[K, V]()
	root := ed.editBitmap(m.root)
	return &Transient[K, V]{ed: ed, root: root, hasher: m.hasher}
}

// Assoc binds key to value in place and returns t itself with a nil error,
// so that Persistent can still be called at the end of a chain of these
// calls. After Persistent it returns TransientPublishedError.
func (t *Transient[K, V]) Assoc(key K, value V) (*Transient[K, V], error) {
	if t.published.Load() {
		return nil, TransientPublishedError{}
	}
	h := t.hasher.Hash(key)
	newRoot, _ := assocBitmap(t.ed, t.root, t.hasher, key, value, h, 0)
	t.root = newRoot.(*bitmapNode[K, V])
	return t, nil
}

// Dissoc removes key in place.
func (t *Transient[K, V]) Dissoc(key K) (*Transient[K, V], error) {
	if t.published.Load() {
		return nil, TransientPublishedError{}
	}
	h := t.hasher.Hash(key)
	newRoot, removed, collapse := dissocBitmap(t.ed, t.root, t.hasher, key, h, 0)
	if !removed {
		return t, nil
	}
	switch {
	case collapse != nil:
		t.root = t.ed.newBitmap(uint64(slotInline)<<(2*slotIndex(t.hasher.Hash(collapse.key), 0)),
			[]cell[K, V]{{kind: cellKey, key: collapse.key}, {kind: cellValue, val: collapse.val}}, 1)
	case newRoot == nil:
		t.root = t.ed.newBitmap(0, nil, 0)
	default:
		t.root = newRoot.(*bitmapNode[K, V])
	}
	return t, nil
}

// Lookup reads key's current value from the in-progress batch.
func (t *Transient[K, V]) Lookup(key K, notFound V) (V, error) {
	if t.published.Load() {
		var zero V
		return zero, TransientPublishedError{}
	}
	v, ok := lookup(t.root, t.hasher, key, t.hasher.Hash(key))
	if !ok {
		return notFound, nil
	}
	return v, nil
}

// Count returns the number of entries currently staged in t.
func (t *Transient[K, V]) Count() (int, error) {
	if t.published.Load() {
		return 0, TransientPublishedError{}
	}
	return t.root.cnt, nil
}

// Persistent freezes t's staged mutations into an ordinary Map, safe to
// share freely. Calling it a second time, or calling any other method on t
// afterward, returns TransientPublishedError.
func (t *Transient[K, V]) Persistent() (*Map[K, V], error) {
	if !t.published.CompareAndSwap(false, true) {
		return nil, TransientPublishedError{}
	}
	// Orphan this transient's edit token so a stray reference to t cannot
	// keep mutating the trie now shared out as a Map: any further edit call
	// (which would fail published's check first, but belt and suspenders)
	// would otherwise still see owner == t.ed.tok and mutate in place.
	t.ed.tok = &editToken{}
	return &Map[K, V]{root: t.root, hasher: t.hasher}, nil
}
