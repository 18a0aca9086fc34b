// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import "github.com/samber/lo"

// iterFrame is one level of an iterator's explicit stack: the node being
// walked and the next slot to inspect in it.
type iterFrame[K any, V any] struct {
	node *bitmapNode[K, V]
	slot uint32
}

// Iterator walks every key/value pair of a Map in a deterministic, but
// otherwise unspecified, order. It is pull-based: nothing is computed
// until Next is called.
type Iterator[K any, V any] struct {
	stack   []iterFrame[K, V]
	coll    *collisionNode[K, V]
	collIdx int
	key     K
	val     V
}

// Iterator returns a fresh Iterator positioned before the first entry.
func (m *Map[K, V]) Iterator() *Iterator[K, V] {
	it := &Iterator[K, V]{}
	if m.root.cnt > 0 {
		it.stack = []iterFrame[K, V]{{node: m.root, slot: 0}}
	}
	return it
}

// Next advances the iterator and reports whether an entry is available.
// Once Next returns false the iterator is exhausted.
func (it *Iterator[K, V]) Next() bool {
	for {
		if it.coll != nil {
			if it.collIdx < len(it.coll.pairs) {
				p := it.coll.pairs[it.collIdx]
				it.collIdx++
				it.key, it.val = p.key, p.val
				return true
			}
			it.coll = nil
		}

		if len(it.stack) == 0 {
			return false
		}
		top := &it.stack[len(it.stack)-1]
		if top.slot >= 32 {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		slot := top.slot
		top.slot++
		switch slotCode(top.node.bitmap, slot) {
		case slotEmpty:
			continue
		case slotInline:
			off := cellOffset(top.node.bitmap, slot)
			it.key = top.node.cells[off].key
			it.val = top.node.cells[off+1].val
			return true
		default:
			off := cellOffset(top.node.bitmap, slot)
			child := top.node.cells[off].child
			switch c := child.(type) {
			case *bitmapNode[K, V]:
				it.stack = append(it.stack, iterFrame[K, V]{node: c, slot: 0})
			case *collisionNode[K, V]:
				it.coll = c
				it.collIdx = 0
			}
			continue
		}
	}
}

// Key returns the current entry's key. Valid only after Next returned
// true.
func (it *Iterator[K, V]) Key() K { return it.key }

// Value returns the current entry's value. Valid only after Next returned
// true.
func (it *Iterator[K, V]) Value() V { return it.val }

// All visits every key/value pair of m, stopping early if fn returns
// false.
func (m *Map[K, V]) All(fn func(K, V) bool) {
	allNode[K, V](m.root, fn)
}

func allNode[K any, V any](n node[K, V], fn func(K, V) bool) bool {
	switch t := n.(type) {
	case nil:
		return true
	case *collisionNode[K, V]:
		for _, p := range t.pairs {
			if !fn(p.key, p.val) {
				return false
			}
		}
		return true
	case *bitmapNode[K, V]:
		for slot := uint32(0); slot < 32; slot++ {
			switch slotCode(t.bitmap, slot) {
			case slotEmpty:
				continue
			case slotInline:
				off := cellOffset(t.bitmap, slot)
				if !fn(t.cells[off].key, t.cells[off+1].val) {
					return false
				}
			default:
				off := cellOffset(t.bitmap, slot)
				if !allNode(t.cells[off].child, fn) {
					return false
				}
			}
		}
		return true
	}
	return true
}

// KVReduce folds every key/value pair of m into an accumulator, visiting
// entries in the same order All and Iterator would.
func KVReduce[K any, V any, A any](m *Map[K, V], init A, fn func(acc A, k K, v V) A) A {
	acc := init
	m.All(func(k K, v V) bool {
		acc = fn(acc, k, v)
		return true
	})
	return acc
}

// Seq materializes every key/value pair of m into a slice, in the same
// order Iterator would produce them. It exists alongside Iterator and
// KVReduce because callers that just want "every entry, once, as a slice"
// are common enough to not want to hand-roll the fold every time.
func Seq[K any, V any](m *Map[K, V]) []pairView[K, V] {
	out := make([]pairView[K, V], 0, m.Count())
	m.All(func(k K, v V) bool {
		out = append(out, pairView[K, V]{Key: k, Value: v})
		return true
	})
	return out
}

// pairView is the externally visible shape of one entry returned by Seq.
type pairView[K any, V any] struct {
	Key   K
	Value V
}

// Keys returns every key in m, in iteration order.
func Keys[K any, V any](m *Map[K, V]) []K {
	return lo.Map(Seq(m), func(p pairView[K, V], _ int) K { return p.Key })
}

// Values returns every value in m, in iteration order.
func Values[K any, V any](m *Map[K, V]) []V {
	return lo.Map(Seq(m), func(p pairView[K, V], _ int) V { return p.Value })
}
