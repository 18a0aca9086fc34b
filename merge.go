// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

// ConflictFunc reconciles a key present with conflicting values in both
// sides of a three-way merge (or present on only one side while also
// changed relative to the ancestor). hasAncestor/hasA/hasB report whether
// the key existed on that side at all; when one is false the accompanying
// value is the zero value of V. Returning ok == false deletes the key from
// the merged map.
type ConflictFunc[V any] func(ancestor V, hasAncestor bool, a V, hasA bool, b V, hasB bool) (merged V, ok bool)

// Merge performs a three-way structural merge of a and b against their
// common ancestor, calling fn only for keys that genuinely conflict (see
// reconcile for the full reconciliation table).
// Identity fast paths mean the cost of a merge is proportional to the
// subtrees that actually changed: if ancestor and a are the same Map, the
// result is b outright, and likewise for the symmetric cases.
func Merge[K any, V any](ancestor, a, b *Map[K, V], fn ConflictFunc[V]) *Map[K, V] {
	ed := persistentEditor[K, V]{}
	merged, collapse := mergeNode[K, V](ed, ancestor.root, a.root, b.root, a.hasher, fn, 0)

	var root *bitmapNode[K, V]
	switch {
	case collapse != nil:
		root = ed.newBitmap(uint64(slotInline)<<(2*slotIndex(a.hasher.Hash(collapse.key), 0)),
			[]cell[K, V]{{kind: cellKey, key: collapse.key}, {kind: cellValue, val: collapse.val}}, 1)
	case merged == nil:
		root = ed.newBitmap(0, nil, 0)
	default:
		root = merged.(*bitmapNode[K, V])
	}
	return &Map[K, V]{root: root, hasher: a.hasher}
}

// mergeNode merges the subtrees ancestor, a, and b rooted at shift. It
// returns either a ready node (nil meaning "nothing here"), or, when the
// result collapses to a single surviving entry, that entry via the second
// return value instead (mirroring dissoc's collapse signal).
func mergeNode[K any, V any](ed editor[K, V], ancestor, a, b node[K, V], hs Hasher[K], fn ConflictFunc[V], shift uint) (node[K, V], *pair[K, V]) {
	if sameNode(ancestor, a) {
		return wrapResult[K, V](b)
	}
	if sameNode(ancestor, b) || sameNode(a, b) {
		return wrapResult[K, V](a)
	}

	if shift > maxShift || isCollisionLike(ancestor) || isCollisionLike(a) || isCollisionLike(b) {
		merged := mergeCollisionLevel(flattenPairs(ancestor), flattenPairs(a), flattenPairs(b), hs, fn)
		switch len(merged) {
		case 0:
			return nil, nil
		case 1:
			return nil, &merged[0]
		default:
			hash := hs.Hash(merged[0].key)
			return ed.newCollision(hash, merged), nil
		}
	}

	var ancBM, aBM, bBM *bitmapNode[K, V]
	if ancestor != nil {
		ancBM = ancestor.(*bitmapNode[K, V])
	}
	if a != nil {
		aBM = a.(*bitmapNode[K, V])
	}
	if b != nil {
		bBM = b.(*bitmapNode[K, V])
	}

	var aBitmap, bBitmap uint64
	if aBM != nil {
		aBitmap = aBM.bitmap
	}
	if bBM != nil {
		bBitmap = bBM.bitmap
	}

	type slotResult struct {
		slot    uint32
		inline  bool
		key     K
		val     V
		child   node[K, V]
		entries int
	}
	var results []slotResult
	total := 0

	for slot := uint32(0); slot < 32; slot++ {
		if slotCode(aBitmap, slot) == slotEmpty && slotCode(bBitmap, slot) == slotEmpty {
			continue
		}
		childAnc := slotChild[K, V](ancBM, slot, hs, shift+bitsPerLevel)
		childA := slotChild[K, V](aBM, slot, hs, shift+bitsPerLevel)
		childB := slotChild[K, V](bBM, slot, hs, shift+bitsPerLevel)

		mergedChild, collapse := mergeNode(ed, childAnc, childA, childB, hs, fn, shift+bitsPerLevel)
		switch {
		case collapse != nil:
			results = append(results, slotResult{slot: slot, inline: true, key: collapse.key, val: collapse.val, entries: 1})
			total++
		case mergedChild != nil:
			n := mergedChild.count()
			results = append(results, slotResult{slot: slot, inline: false, child: mergedChild, entries: n})
			total += n
		}
	}

	switch total {
	case 0:
		return nil, nil
	case 1:
		r := results[0]
		return nil, &pair[K, V]{key: r.key, val: r.val}
	default:
		var bitmap uint64
		cells := make([]cell[K, V], 0, len(results)*2)
		for _, r := range results {
			if r.inline {
				bitmap = setSlotCode(bitmap, r.slot, slotInline)
				cells = append(cells, cell[K, V]{kind: cellKey, key: r.key}, cell[K, V]{kind: cellValue, val: r.val})
			} else {
				bitmap = setSlotCode(bitmap, r.slot, slotBranch)
				cells = append(cells, cell[K, V]{kind: cellBranch, child: r.child})
			}
		}
		return ed.newBitmap(bitmap, cells, total), nil
	}
}

// wrapResult adapts a plain "take this whole subtree" result into
// mergeNode's (node, collapse) return shape, applying the collapse signal
// if the chosen subtree happens to be a single-entry bitmapNode (which can
// legitimately happen transiently while merge pushes down singletons).
func wrapResult[K any, V any](n node[K, V]) (node[K, V], *pair[K, V]) {
	if bm, ok := n.(*bitmapNode[K, V]); ok && bm.cnt == 1 {
		p := bm.solePair()
		return nil, &p
	}
	return n, nil
}

// sameNode reports whether x and y are the identical node (including both
// being the absent/nil subtree), which is what powers merge's fast paths.
func sameNode[K any, V any](x, y node[K, V]) bool {
	return x == y
}

func isCollisionLike[K any, V any](n node[K, V]) bool {
	_, ok := n.(*collisionNode[K, V])
	return ok
}

// slotChild materializes the subtree standing behind a slot of n (which
// may be nil) so it can be fed back into mergeNode at the next shift. An
// inline entry is promoted into a throwaway singleton node of the right
// shape rather than being reconciled directly, so that two different keys
// which happen to share this slot still get separated by recursing one
// more level -- exactly as assoc's push-down does when a second key lands
// on an occupied inline slot.
func slotChild[K any, V any](n *bitmapNode[K, V], slot uint32, hs Hasher[K], nextShift uint) node[K, V] {
	if n == nil {
		return nil
	}
	switch slotCode(n.bitmap, slot) {
	case slotEmpty:
		return nil
	case slotInline:
		off := cellOffset(n.bitmap, slot)
		key, val := n.cells[off].key, n.cells[off+1].val
		return singleton[K, V](key, val, hs.Hash(key), nextShift)
	default:
		off := cellOffset(n.bitmap, slot)
		return n.cells[off].child
	}
}

// singleton builds a throwaway, single-entry bitmapNode standing in for a
// promoted inline entry. It violates the "subtree count >= 2" invariant by
// design: it only ever feeds into mergeNode's wrapResult/collapse handling
// and never becomes part of a final, externally visible Map.
func singleton[K any, V any](key K, val V, h uint32, shift uint) *bitmapNode[K, V] {
	if shift > maxShift {
		shift = maxShift
	}
	slot := slotIndex(h, shift)
	return &bitmapNode[K, V]{
		bitmap: uint64(slotInline) << (2 * slot),
		cells:  []cell[K, V]{{kind: cellKey, key: key}, {kind: cellValue, val: val}},
		cnt:    1,
	}
}

// flattenPairs collects every leaf entry reachable from n, regardless of
// whether it is currently shaped as a bitmapNode chain or a CollisionNode.
// It is only called once a merge recursion has decided all remaining work
// belongs to the collision-reconciliation path, where trie shape no longer
// matters and every side is treated as a flat set of entries.
func flattenPairs[K any, V any](n node[K, V]) []pair[K, V] {
	switch t := n.(type) {
	case nil:
		return nil
	case *collisionNode[K, V]:
		return t.pairs
	case *bitmapNode[K, V]:
		var out []pair[K, V]
		for slot := uint32(0); slot < 32; slot++ {
			switch slotCode(t.bitmap, slot) {
			case slotInline:
				off := cellOffset(t.bitmap, slot)
				out = append(out, pair[K, V]{key: t.cells[off].key, val: t.cells[off+1].val})
			case slotBranch:
				off := cellOffset(t.bitmap, slot)
				out = append(out, flattenPairs(t.cells[off].child)...)
			}
		}
		return out
	default:
		return nil
	}
}

// mergeCollisionLevel reconciles three flat entry lists key by key,
// calling fn only where reconcile's table calls for it.
func mergeCollisionLevel[K any, V any](ancPairs, aPairs, bPairs []pair[K, V], hs Hasher[K], fn ConflictFunc[V]) []pair[K, V] {
	var keys []K
	seen := func(k K) bool {
		for _, x := range keys {
			if hs.Equal(x, k) {
				return true
			}
		}
		return false
	}
	for _, list := range [][]pair[K, V]{ancPairs, aPairs, bPairs} {
		for _, p := range list {
			if !seen(p.key) {
				keys = append(keys, p.key)
			}
		}
	}

	find := func(list []pair[K, V], k K) (V, bool) {
		for _, p := range list {
			if hs.Equal(p.key, k) {
				return p.val, true
			}
		}
		var zero V
		return zero, false
	}

	out := make([]pair[K, V], 0, len(keys))
	for _, k := range keys {
		ancv, hasAnc := find(ancPairs, k)
		av, hasA := find(aPairs, k)
		bv, hasB := find(bPairs, k)
		if val, ok := reconcile(ancv, hasAnc, av, hasA, bv, hasB, fn); ok {
			out = append(out, pair[K, V]{key: k, val: val})
		}
	}
	return out
}

// reconcile implements the three-way merge table: for a single key, decide
// whether it survives in the merged map and with what value.
func reconcile[V any](ancv V, hasAnc bool, av V, hasA bool, bv V, hasB bool, fn ConflictFunc[V]) (V, bool) {
	var zero V
	if !hasAnc {
		switch {
		case hasA && !hasB:
			return av, true
		case !hasA && hasB:
			return bv, true
		case hasA && hasB:
			if valuesEqual(av, bv) {
				return av, true
			}
			return fn(zero, false, av, true, bv, true)
		default:
			return zero, false
		}
	}

	switch {
	case hasA && hasB:
		aChanged := !valuesEqual(av, ancv)
		bChanged := !valuesEqual(bv, ancv)
		switch {
		case !aChanged && !bChanged:
			return ancv, true
		case !aChanged && bChanged:
			return bv, true
		case aChanged && !bChanged:
			return av, true
		default:
			if valuesEqual(av, bv) {
				return av, true
			}
			return fn(ancv, true, av, true, bv, true)
		}
	case hasA && !hasB:
		if valuesEqual(av, ancv) {
			return zero, false
		}
		return fn(ancv, true, av, true, zero, false)
	case !hasA && hasB:
		if valuesEqual(bv, ancv) {
			return zero, false
		}
		return fn(ancv, true, zero, false, bv, true)
	default:
		return zero, false
	}
}
