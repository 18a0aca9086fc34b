// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

// dissocNode removes key from the subtree n. It returns:
//   - the new subtree (nil if nothing is left in it),
//   - whether an entry was actually removed,
//   - a non-nil collapse pair when the subtree's count just dropped to
//     one: the caller must not keep n's replacement as a branch, but
//     splice the surviving pair in as an inline entry of its own slot,
//     restoring the invariant that no subtree holds exactly one entry.
//
// If nothing was removed, the returned node is the same pointer as n.
func dissocNode[K any, V any](ed editor[K, V], n node[K, V], hs Hasher[K], key K, h uint32, shift uint) (node[K, V], bool, *pair[K, V]) {
	switch t := n.(type) {
	case *bitmapNode[K, V]:
		return dissocBitmap(ed, t, hs, key, h, shift)
	case *collisionNode[K, V]:
		return dissocCollision(ed, t, hs, key)
	default:
		return nil, false, nil
	}
}

func dissocBitmap[K any, V any](ed editor[K, V], n *bitmapNode[K, V], hs Hasher[K], key K, h uint32, shift uint) (node[K, V], bool, *pair[K, V]) {
	slot := slotIndex(h, shift)
	code := slotCode(n.bitmap, slot)
	if code == slotEmpty {
		return n, false, nil
	}
	off := cellOffset(n.bitmap, slot)

	var nn *bitmapNode[K, V]
	if code == slotInline {
		if !hs.Equal(n.cells[off].key, key) {
			return n, false, nil
		}
		nn = ed.editBitmap(n)
		nn.cells = removeCells(nn.cells, off, 2)
		nn.bitmap = setSlotCode(nn.bitmap, slot, slotEmpty)
		nn.cnt--
	} else {
		child := n.cells[off].child
		newChild, removed, collapse := dissocNode(ed, child, hs, key, h, shift+bitsPerLevel)
		if !removed {
			return n, false, nil
		}
		nn = ed.editBitmap(n)
		nn.cnt--
		switch {
		case collapse != nil:
			nn.cells = replaceBranchWithInline(nn.cells, off, collapse.key, collapse.val)
			nn.bitmap = setSlotCode(nn.bitmap, slot, slotInline)
		case newChild == nil:
			nn.cells = removeCells(nn.cells, off, 1)
			nn.bitmap = setSlotCode(nn.bitmap, slot, slotEmpty)
		default:
			nn.cells[off].child = newChild
		}
	}

	switch nn.cnt {
	case 0:
		return nil, true, nil
	case 1:
		p := nn.solePair()
		return nil, true, &p
	default:
		return nn, true, nil
	}
}

func dissocCollision[K any, V any](ed editor[K, V], n *collisionNode[K, V], hs Hasher[K], key K) (node[K, V], bool, *pair[K, V]) {
	idx := -1
	for i, p := range n.pairs {
		if hs.Equal(p.key, key) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return n, false, nil
	}
	if len(n.pairs) == 2 {
		survivor := n.pairs[1-idx]
		return nil, true, &survivor
	}
	nn := ed.editCollision(n)
	nn.pairs = removePairs(nn.pairs, idx)
	return nn, true, nil
}

func removePairs[K any, V any](pairs []pair[K, V], idx int) []pair[K, V] {
	copy(pairs[idx:], pairs[idx+1:])
	var zero pair[K, V]
	pairs[len(pairs)-1] = zero
	return pairs[:len(pairs)-1]
}
