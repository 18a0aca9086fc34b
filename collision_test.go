// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/triegrove/phamt/internal/testkit"
)

func TestForcedCollision(t *testing.T) {
	r := require.New(t)

	hasher := testkit.FixedHasher[string]{Hashes: map[string]uint32{
		"k1": 0x12345,
		"k2": 0x12345,
	}}

	m := New[string, string](hasher)
	m = m.Assoc("k1", "x")
	m = m.Assoc("k2", "y")
	r.Equal(2, m.Count())

	// Equal hashes never diverge, so assoc pushes the pair down a chain of
	// single-branch nodes; the CollisionNode sits at the bottom of it.
	var cur node[string, string] = m.root
	for shift := uint(0); ; shift += bitsPerLevel {
		bm, ok := cur.(*bitmapNode[string, string])
		if !ok {
			break
		}
		slot := slotIndex(0x12345, shift)
		r.Equal(slotBranch, slotCode(bm.bitmap, slot))
		cur = bm.cells[cellOffset(bm.bitmap, slot)].child
	}
	_, isColl := cur.(*collisionNode[string, string])
	r.True(isColl, "two keys with equal hashes must land in a CollisionNode")

	v, ok := m.Get("k1")
	r.True(ok)
	r.Equal("x", v)
	v, ok = m.Get("k2")
	r.True(ok)
	r.Equal("y", v)

	m = m.Assoc("k1", "z")
	v, ok = m.Get("k1")
	r.True(ok)
	r.Equal("z", v)
	r.Equal(2, m.Count())

	m = m.Dissoc("k2")
	r.Equal(1, m.Count())
	v, ok = m.Get("k1")
	r.True(ok)
	r.Equal("z", v)

	slot := slotIndex(0x12345, 0)
	r.Equal(slotInline, slotCode(m.root.bitmap, slot), "collision node with one survivor must collapse to an inline entry")
}

func TestDeepChainAgreeingOnLow30Bits(t *testing.T) {
	r := require.New(t)

	// Agree on every bit below bit 30; differ only at bit 30 so they
	// diverge only once every 5-bit slice has been consumed.
	h1 := uint32(0x00000000)
	h2 := uint32(1 << 30)

	hasher := testkit.FixedHasher[string]{Hashes: map[string]uint32{
		"deep1": h1,
		"deep2": h2,
	}}

	m := New[string, string](hasher)
	m = m.Assoc("deep1", "a")
	m = m.Assoc("deep2", "b")
	r.Equal(2, m.Count())

	nodesVisited := 0
	var cur node[string, string] = m.root
	for {
		bm, ok := cur.(*bitmapNode[string, string])
		r.True(ok)
		nodesVisited++
		slot := slotIndex(h1, uint(nodesVisited-1)*bitsPerLevel)
		code := slotCode(bm.bitmap, slot)
		off := cellOffset(bm.bitmap, slot)
		if code == slotInline {
			break
		}
		r.Equal(slotBranch, code)
		cur = bm.cells[off].child
	}
	r.Equal(7, nodesVisited, "two keys sharing every bit but bit 30 must chain down through all 7 levels")

	m = m.Dissoc("deep2")
	r.Equal(1, m.Count())
	v, ok := m.Get("deep1")
	r.True(ok)
	r.Equal("a", v)
	// Fully collapsed: root must hold a single inline entry, not a chain.
	r.Equal(slotInline, slotCode(m.root.bitmap, slotIndex(h1, 0)))
}
