// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import (
	"crypto/sha256"
	"hash"
)

// Map is an immutable key-value map backed by a HAMT. The zero value is
// not usable; construct one with New. Every operation that would mutate
// the map instead returns a new Map, leaving the receiver and every Map
// derived from it valid and readable from any goroutine without locking.
type Map[K any, V any] struct {
	root   *bitmapNode[K, V]
	hasher Hasher[K]
}

// New returns an empty Map that hashes and compares keys with hasher.
func New[K any, V any](hasher Hasher[K]) *Map[K, V] {
	return &Map[K, V]{root: &bitmapNode[K, V]{}, hasher: hasher}
}

// Lookup returns the value stored under key, or notFound if the key is
// absent.
func (m *Map[K, V]) Lookup(key K, notFound V) V {
	v, ok := lookup(m.root, m.hasher, key, m.hasher.Hash(key))
	if !ok {
		return notFound
	}
	return v
}

// Get is Lookup with the zero value of V as the not-found sentinel, plus
// an explicit ok flag for callers who need to distinguish a stored zero
// value from absence.
func (m *Map[K, V]) Get(key K) (V, bool) {
	return lookup(m.root, m.hasher, key, m.hasher.Hash(key))
}

// Contains reports whether key is present in m.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Count returns the number of key/value pairs in m.
func (m *Map[K, V]) Count() int {
	return m.root.cnt
}

// Empty returns a new, empty Map that shares this one's hasher.
func (m *Map[K, V]) Empty() *Map[K, V] {
	return New[K, V](m.hasher)
}

// Assoc returns a new Map with key bound to value, replacing any existing
// binding. If key already maps to a value that CBOR-encodes identically to
// value, m itself is returned unchanged.
func (m *Map[K, V]) Assoc(key K, value V) *Map[K, V] {
	ed := persistentEditor[K, V]{}
	h := m.hasher.Hash(key)
	newRoot, _ := assocBitmap(ed, m.root, m.hasher, key, value, h, 0)
	if newRoot == m.root {
		return m
	}
	return &Map[K, V]{root: newRoot.(*bitmapNode[K, V]), hasher: m.hasher}
}

// AssocStrict is Assoc, except it returns a KeyExistsError instead of
// mutating the binding when key is already present.
func (m *Map[K, V]) AssocStrict(key K, value V) (*Map[K, V], error) {
	if m.Contains(key) {
		return nil, KeyExistsError[K]{Key: key}
	}
	return m.Assoc(key, value), nil
}

// Dissoc returns a new Map with key removed. If key was absent, m itself
// is returned unchanged.
func (m *Map[K, V]) Dissoc(key K) *Map[K, V] {
	ed := persistentEditor[K, V]{}
	h := m.hasher.Hash(key)
	newRoot, removed, collapse := dissocBitmap(ed, m.root, m.hasher, key, h, 0)
	if !removed {
		return m
	}
	switch {
	case collapse != nil:
		root := ed.newBitmap(uint64(slotInline)<<(2*slotIndex(m.hasher.Hash(collapse.key), 0)),
			[]cell[K, V]{{kind: cellKey, key: collapse.key}, {kind: cellValue, val: collapse.val}}, 1)
		return &Map[K, V]{root: root, hasher: m.hasher}
	case newRoot == nil:
		return m.Empty()
	default:
		return &Map[K, V]{root: newRoot.(*bitmapNode[K, V]), hasher: m.hasher}
	}
}

// AsTransient returns a Transient facade seeded with m's current contents,
// ready to stage a batch of Assoc/Dissoc calls cheaply before publishing a
// new persistent Map.
func (m *Map[K, V]) AsTransient() *Transient[K, V] {
	return newTransient(m)
}

// Hash returns a content hash of m: two maps with the same entries, in any
// insertion order, hash identically; any difference in entries changes the
// hash. Hashing re-derives deterministically from the trie's entries
// rather than from its current shape, so it survives round trips through
// MarshalCBOR/UnmarshalCBOR and through transient batches. Entries whose
// keys share a full 32-bit hash are digested in the order their
// CollisionNode stores them, which follows insertion order, so for such
// keys the hash can differ between insertion orders.
func (m *Map[K, V]) Hash() ([]byte, error) {
	h := sha256.New()
	if err := hashNode[K, V](m.root, h); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func hashNode[K any, V any](n node[K, V], h hash.Hash) error {
	switch t := n.(type) {
	case nil:
		return nil
	case *collisionNode[K, V]:
		for _, p := range t.pairs {
			if err := hashEntry(p.key, p.val, h); err != nil {
				return err
			}
		}
		return nil
	case *bitmapNode[K, V]:
		for slot := uint32(0); slot < 32; slot++ {
			switch slotCode(t.bitmap, slot) {
			case slotEmpty:
				continue
			case slotInline:
				off := cellOffset(t.bitmap, slot)
				if err := hashEntry(t.cells[off].key, t.cells[off+1].val, h); err != nil {
					return err
				}
			default:
				off := cellOffset(t.bitmap, slot)
				if err := hashNode(t.cells[off].child, h); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return nil
}

func hashEntry[K any, V any](k K, v V, h hash.Hash) error {
	kb, err := cborMarshal(k)
	if err != nil {
		return err
	}
	vb, err := cborMarshal(v)
	if err != nil {
		return err
	}
	h.Write(kb)
	h.Write(vb)
	return nil
}

// MarshalCBOR encodes m's trie structure, preserving the exact node shape
// (which subtrees are inline versus branched) so that a round trip through
// UnmarshalCBOR is byte-for-byte indistinguishable from the original for
// every operation that follows.
func (m *Map[K, V]) MarshalCBOR() ([]byte, error) {
	return cborMarshal(toWire[K, V](m.root))
}

// UnmarshalCBOR decodes a trie previously produced by MarshalCBOR.
func (m *Map[K, V]) UnmarshalCBOR(data []byte) error {
	var w wireNode[K, V]
	if err := cborUnmarshal(data, &w); err != nil {
		return err
	}
	n := fromWire[K, V](&w)
	root, ok := n.(*bitmapNode[K, V])
	if !ok || root == nil {
		root = &bitmapNode[K, V]{}
	}
	m.root = root
	return nil
}
