// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

// Package testkit provides hash oracles the core package's own tests use
// to force specific trie shapes -- a hash collision, two keys agreeing on
// every bit but one -- that would otherwise require searching for lucky
// inputs to a real hash function.
package testkit

// FixedHasher hashes comparable keys through an explicit lookup table
// instead of a real hash function, so a test can assign two distinct keys
// whatever 32-bit hash values it needs to force a particular trie shape.
// Keys not present in Hashes hash to zero.
type FixedHasher[K comparable] struct {
	Hashes map[K]uint32
}

// Hash implements phamt.Hasher.
func (h FixedHasher[K]) Hash(k K) uint32 {
	return h.Hashes[k]
}

// Equal implements phamt.Hasher.
func (FixedHasher[K]) Equal(a, b K) bool {
	return a == b
}
