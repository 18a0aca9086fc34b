// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import (
	"github.com/cespare/xxhash/v2"
)

// Hasher is the ambient oracle a Map needs to address and compare keys. The
// core trie treats both methods as opaque: it never inspects K directly.
//
// Two keys for which Equal reports true must Hash identically, or lookups
// will silently fail once those keys collide into the same CollisionNode.
type Hasher[K any] interface {
	// Hash returns a 32-bit digest of k. It must be deterministic.
	Hash(k K) uint32
	// Equal reports whether a and b are the same key.
	Equal(a, b K) bool
}

// fold32 xor-folds a 64-bit digest down to 32 bits, the way the xxhash
// authors recommend combining a wide hash into a narrower index space
// (high and low halves contribute to every output bit rather than being
// truncated away).
func fold32(h uint64) uint32 {
	return uint32(h) ^ uint32(h>>32)
}

// BytesHasher hashes []byte keys with xxhash and compares them with
// bytes.Equal semantics.
type BytesHasher struct{}

// Hash implements Hasher.
func (BytesHasher) Hash(k []byte) uint32 {
	return fold32(xxhash.Sum64(k))
}

// Equal implements Hasher.
func (BytesHasher) Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// StringHasher hashes string keys with xxhash.
type StringHasher struct{}

// Hash implements Hasher.
func (StringHasher) Hash(k string) uint32 {
	return fold32(xxhash.Sum64String(k))
}

// Equal implements Hasher.
func (StringHasher) Equal(a, b string) bool {
	return a == b
}

// Uint64Hasher hashes uint64 keys with xxhash over their 8-byte big-endian
// encoding.
type Uint64Hasher struct{}

// Hash implements Hasher.
func (Uint64Hasher) Hash(k uint64) uint32 {
	var buf [8]byte
	buf[0] = byte(k >> 56)
	buf[1] = byte(k >> 48)
	buf[2] = byte(k >> 40)
	buf[3] = byte(k >> 32)
	buf[4] = byte(k >> 24)
	buf[5] = byte(k >> 16)
	buf[6] = byte(k >> 8)
	buf[7] = byte(k)
	return fold32(xxhash.Sum64(buf[:]))
}

// Equal implements Hasher.
func (Uint64Hasher) Equal(a, b uint64) bool {
	return a == b
}
