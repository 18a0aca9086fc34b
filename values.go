// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import "bytes"

// valuesEqual reports whether a and b are indistinguishable values. V is an
// unconstrained type parameter, so the trie cannot rely on the == operator
// (V may be a slice, a map, or any other incomparable type). Instead,
// mirroring how the reference trie settles this exact question for an
// opaque generic value, a and b are canonically CBOR-encoded and their
// encodings are compared byte for byte.
//
// This is also what backs assoc's identity short-circuit: replacing a key
// with a value that already canonically encodes the same way returns the
// original node unchanged instead of allocating a copy.
func valuesEqual[V any](a, b V) bool {
	ea, errA := cborMarshal(a)
	eb, errB := cborMarshal(b)
	if errA != nil || errB != nil {
		// A value that cannot be encoded is never considered equal to
		// anything, including itself; assoc simply always replaces it.
		return false
	}
	return bytes.Equal(ea, eb)
}
