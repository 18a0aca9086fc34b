// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

// Package phamt implements a persistent (immutable) key-value map backed by
// a Hash Array Mapped Trie (HAMT).
//
// Every mutation (Assoc, Dissoc) returns a new Map and leaves the receiver
// untouched, sharing every subtree that the mutation did not touch. A Map
// may be read concurrently from any number of goroutines without
// synchronization. Batches of edits can be staged on a Transient, a
// single-owner mutable facade over the same node layout, and folded back
// into a persistent Map with Persistent.
//
// The trie addresses keys with 5-bit slices of a 32-bit hash, giving a
// fan-out of 32 per level and a maximum depth of 7. Nodes pack occupied
// slots into a single array and a 64-bit bitmap that records, two bits per
// slot, whether the slot is empty, holds a child node, or holds an inline
// key/value pair. Keys whose hashes collide on every bit fall back to a
// CollisionNode, a flat list scanned linearly.
package phamt
