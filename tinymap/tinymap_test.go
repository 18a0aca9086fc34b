// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package tinymap

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/triegrove/phamt"
	"github.com/triegrove/phamt/internal/testkit"
)

func TestTinyMapBasic(t *testing.T) {
	r := require.New(t)

	m := New[string, int](phamt.StringHasher{})
	var promoted *phamt.Map[string, int]
	m, promoted = m.Assoc("a", 1)
	r.Nil(promoted)
	m, promoted = m.Assoc("b", 2)
	r.Nil(promoted)
	r.Equal(2, m.Count())

	v := m.Lookup("a", -1)
	r.Equal(1, v)
	r.True(m.Contains("b"))
	r.False(m.Contains("z"))

	m = m.Dissoc("a")
	r.Equal(1, m.Count())
	r.False(m.Contains("a"))
}

func TestTinyMapReplaceIsNotPromotion(t *testing.T) {
	r := require.New(t)
	m := New[string, int](phamt.StringHasher{})
	var promoted *phamt.Map[string, int]
	m, promoted = m.Assoc("a", 1)
	r.Nil(promoted)
	m, promoted = m.Assoc("a", 2)
	r.Nil(promoted)
	r.Equal(1, m.Count())
	r.Equal(2, m.Lookup("a", -1))
}

func TestTinyMapPromotesPastThreshold(t *testing.T) {
	r := require.New(t)

	// Each key gets its own low-6-bit position, so the collision signal
	// never fires and only the size bound can trigger promotion.
	hashes := map[string]uint32{"overflow": maxEntries}
	for i := 0; i < maxEntries; i++ {
		hashes["k"+strconv.Itoa(i)] = uint32(i)
	}
	m := New[string, int](testkit.FixedHasher[string]{Hashes: hashes})
	var promoted *phamt.Map[string, int]
	for i := 0; i < maxEntries; i++ {
		m, promoted = m.Assoc("k"+strconv.Itoa(i), i)
		r.Nil(promoted, "should stay tiny through the threshold")
	}
	r.Equal(maxEntries, m.Count())

	m, promoted = m.Assoc("overflow", 999)
	r.NotNil(promoted, "must promote once the threshold is exceeded")
	r.Equal(maxEntries+1, promoted.Count())

	for i := 0; i < maxEntries; i++ {
		v, ok := promoted.Get("k" + strconv.Itoa(i))
		r.True(ok)
		r.Equal(i, v)
	}
	v, ok := promoted.Get("overflow")
	r.True(ok)
	r.Equal(999, v)
}

func TestTinyMapDissocMissingIsNoop(t *testing.T) {
	r := require.New(t)
	m := New[string, int](phamt.StringHasher{})
	m, _ = m.Assoc("a", 1)
	m2 := m.Dissoc("missing")
	r.Same(m, m2)
}
