// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import (
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestMap(n int) *Map[string, int] {
	m := New[string, int](StringHasher{})
	for i := 0; i < n; i++ {
		m = m.Assoc("e"+strconv.Itoa(i), i)
	}
	return m
}

func TestIteratorVisitsEveryEntry(t *testing.T) {
	r := require.New(t)
	m := buildTestMap(500)

	seen := map[string]int{}
	it := m.Iterator()
	for it.Next() {
		seen[it.Key()] = it.Value()
	}
	r.Len(seen, 500)
	for i := 0; i < 500; i++ {
		k := "e" + strconv.Itoa(i)
		r.Equal(i, seen[k])
	}
}

func TestAllMatchesIterator(t *testing.T) {
	r := require.New(t)
	m := buildTestMap(200)

	var fromAll []string
	m.All(func(k string, v int) bool {
		fromAll = append(fromAll, k)
		return true
	})

	var fromIter []string
	it := m.Iterator()
	for it.Next() {
		fromIter = append(fromIter, it.Key())
	}

	sort.Strings(fromAll)
	sort.Strings(fromIter)
	r.Equal(fromAll, fromIter)
}

func TestAllStopsEarly(t *testing.T) {
	r := require.New(t)
	m := buildTestMap(100)

	count := 0
	m.All(func(k string, v int) bool {
		count++
		return count < 5
	})
	r.Equal(5, count)
}

func TestKVReduce(t *testing.T) {
	r := require.New(t)
	m := New[string, int](StringHasher{}).Assoc("a", 1).Assoc("b", 2).Assoc("c", 3)

	sum := KVReduce(m, 0, func(acc int, k string, v int) int {
		return acc + v
	})
	r.Equal(6, sum)
}

func TestSeqKeysValues(t *testing.T) {
	r := require.New(t)
	m := New[string, int](StringHasher{}).Assoc("a", 1).Assoc("b", 2).Assoc("c", 3)

	seq := Seq(m)
	r.Len(seq, 3)

	keys := Keys(m)
	values := Values(m)
	r.Len(keys, 3)
	r.Len(values, 3)

	sort.Strings(keys)
	r.Equal([]string{"a", "b", "c"}, keys)

	sort.Ints(values)
	r.Equal([]int{1, 2, 3}, values)
}

func TestRoundTripThroughIteration(t *testing.T) {
	r := require.New(t)
	m := buildTestMap(300)

	rebuilt := New[string, int](StringHasher{})
	m.All(func(k string, v int) bool {
		rebuilt = rebuilt.Assoc(k, v)
		return true
	})

	r.Equal(m.Count(), rebuilt.Count())
	for i := 0; i < 300; i++ {
		k := "e" + strconv.Itoa(i)
		want, _ := m.Get(k)
		got, ok := rebuilt.Get(k)
		r.True(ok)
		r.Equal(want, got)
	}
}

func TestIteratorEmptyMap(t *testing.T) {
	r := require.New(t)
	m := New[string, int](StringHasher{})
	it := m.Iterator()
	r.False(it.Next())
}
