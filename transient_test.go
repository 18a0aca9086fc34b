// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransientRoundTrip(t *testing.T) {
	r := require.New(t)

	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = "t" + strconv.Itoa(i)
	}

	tr := New[string, int](StringHasher{}).AsTransient()
	var err error
	for i, k := range keys {
		tr, err = tr.Assoc(k, i)
		r.NoError(err)
	}
	viaTransient, err := tr.Persistent()
	r.NoError(err)

	viaPersistent := New[string, int](StringHasher{})
	for i, k := range keys {
		viaPersistent = viaPersistent.Assoc(k, i)
	}

	r.Equal(viaPersistent.Count(), viaTransient.Count())
	for i, k := range keys {
		want, ok := viaPersistent.Get(k)
		r.True(ok)
		got, ok := viaTransient.Get(k)
		r.True(ok)
		r.Equal(want, got)
		_ = i
	}
}

func TestTransientFailsAfterPublish(t *testing.T) {
	r := require.New(t)

	tr := New[string, int](StringHasher{}).AsTransient()
	tr, err := tr.Assoc("a", 1)
	r.NoError(err)

	_, err = tr.Persistent()
	r.NoError(err)

	_, err = tr.Assoc("b", 2)
	r.ErrorIs(err, TransientPublishedError{})

	_, err = tr.Dissoc("a")
	r.ErrorIs(err, TransientPublishedError{})

	_, err = tr.Lookup("a", 0)
	r.ErrorIs(err, TransientPublishedError{})

	_, err = tr.Count()
	r.ErrorIs(err, TransientPublishedError{})

	_, err = tr.Persistent()
	r.ErrorIs(err, TransientPublishedError{})
}

func TestTransientDissoc(t *testing.T) {
	r := require.New(t)

	base := New[string, int](StringHasher{}).Assoc("a", 1).Assoc("b", 2).Assoc("c", 3)
	tr := base.AsTransient()
	tr, err := tr.Dissoc("b")
	r.NoError(err)

	published, err := tr.Persistent()
	r.NoError(err)
	r.Equal(2, published.Count())
	_, ok := published.Get("b")
	r.False(ok)

	// Original persistent map is untouched.
	r.Equal(3, base.Count())
	_, ok = base.Get("b")
	r.True(ok)
}

func TestTransientLookupSeesStagedWrites(t *testing.T) {
	r := require.New(t)

	tr := New[string, int](StringHasher{}).AsTransient()
	tr, err := tr.Assoc("k", 1)
	r.NoError(err)

	v, err := tr.Lookup("k", -1)
	r.NoError(err)
	r.Equal(1, v)

	cnt, err := tr.Count()
	r.NoError(err)
	r.Equal(1, cnt)
}
