// SPDX-FileCopyrightText: 2024 - 2025 Mass Labs
//
// SPDX-License-Identifier: MIT

package phamt

import (
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// cborDecMode and cborEncMode mirror the reference package's canonical,
// deterministic CBOR options: canonical encoding so two structurally equal
// values always encode to the same bytes (valuesEqual and Hash depend on
// this), RFC3339 timestamps, and big.Int shortened to a machine integer
// where it fits.
var (
	cborEncMode = mustEncMode()
	cborDecMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.BigIntConvert = cbor.BigIntConvertShortest
	opts.Time = cbor.TimeRFC3339
	opts.TimeTag = cbor.EncTagRequired
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{BinaryUnmarshaler: cbor.BinaryUnmarshalerByteString}
	opts.TimeTag = cbor.DecTagRequired
	mode, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}

func cborMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := cborEncMode.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cborUnmarshal(data []byte, v any) error {
	dec := cborDecMode.NewDecoder(bytes.NewReader(data))
	return dec.Decode(v)
}

func cborEncodeTo(w io.Writer, v any) error {
	return cborEncMode.NewEncoder(w).Encode(v)
}

// wireNode is the CBOR wire shape of a bitmapNode or collisionNode: a
// five-element array whose Kind field tells the two apart, since CBOR has
// no notion of our sum type otherwise.
type wireNode[K any, V any] struct {
	_        struct{} `cbor:",toarray"`
	Kind     uint8
	Bitmap   uint64
	Hash     uint32
	Branches []wireCell[K, V]
	Pairs    []wirePair[K, V]
}

const (
	wireKindBitmap    uint8 = 0
	wireKindCollision uint8 = 1
)

type wireCell[K any, V any] struct {
	_      struct{} `cbor:",toarray"`
	Branch *wireNode[K, V]
	Key    K
	Val    V
	IsLeaf bool
}

type wirePair[K any, V any] struct {
	_   struct{} `cbor:",toarray"`
	Key K
	Val V
}

func toWire[K any, V any](n node[K, V]) *wireNode[K, V] {
	switch t := n.(type) {
	case nil:
		return &wireNode[K, V]{Kind: wireKindBitmap}
	case *collisionNode[K, V]:
		pairs := make([]wirePair[K, V], len(t.pairs))
		for i, p := range t.pairs {
			pairs[i] = wirePair[K, V]{Key: p.key, Val: p.val}
		}
		return &wireNode[K, V]{Kind: wireKindCollision, Hash: t.hash, Pairs: pairs}
	case *bitmapNode[K, V]:
		branches := make([]wireCell[K, V], 0, len(t.cells))
		for i := 0; i < len(t.cells); {
			c := t.cells[i]
			if c.kind == cellBranch {
				branches = append(branches, wireCell[K, V]{Branch: toWire(c.child)})
				i++
			} else {
				branches = append(branches, wireCell[K, V]{Key: c.key, Val: t.cells[i+1].val, IsLeaf: true})
				i += 2
			}
		}
		return &wireNode[K, V]{Kind: wireKindBitmap, Bitmap: t.bitmap, Branches: branches}
	default:
		return &wireNode[K, V]{Kind: wireKindBitmap}
	}
}

func fromWire[K any, V any](w *wireNode[K, V]) node[K, V] {
	if w == nil {
		return nil
	}
	if w.Kind == wireKindCollision {
		pairs := make([]pair[K, V], len(w.Pairs))
		for i, p := range w.Pairs {
			pairs[i] = pair[K, V]{key: p.Key, val: p.Val}
		}
		return &collisionNode[K, V]{hash: w.Hash, pairs: pairs}
	}
	if w.Bitmap == 0 && len(w.Branches) == 0 {
		return &bitmapNode[K, V]{}
	}
	cells := make([]cell[K, V], 0, len(w.Branches)+1)
	cnt := 0
	for _, b := range w.Branches {
		if b.IsLeaf {
			cells = append(cells, cell[K, V]{kind: cellKey, key: b.Key}, cell[K, V]{kind: cellValue, val: b.Val})
			cnt++
		} else {
			child := fromWire(b.Branch)
			cells = append(cells, cell[K, V]{kind: cellBranch, child: child})
			if child != nil {
				cnt += child.count()
			}
		}
	}
	return &bitmapNode[K, V]{bitmap: w.Bitmap, cells: cells, cnt: cnt}
}
