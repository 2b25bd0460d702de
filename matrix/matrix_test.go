// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpectralSequences/sseq-sub004/fp"
)

func TestRowReduceIdempotent(t *testing.T) {
	// reduce(reduce(M)) == reduce(M) (spec.md §8 property 3).
	p := fp.MustValidPrime(5)
	m := FromRows(p, 3, []*fp.FpVec{
		fp.FpVecFromSlice(p, []uint32{1, 2, 3}),
		fp.FpVecFromSlice(p, []uint32{2, 4, 1}),
		fp.FpVecFromSlice(p, []uint32{0, 1, 1}),
	})
	m.RowReduce()
	first := m.ToSlice()
	m.RowReduce()
	require.Equal(t, first, m.ToSlice())
}

func TestQuasiInverseIdentity(t *testing.T) {
	// M * Q * v == v for all v in image(M) (spec.md §8 property 4).
	p := fp.MustValidPrime(3)
	f := FromRows(p, 2, []*fp.FpVec{
		fp.FpVecFromSlice(p, []uint32{1, 0}),
		fp.FpVecFromSlice(p, []uint32{1, 1}),
	})
	aug := NewAugmentedMatrix(f)
	aug.RowReduce()
	q := aug.QuasiInverse()

	image := aug.Image()
	require.Equal(t, 2, image.Dimension())

	for _, w := range image.Basis() {
		src := q.Apply(w)
		// f(src) should reconstruct w.
		got := fp.NewFpVec(p, 2)
		for _, e := range src.IterNonzero() {
			got.Add(f.RowReadOnly(e.Index), e.Value)
		}
		require.Equal(t, w.ToSlice(), got.ToSlice())
	}
}

func TestSubspaceContains(t *testing.T) {
	p := fp.MustValidPrime(2)
	s := NewSubspace(p, 3)
	s.AddVector(fp.FpVecFromSlice(p, []uint32{1, 0, 0}))
	s.AddVector(fp.FpVecFromSlice(p, []uint32{0, 1, 0}))
	require.True(t, s.Contains(fp.FpVecFromSlice(p, []uint32{1, 1, 0})))
	require.False(t, s.Contains(fp.FpVecFromSlice(p, []uint32{0, 0, 1})))
	require.Equal(t, 2, s.Dimension())
}
