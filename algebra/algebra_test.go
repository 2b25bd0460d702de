// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package algebra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpectralSequences/sseq-sub004/fp"
)

func TestAdemDimensions(t *testing.T) {
	p := fp.MustValidPrime(2)
	a, err := NewAdemAlgebra(p)
	require.NoError(t, err)
	a.ComputeBasis(6)
	// degree 0: {1}; degree 1: {Sq^1}; degree 2: {Sq^2};
	// degree 3: {Sq^3, Sq^2Sq^1}; degree 4: {Sq^4, Sq^3Sq^1}.
	require.Equal(t, 1, a.Dimension(0))
	require.Equal(t, 1, a.Dimension(1))
	require.Equal(t, 1, a.Dimension(2))
	require.Equal(t, 2, a.Dimension(3))
	require.Equal(t, 2, a.Dimension(4))
}

func TestAdemOddPrimeUnsupported(t *testing.T) {
	p := fp.MustValidPrime(3)
	_, err := NewAdemAlgebra(p)
	require.ErrorIs(t, err, ErrUnsupportedPrime)
}

func TestAdemSq1Sq1Vanishes(t *testing.T) {
	// Sq^1 Sq^1 = 0, the simplest nontrivial Adem relation.
	p := fp.MustValidPrime(2)
	a, err := NewAdemAlgebra(p)
	require.NoError(t, err)
	a.ComputeBasis(2)
	out := fp.NewFpVec(p, a.Dimension(2))
	a.MultiplyBasisElements(out, 1, 1, 0, 1, 0)
	require.True(t, out.IsZero())
}

func TestAdemSq2Sq2IsSq3Sq1(t *testing.T) {
	// Sq^2 Sq^2 = Sq^3 Sq^1 (spec.md §8 property 5 scenario).
	p := fp.MustValidPrime(2)
	a, err := NewAdemAlgebra(p)
	require.NoError(t, err)
	a.ComputeBasis(4)
	out := fp.NewFpVec(p, a.Dimension(4))
	a.MultiplyBasisElements(out, 1, 2, 0, 2, 0)

	want := fp.NewFpVec(p, a.Dimension(4))
	var idx int
	for i, seq := range a.basis[4] {
		if len(seq) == 2 && seq[0] == 3 && seq[1] == 1 {
			idx = i
		}
	}
	want.SetEntry(idx, 1)
	require.Equal(t, want.ToSlice(), out.ToSlice())
}

func TestMilnorSq1Sq1Vanishes(t *testing.T) {
	p := fp.MustValidPrime(2)
	m := NewMilnorAlgebra(p, UnrestrictedProfile)
	m.ComputeBasis(2)
	out := fp.NewFpVec(p, m.Dimension(2))
	// Sq(1) is the sole degree-1 basis element.
	m.MultiplyBasisElements(out, 1, 1, 0, 1, 0)
	require.True(t, out.IsZero())
}

func TestMilnorDegreePreservesRank(t *testing.T) {
	// The Milnor basis has the same dimension, degree by degree, as the
	// Adem basis (both bases of the same graded algebra).
	p := fp.MustValidPrime(2)
	a, err := NewAdemAlgebra(p)
	require.NoError(t, err)
	m := NewMilnorAlgebra(p, UnrestrictedProfile)
	for t := 0; t <= 8; t++ {
		require.Equal(t, a.Dimension(t), m.Dimension(t), "degree %d", t)
	}
}

func TestSteenrodEvaluatorRoundTrip(t *testing.T) {
	// Converting an admissible monomial to the Milnor basis and back
	// reproduces it exactly, for every basis element through degree 8
	// (spec.md §8 property 5 "Steenrod product consistency").
	p := fp.MustValidPrime(2)
	ev := NewSteenrodEvaluator(p, UnrestrictedProfile)
	ev.adem.ComputeBasis(8)
	for deg := 0; deg <= 8; deg++ {
		dim := ev.adem.Dimension(deg)
		for i := 0; i < dim; i++ {
			v := fp.NewFpVec(p, dim)
			v.SetEntry(i, 1)
			milnorVec, err := ev.ToMilnor(deg, v)
			require.NoError(t, err)
			back, err := ev.ToAdem(deg, milnorVec)
			require.NoError(t, err)
			require.Equal(t, v.ToSlice(), back.ToSlice(), "degree %d index %d", deg, i)
		}
	}
}

func TestSteenrodEvaluatorAdemMilnorAgreeOnSq2Sq2(t *testing.T) {
	// Sq^2 . Sq^2 = Sq^3 Sq^1 in the Adem basis, and translated to the
	// Milnor basis this is P(0,1) + P(3) (spec.md §8 property S.3).
	p := fp.MustValidPrime(2)
	ev := NewSteenrodEvaluator(p, UnrestrictedProfile)
	ev.adem.ComputeBasis(4)

	ademOut := fp.NewFpVec(p, ev.adem.Dimension(4))
	ev.adem.MultiplyBasisElements(ademOut, 1, 2, 0, 2, 0)
	gotMilnor, err := ev.ToMilnor(4, ademOut)
	require.NoError(t, err)

	_, p01 := ev.SingleMilnorElement(MilnorElt{P: []int{0, 1}})
	_, p3 := ev.SingleMilnorElement(MilnorElt{P: []int{3}})
	want := p01.Clone()
	want.Add(p3, 1)

	require.Equal(t, want.ToSlice(), gotMilnor.ToSlice())
}

func TestSteenrodEvaluatorOddPrimeUnsupported(t *testing.T) {
	p := fp.MustValidPrime(3)
	ev := NewSteenrodEvaluator(p, UnrestrictedProfile)
	require.Nil(t, ev.Adem())
	_, err := ev.ToMilnor(1, fp.NewFpVec(p, 1))
	require.ErrorIs(t, err, ErrUnsupportedPrime)
}

func TestMilnorGenerators(t *testing.T) {
	p := fp.MustValidPrime(2)
	m := NewMilnorAlgebra(p, UnrestrictedProfile)
	m.ComputeBasis(4)
	require.Len(t, m.Generators(1), 1) // Sq(1)
	require.Len(t, m.Generators(3), 1) // Sq(0,1)
	require.Len(t, m.Generators(4), 0) // Sq(4) decomposes
}

func TestAdemDecomposeNonGenerator(t *testing.T) {
	p := fp.MustValidPrime(2)
	a, err := NewAdemAlgebra(p)
	require.NoError(t, err)
	a.ComputeBasis(3)
	// find Sq^3 (length-1, not a power of 2).
	idx := a.index[3][admissibleKey([]int{3})]
	decomp := a.DecomposeBasisElement(3, idx)
	require.NotEmpty(t, decomp)
	// reconstruct Sq^3 from the decomposition and check it matches.
	out := fp.NewFpVec(p, a.Dimension(3))
	for _, d := range decomp {
		a.MultiplyBasisElements(out, d.Coeff, d.DegA, d.IdxA, d.DegB, d.IdxB)
	}
	want := fp.NewFpVec(p, a.Dimension(3))
	want.SetEntry(idx, 1)
	require.Equal(t, want.ToSlice(), out.ToSlice())
}
