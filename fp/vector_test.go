// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, p := range []uint32{2, 3, 5, 7} {
		vp := MustValidPrime(p)
		for trial := 0; trial < 20; trial++ {
			n := rng.Intn(200)
			coeffs := make([]uint32, n)
			for i := range coeffs {
				coeffs[i] = uint32(rng.Intn(int(p)))
			}
			v := FpVecFromSlice(vp, coeffs)
			require.Equal(t, n, v.Len())
			got := v.ToSlice()
			if diff := cmp.Diff(coeffs, got); diff != "" {
				t.Fatalf("p=%d round trip mismatch (-want +got):\n%s", p, diff)
			}
		}
	}
}

func TestAddLinearity(t *testing.T) {
	// (a + c*b) + d*b == a + (c+d)*b mod p (spec.md §8 property 2).
	rng := rand.New(rand.NewSource(2))
	for _, p := range []uint32{2, 3, 5} {
		vp := MustValidPrime(p)
		n := 37
		a := randomVec(rng, vp, n)
		b := randomVec(rng, vp, n)
		c := uint32(rng.Intn(int(p)))
		d := uint32(rng.Intn(int(p)))

		lhs := a.Clone()
		lhs.Add(b, c)
		lhs.Add(b, d)

		rhs := a.Clone()
		rhs.Add(b, (c+d)%p)

		require.Equal(t, rhs.ToSlice(), lhs.ToSlice(), "p=%d", p)
	}
}

func TestFirstNonzero(t *testing.T) {
	vp := MustValidPrime(5)
	v := NewFpVec(vp, 10)
	v.SetEntry(4, 3)
	v.SetEntry(7, 1)
	idx, val, ok := v.FirstNonzero()
	require.True(t, ok)
	require.Equal(t, 4, idx)
	require.Equal(t, uint32(3), val)
}

func TestSignRule(t *testing.T) {
	vp := MustValidPrime(2)
	a := FpVecFromSlice(vp, []uint32{0, 1, 0, 1}) // indices {1,3}
	b := FpVecFromSlice(vp, []uint32{1, 0, 0, 0}) // indices {0}
	// both of a's generators (1,3) exceed b's generator (0): 2 inversions, even.
	require.Equal(t, 0, SignRule(a, b))
}

func TestScratchVectorSize(t *testing.T) {
	vp := MustValidPrime(3)
	v := NewFpVec(vp, 5)
	v.SetEntry(0, 2)
	v.SetScratchVectorSize(20)
	require.Equal(t, 20, v.Len())
	want := make([]uint32, 20)
	want[0] = 2 // kept; entries 5..19 are the zero extension
	require.Equal(t, want, v.ToSlice())
}

func randomVec(rng *rand.Rand, p ValidPrime, n int) *FpVec {
	coeffs := make([]uint32, n)
	for i := range coeffs {
		coeffs[i] = uint32(rng.Intn(int(p.Uint32())))
	}
	return FpVecFromSlice(p, coeffs)
}
