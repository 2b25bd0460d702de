// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolver

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/module"
	"github.com/SpectralSequences/sseq-sub004/wire"
)

func nopLogger() zerolog.Logger { return zerolog.New(io.Discard) }

// unitModule is F_p concentrated in degree 0, the module every Adams
// spectral sequence scenario in spec.md §8 resolves first.
func unitModule(alg algebra.Algebra) module.Module {
	m := module.NewFDModule(alg, "F_2", 0)
	m.AddGenerators(0, []string{"1"})
	return m
}

// TestStepResolutionP0IsJustTheAugmentation checks that resolving F_2
// produces P_0 with exactly one generator (in degree 0): minimality means
// P_0 never needs more than one generator to surject onto a module that
// is itself one-dimensional in its lowest degree.
func TestStepResolutionP0IsJustTheAugmentation(t *testing.T) {
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	r := NewResolution(p, unitModule(alg), 0, nopLogger())

	for t2 := 0; t2 <= 3; t2++ {
		require.NoError(t, r.StepResolution(0, t2))
	}
	p0 := r.Module(0)
	require.Equal(t, 1, p0.GeneratorsInDegree(0))
	for t2 := 1; t2 <= 3; t2++ {
		require.Equal(t, 0, p0.GeneratorsInDegree(t2), "P_0 must not gain generators past degree 0")
	}
}

// TestStepResolutionP1DegreeOne checks Ext^{1,1}(F_2, F_2) = F_2: P_1
// gains exactly one generator in internal degree 1, dual to Sq^1/h_0.
func TestStepResolutionP1DegreeOne(t *testing.T) {
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	r := NewResolution(p, unitModule(alg), 0, nopLogger())

	for t2 := 0; t2 <= 1; t2++ {
		require.NoError(t, r.StepResolution(0, t2))
		require.NoError(t, r.StepResolution(1, t2))
	}
	p1 := r.Module(1)
	require.Equal(t, 0, p1.GeneratorsInDegree(0))
	require.Equal(t, 1, p1.GeneratorsInDegree(1))
}

// TestResolveBoxMatchesStepwise checks that sweeping a Box frontier via
// Resolve produces the same generator counts as calling StepResolution by
// hand in the same order.
func TestResolveBoxMatchesStepwise(t *testing.T) {
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)

	r1 := NewResolution(p, unitModule(alg), 0, nopLogger())
	require.NoError(t, r1.Resolve(Box{S: 2, T: 3, MinDegree: 0}))

	r2 := NewResolution(p, unitModule(alg), 0, nopLogger())
	for t2 := 0; t2 <= 3; t2++ {
		for s := 0; s <= 2; s++ {
			require.NoError(t, r2.StepResolution(s, t2))
		}
	}

	for s := 0; s <= 2; s++ {
		for t2 := 0; t2 <= 3; t2++ {
			require.Equal(t, r2.Module(s).GeneratorsInDegree(t2), r1.Module(s).GeneratorsInDegree(t2), "s=%d t=%d", s, t2)
		}
	}
}

// TestResolveWithSavesResumes checks that a resolution interrupted after
// degree t=1 and resumed from a save directory reaches the same generator
// counts through t=3 as an uninterrupted run, without recomputing t<=1.
func TestResolveWithSavesResumes(t *testing.T) {
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	dir := t.TempDir()
	saveDir := wire.SaveDir{Read: dir, Write: dir}

	first := NewResolution(p, unitModule(alg), 0, nopLogger())
	require.NoError(t, first.ResolveWithSaves(Box{S: 2, T: 1, MinDegree: 0}, saveDir))

	// Confirm a save file actually landed on disk for (0,0).
	_, err := os.Stat(filepath.Join(dir, string(wire.KindDifferential), "0_0.bin"))
	require.NoError(t, err)

	resumed := NewResolution(p, unitModule(alg), 0, nopLogger())
	require.NoError(t, resumed.ResolveWithSaves(Box{S: 2, T: 3, MinDegree: 0}, saveDir))

	full := NewResolution(p, unitModule(alg), 0, nopLogger())
	require.NoError(t, full.Resolve(Box{S: 2, T: 3, MinDegree: 0}))

	for s := 0; s <= 2; s++ {
		for t2 := 0; t2 <= 3; t2++ {
			require.Equal(t, full.Module(s).GeneratorsInDegree(t2), resumed.Module(s).GeneratorsInDegree(t2), "s=%d t=%d", s, t2)
		}
	}
}

func TestBoxAndStemFrontiers(t *testing.T) {
	b := Box{S: 2, T: 5, MinDegree: 0}
	require.True(t, b.Contains(2, 5))
	require.False(t, b.Contains(3, 5))
	require.False(t, b.Contains(2, 6))
	require.Equal(t, 2, b.MaxS())
	require.Equal(t, 5, b.MaxT())

	s := Stem{S: 2, N: 3}
	require.True(t, s.Contains(1, 3))
	require.False(t, s.Contains(1, 5))
	require.False(t, s.Contains(3, 4))
	require.Equal(t, 2, s.MaxS())
	require.Equal(t, 5, s.MaxT())
}

func TestUnitResolutionIsFlagged(t *testing.T) {
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	u := NewUnitResolution(p, alg, nopLogger())
	require.True(t, u.IsUnit())

	other := NewResolution(p, unitModule(alg), 0, nopLogger())
	require.False(t, other.IsUnit())
}
