// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package module

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
)

func TestFreeModuleDimensionMatchesAlgebra(t *testing.T) {
	// A free module on a single generator in degree 0 has, in every
	// degree t, the same dimension as the algebra itself.
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	alg.ComputeBasis(6)

	fm := NewFreeModule(alg, "F", 0)
	fm.AddGenerators(0, []string{"x0"})
	fm.ComputeBasis(6)

	for deg := 0; deg <= 6; deg++ {
		require.Equal(t, alg.Dimension(deg), fm.Dimension(deg), "degree %d", deg)
	}
}

func TestFreeModuleHomomorphismKernelAgainstZeroSphere(t *testing.T) {
	// The augmentation P0 -> S0 (S0 the sphere: dimension 1 in degree 0,
	// 0 elsewhere) has, in every positive degree, kernel equal to the
	// whole of P0's degree, since the target vanishes there.
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	alg.ComputeBasis(6)

	p0 := NewFreeModule(alg, "P0", 0)
	p0.AddGenerators(0, []string{"x0"})
	p0.ComputeBasis(6)

	sphere := NewFDModule(alg, "S0", 0)
	sphere.AddGenerators(0, []string{"1"})

	eps := NewFreeModuleHomomorphism(p0, sphere, 0)
	eps.SetGeneratorImages(0, []*fp.FpVec{fp.FpVecFromSlice(p, []uint32{1})})

	for deg := 1; deg <= 4; deg++ {
		require.Equal(t, p0.Dimension(deg), eps.Kernel(deg).Dimension(), "degree %d", deg)
	}
	// In degree 0 the map is onto, so the kernel is trivial.
	require.Equal(t, 0, eps.Kernel(0).Dimension())
}

func TestFDModuleValidateTrivialSphere(t *testing.T) {
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	alg.ComputeBasis(2)
	sphere := NewFDModule(alg, "S0", 0)
	sphere.AddGenerators(0, []string{"1"})
	require.NoError(t, sphere.Validate(4))
}

func TestFPModuleCyclicWithSq1Relation(t *testing.T) {
	// F_2[x0] / (Sq^1 x0): generator x0 in degree 0, one relation killing
	// Sq^1 x0 in degree 1.
	p := fp.MustValidPrime(2)
	alg := algebra.NewMilnorAlgebra(p, algebra.UnrestrictedProfile)
	alg.ComputeBasis(3)

	fpm := NewFPModule(alg, "C", 0)
	fpm.AddGenerators(0, []string{"x0"})
	fpm.ComputeBasis(0)
	require.Equal(t, 1, fpm.Dimension(0))

	fpm.Generators().ComputeBasis(1)
	require.Equal(t, 1, fpm.Generators().Dimension(1)) // Sq(1)*x0

	fpm.AddRelations(1, []*fp.FpVec{fp.FpVecFromSlice(p, []uint32{1})})
	fpm.ComputeBasis(1)
	require.Equal(t, 0, fpm.Dimension(1))
}
