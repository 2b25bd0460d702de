// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package algebra implements graded F_p-algebra bases for the mod-p
// Steenrod algebra (spec.md §4.3): the Adem basis of admissible
// monomials and the Milnor basis of Q-part/P-part products, plus a
// SteenrodEvaluator that converts between them.
package algebra

import "github.com/SpectralSequences/sseq-sub004/fp"

// Decomposition is one term c·a·b of a basis element's expression as a sum
// of products of strictly smaller-degree basis elements (spec.md §3
// "decompose_basis_element").
type Decomposition struct {
	Coeff     uint32
	DegA, IdxA int
	DegB, IdxB int
}

// Algebra is the contract shared by the Adem and Milnor bases (spec.md §3
// "Algebra (Steenrod)"). Implementations are safe for concurrent use once
// ComputeBasis has been called for the degrees in question (spec.md §5).
type Algebra interface {
	Prime() fp.ValidPrime

	// ComputeBasis extends internal tables through degree t. Idempotent,
	// monotonic, and safe under concurrent callers (spec.md §4.3).
	ComputeBasis(t int)

	// Dimension returns the basis size in internal degree t. ComputeBasis
	// must have been called for t or higher.
	Dimension(t int) int

	// BasisElementToString renders a basis element for diagnostics and
	// cocycle strings.
	BasisElementToString(t, idx int) string

	// MultiplyBasisElements accumulates c · B_{tR,rIdx} · B_{tS,sIdx}
	// into out, an FpVec of length Dimension(tR+tS).
	MultiplyBasisElements(out *fp.FpVec, c uint32, tR, rIdx, tS, sIdx int)

	// Generators returns the indices of the indecomposable basis elements
	// in degree t.
	Generators(t int) []int

	// DecomposeBasisElement expresses a non-generator basis element as a
	// sum of products of strictly smaller degree.
	DecomposeBasisElement(t, idx int) []Decomposition
}
