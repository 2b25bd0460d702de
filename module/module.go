// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package module implements graded F_p-vector spaces with a left action of
// a Steenrod algebra basis: free modules, finite-dimensional and finitely
// presented modules, and module homomorphisms with lazily computed
// image/kernel/quasi-inverse data.
package module

import (
	"fmt"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
)

// Module is the contract shared by every concrete module kind (free,
// finite-dimensional, finitely presented): a graded F_p-vector space with
// a left algebra action, with basis tables extended lazily degree by
// degree.
type Module interface {
	Algebra() algebra.Algebra
	Prime() fp.ValidPrime

	// MinDegree is the lowest internal degree the module is defined in.
	MinDegree() int

	// MaxComputedDegree is the highest degree whose basis table has been
	// built by ComputeBasis.
	MaxComputedDegree() int

	// ComputeBasis extends internal tables through degree t. Idempotent
	// and monotonic; safe for concurrent callers once a degree's table
	// has been built.
	ComputeBasis(t int)

	// Dimension returns the basis size in internal degree t. Panics if
	// ComputeBasis has not reached t: querying an uncomputed degree is a
	// programmer error, not a data error.
	Dimension(t int) int

	// ActOnBasis accumulates c · B_{tOp,opIdx} · B_{tMod,modIdx} into out,
	// an FpVec of length Dimension(tOp + tMod).
	ActOnBasis(out *fp.FpVec, c uint32, tOp, opIdx, tMod, modIdx int)

	// BasisElementToString renders a basis element for diagnostics.
	BasisElementToString(t, idx int) string
}

// ErrOutOfRange is the panic value used when a degree is queried before
// ComputeBasis has reached it.
type ErrOutOfRange struct {
	Kind   string
	Degree int
	Max    int
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("module: %s queried at degree %d, only computed through %d", e.Kind, e.Degree, e.Max)
}
