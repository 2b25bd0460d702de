// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matrix implements row-major matrices over F_p, deterministic
// reduced row-echelon reduction, subspaces, and quasi-inverses (spec.md
// §4.2), following the factorization-type shape of gonum/mat's QR and LU
// (a type wrapping a working *Dense-like store with lazily extracted
// results) while the reduction itself follows the exact-arithmetic
// algorithm in the retrieved Rust source's fp::matrix::row_reduce_pure.
package matrix

import "errors"

// ErrShape is returned when an operation receives a matrix of the wrong
// dimensions, mirroring gonum/mat's ErrShape sentinel.
var ErrShape = errors.New("matrix: dimension mismatch")

// ErrNotInSpan is returned by Subspace.Reduce-adjacent helpers when a
// vector is asserted to lie in a subspace but does not.
var ErrNotInSpan = errors.New("matrix: vector not in span")
