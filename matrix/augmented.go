// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import "github.com/SpectralSequences/sseq-sub004/fp"

// AugmentedMatrix stores a matrix divided into column segments: a primary
// segment plus one or more identity-initialised tail segments that track
// which row operations were performed during reduction (spec.md §4.2
// "Augmented matrices"). Typical use is N=2 (primary + identity, for
// quasi-inverses) but kernel/image/quasi-inverse can all be read off a
// single N=2 reduction, per spec.md §4.2.
type AugmentedMatrix struct {
	p           fp.ValidPrime
	primaryCols int
	tailCols    int
	m           *Matrix
	pivots      []int // primary-segment pivot array, set by RowReduce
}

// NewAugmentedMatrix builds the augmented matrix [f | I] for a linear map
// f presented as a primaryRows×primaryCols matrix whose row i is f(e_i):
// the tail segment is the primaryRows×primaryRows identity, recording
// which combination of input rows produced each reduced row.
func NewAugmentedMatrix(f *Matrix) *AugmentedMatrix {
	p := f.Prime()
	primaryRows := f.NumRows()
	primaryCols := f.NumCols()
	m := NewMatrix(p, primaryRows, primaryCols+primaryRows)
	for i := 0; i < primaryRows; i++ {
		row := m.Row(i)
		src := f.RowReadOnly(i)
		for j := 0; j < primaryCols; j++ {
			row.SetEntry(j, src.Entry(j))
		}
		row.SetEntry(primaryCols+i, 1)
	}
	return &AugmentedMatrix{p: p, primaryCols: primaryCols, tailCols: primaryRows, m: m}
}

// RowReduce reduces the augmented matrix, choosing pivots from the
// primary segment only, and returns that segment's pivot array.
func (a *AugmentedMatrix) RowReduce() []int {
	a.pivots = a.m.RowReduceUpTo(a.primaryCols)
	return a.pivots
}

func (a *AugmentedMatrix) ensureReduced() {
	if a.pivots == nil {
		a.RowReduce()
	}
}

// Image returns the span of the non-pivotless primary-segment rows: the
// image of f (spec.md §4.2 "image = span of non-pivotless primary-segment
// rows").
func (a *AugmentedMatrix) Image() *Subspace {
	a.ensureReduced()
	s := NewSubspace(a.p, a.primaryCols)
	for col, row := range a.pivots {
		if row < 0 {
			continue
		}
		full := a.m.RowReadOnly(row)
		v := fp.NewFpVec(a.p, a.primaryCols)
		for j := 0; j < a.primaryCols; j++ {
			v.SetEntry(j, full.Entry(j))
		}
		_ = col
		s.AddVector(v)
	}
	return s
}

// Kernel returns the augmented tail rows whose primary segment is zero:
// the kernel of f (spec.md §4.2 "kernel = the augmented tail rows whose
// primary segment is zero").
func (a *AugmentedMatrix) Kernel() *Subspace {
	a.ensureReduced()
	s := NewSubspace(a.p, a.tailCols)
	for i := 0; i < a.m.NumRows(); i++ {
		full := a.m.RowReadOnly(i)
		zero := true
		for j := 0; j < a.primaryCols; j++ {
			if full.Entry(j) != 0 {
				zero = false
				break
			}
		}
		if !zero {
			continue
		}
		v := fp.NewFpVec(a.p, a.tailCols)
		for j := 0; j < a.tailCols; j++ {
			v.SetEntry(j, full.Entry(a.primaryCols+j))
		}
		s.AddVector(v)
	}
	return s
}

// QuasiInverse is a one-sided right inverse g of f, defined on the image
// of f: f(g(w)) == w for w in image(f) (spec.md §3 "QuasiInverse").
type QuasiInverse struct {
	p        fp.ValidPrime
	domain   int // = primaryCols, the target space f maps into
	codomain int // = tailCols, the source space f maps from
	preimage map[int]*fp.FpVec
}

// Apply returns g(w) for w expressed as a target-space vector, by
// decomposing w into pivot-column coordinates against the stored preimage
// table. w must already be a combination of pivot-column basis vectors
// (callers typically call Image().Reduce first to check membership).
func (q *QuasiInverse) Apply(w *fp.FpVec) *fp.FpVec {
	out := fp.NewFpVec(q.p, q.codomain)
	for _, e := range w.IterNonzero() {
		pre, ok := q.preimage[e.Index]
		if !ok {
			continue
		}
		out.Add(pre, e.Value)
	}
	return out
}

// QuasiInverse extracts the augmented tail restricted to the pivot rows
// (spec.md §4.2 "quasi-inverse = the augmented tail restricted to the
// pivot rows"): for each pivot column c (a basis vector of the image),
// the tail of its pivot row is a preimage of e_c under f.
func (a *AugmentedMatrix) QuasiInverse() *QuasiInverse {
	a.ensureReduced()
	q := &QuasiInverse{p: a.p, domain: a.primaryCols, codomain: a.tailCols, preimage: make(map[int]*fp.FpVec)}
	for col, row := range a.pivots {
		if row < 0 {
			continue
		}
		full := a.m.RowReadOnly(row)
		v := fp.NewFpVec(a.p, a.tailCols)
		for j := 0; j < a.tailCols; j++ {
			v.SetEntry(j, full.Entry(a.primaryCols+j))
		}
		q.preimage[col] = v
	}
	return q
}
