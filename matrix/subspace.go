// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import "github.com/SpectralSequences/sseq-sub004/fp"

// Subspace is a matrix in reduced row-echelon form whose rows are a basis
// (spec.md §4.2 "Subspace"). The zero subspace has no rows.
type Subspace struct {
	p    fp.ValidPrime
	cols int
	m    *Matrix // always kept in RREF; zero rows are trimmed after every mutation
}

// NewSubspace returns the zero subspace of F_p^cols.
func NewSubspace(p fp.ValidPrime, cols int) *Subspace {
	return &Subspace{p: p, cols: cols, m: NewMatrix(p, 0, cols)}
}

// SubspaceFromRows builds a subspace as the span of rows, reducing to RREF
// immediately.
func SubspaceFromRows(p fp.ValidPrime, cols int, rows []*fp.FpVec) *Subspace {
	s := NewSubspace(p, cols)
	for _, r := range rows {
		s.AddVector(r)
	}
	return s
}

// Dimension returns the number of basis vectors.
func (s *Subspace) Dimension() int { return s.m.NumRows() }

// Basis returns the RREF basis rows; callers must not mutate them.
func (s *Subspace) Basis() []*fp.FpVec {
	out := make([]*fp.FpVec, s.m.NumRows())
	for i := 0; i < s.m.NumRows(); i++ {
		out[i] = s.m.RowReadOnly(i)
	}
	return out
}

// PivotColumns returns the sorted list of columns holding a basis pivot.
func (s *Subspace) PivotColumns() []int {
	pivots := s.m.Pivots()
	if pivots == nil {
		pivots = s.m.RowReduce()
	}
	var out []int
	for col, row := range pivots {
		if row >= 0 {
			out = append(out, col)
		}
	}
	return out
}

// Reduce projects v onto a canonical representative of v's coset modulo
// the subspace: it eliminates every pivot column using the basis, leaving
// only the pivotless-column coordinates (spec.md §4.2 "reduce(v) projects
// onto the complement spanned by pivotless columns").
func (s *Subspace) Reduce(v *fp.FpVec) *fp.FpVec {
	out := v.Clone()
	pivots := s.m.Pivots()
	if pivots == nil {
		pivots = s.m.RowReduce()
	}
	for col, row := range pivots {
		if row < 0 {
			continue
		}
		factor := out.Entry(col)
		if factor == 0 {
			continue
		}
		out.Add(s.m.RowReadOnly(row), (s.p.Uint32()-factor)%s.p.Uint32())
	}
	return out
}

// Contains reports whether v lies in the subspace (spec.md §4.2
// "contains(v) by reducing v against the stored basis").
func (s *Subspace) Contains(v *fp.FpVec) bool {
	return s.Reduce(v).IsZero()
}

// AddVector extends the basis with v if v is not already in the span,
// re-reducing to maintain RREF, and returns the new dimension (spec.md
// §4.2 "add_vector(v) extends the basis").
func (s *Subspace) AddVector(v *fp.FpVec) int {
	reduced := s.Reduce(v)
	if reduced.IsZero() {
		return s.Dimension()
	}
	rows := make([]*fp.FpVec, 0, s.m.NumRows()+1)
	for i := 0; i < s.m.NumRows(); i++ {
		rows = append(rows, s.m.RowReadOnly(i).Clone())
	}
	rows = append(rows, reduced)
	m := FromRows(s.p, s.cols, rows)
	m.RowReduce()
	m.trimZeroRows()
	s.m = m
	return s.Dimension()
}

// trimZeroRows drops any all-zero rows left over after a RowReduce pass
// (e.g. when the appended vector was a linear combination of existing
// rows and the reduction cancelled it to zero, which cannot happen here
// since we already checked, but stays correct for any future caller that
// builds a Subspace from a non-independent row set directly).
func (m *Matrix) trimZeroRows() {
	kept := m.rows[:0]
	for _, r := range m.rows {
		if !r.IsZero() {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	m.pivots = nil
	m.RowReduce()
}
