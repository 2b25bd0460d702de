// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import (
	"github.com/SpectralSequences/sseq-sub004/fp"
)

// Matrix is a row-major matrix over F_p(spec.md §4.2): Matrix(p, rows,
// cols). Each row is an independently addressable *fp.FpVec.
type Matrix struct {
	p          fp.ValidPrime
	rows       []*fp.FpVec
	cols       int
	pivots     []int // column -> row index, or -1; nil until RowReduce runs
}

// NewMatrix returns a rows×cols zero matrix over p.
func NewMatrix(p fp.ValidPrime, rows, cols int) *Matrix {
	m := &Matrix{p: p, cols: cols, rows: make([]*fp.FpVec, rows)}
	for i := range m.rows {
		m.rows[i] = fp.NewFpVec(p, cols)
	}
	return m
}

// FromRows builds a matrix directly from existing row vectors; it does not
// copy them. All rows must share p and the given column count.
func FromRows(p fp.ValidPrime, cols int, rows []*fp.FpVec) *Matrix {
	for _, r := range rows {
		if r.Prime().Uint32() != p.Uint32() || r.Len() != cols {
			panic(ErrShape)
		}
	}
	return &Matrix{p: p, cols: cols, rows: rows}
}

// Prime returns the field the matrix is over.
func (m *Matrix) Prime() fp.ValidPrime { return m.p }

// Dims returns (rows, cols).
func (m *Matrix) Dims() (int, int) { return len(m.rows), m.cols }

// Row returns the i-th row vector (mutable; mutating it invalidates any
// cached pivot array).
func (m *Matrix) Row(i int) *fp.FpVec {
	m.pivots = nil
	return m.rows[i]
}

// RowReadOnly returns the i-th row without invalidating the pivot cache;
// callers must not mutate the returned vector.
func (m *Matrix) RowReadOnly(i int) *fp.FpVec { return m.rows[i] }

// NumRows returns the row count.
func (m *Matrix) NumRows() int { return len(m.rows) }

// NumCols returns the column count.
func (m *Matrix) NumCols() int { return m.cols }

// SwapRows exchanges rows i and j in place.
func (m *Matrix) SwapRows(i, j int) {
	m.pivots = nil
	m.rows[i], m.rows[j] = m.rows[j], m.rows[i]
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	rows := make([]*fp.FpVec, len(m.rows))
	for i, r := range m.rows {
		rows[i] = r.Clone()
	}
	c := &Matrix{p: m.p, cols: m.cols, rows: rows}
	if m.pivots != nil {
		c.pivots = append([]int(nil), m.pivots...)
	}
	return c
}

// ToSlice materialises the matrix as a dense [][]uint32, for tests/display.
func (m *Matrix) ToSlice() [][]uint32 {
	out := make([][]uint32, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.ToSlice()
	}
	return out
}
