// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import "github.com/SpectralSequences/sseq-sub004/fp"

// RowReduce puts m into reduced row-echelon form in place and returns the
// pivot array: pivots[col] is the row index holding that column's pivot,
// or -1 if the column has none (spec.md §4.2 "Row reduction"). Rows are
// processed in storage order and ties are broken by taking the first
// eligible row at or below the current position, so the result is
// deterministic (spec.md §9 Open Question 1).
func (m *Matrix) RowReduce() []int {
	pivots := make([]int, m.cols)
	for i := range pivots {
		pivots[i] = -1
	}
	cur := 0
	nr := len(m.rows)
	for col := 0; col < m.cols && cur < nr; col++ {
		pivotRow := -1
		for r := cur; r < nr; r++ {
			if m.rows[r].Entry(col) != 0 {
				pivotRow = r
				break
			}
		}
		if pivotRow == -1 {
			continue
		}
		if pivotRow != cur {
			m.rows[cur], m.rows[pivotRow] = m.rows[pivotRow], m.rows[cur]
		}
		pivot := m.rows[cur]
		inv := fp.Inverse(m.p, pivot.Entry(col))
		pivot.Scale(inv)
		for r := 0; r < nr; r++ {
			if r == cur {
				continue
			}
			factor := m.rows[r].Entry(col)
			if factor == 0 {
				continue
			}
			m.rows[r].Add(pivot, (m.p.Uint32()-factor)%m.p.Uint32())
		}
		pivots[col] = cur
		cur++
	}
	m.pivots = pivots
	return pivots
}

// RowReduceUpTo behaves like RowReduce but only considers columns
// [0, limit) when choosing pivots; elimination and scaling still act on
// the full row width. This is what AugmentedMatrix uses: pivots are
// chosen from the primary segment only, while the identity-initialised
// tail segments ride along and end up holding kernel/image/quasi-inverse
// data (spec.md §4.2 "Augmented matrices").
func (m *Matrix) RowReduceUpTo(limit int) []int {
	pivots := make([]int, limit)
	for i := range pivots {
		pivots[i] = -1
	}
	cur := 0
	nr := len(m.rows)
	for col := 0; col < limit && cur < nr; col++ {
		pivotRow := -1
		for r := cur; r < nr; r++ {
			if m.rows[r].Entry(col) != 0 {
				pivotRow = r
				break
			}
		}
		if pivotRow == -1 {
			continue
		}
		if pivotRow != cur {
			m.rows[cur], m.rows[pivotRow] = m.rows[pivotRow], m.rows[cur]
		}
		pivot := m.rows[cur]
		inv := fp.Inverse(m.p, pivot.Entry(col))
		pivot.Scale(inv)
		for r := 0; r < nr; r++ {
			if r == cur {
				continue
			}
			factor := m.rows[r].Entry(col)
			if factor == 0 {
				continue
			}
			m.rows[r].Add(pivot, (m.p.Uint32()-factor)%m.p.Uint32())
		}
		pivots[col] = cur
		cur++
	}
	m.pivots = nil // the cached pivot array is segment-relative, not full-width
	return pivots
}

// Pivots returns the most recently computed pivot array, or nil if the
// matrix has been mutated since RowReduce last ran.
func (m *Matrix) Pivots() []int { return m.pivots }

// Rank returns the number of pivot columns found by the last RowReduce.
func (m *Matrix) Rank() int {
	if m.pivots == nil {
		m.RowReduce()
	}
	rank := 0
	for _, r := range m.pivots {
		if r >= 0 {
			rank++
		}
	}
	return rank
}
