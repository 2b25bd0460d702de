// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sseq implements the spectral-sequence bookkeeper (spec.md §4.6):
// per-bidegree ClassState tracking dimension, permanent cycles, the E_r
// subquotients, asserted differentials, and the product table, with
// Leibniz propagation of newly asserted differentials and a block_refresh
// batching counter.
package sseq

import (
	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
)

// Differential stores the set of differentials asserted at one page out
// of one bidegree, as an augmented matrix whose rows are
// [source segment | target segment]; asserting a differential appends a
// row and re-reduces the whole matrix, so linear consequences of earlier
// assertions (e.g. "if d(a)=x and d(b)=x then d(a-b)=0") are absorbed
// automatically. Grounded on
// original_source/ext/crates/sseq/src/differential.rs's Differential type.
type Differential struct {
	p                    fp.ValidPrime
	sourceDim, targetDim int
	m                    *matrix.Matrix
	nextRow              int
	rank                 int
	errored              bool
}

// NewDifferential returns an empty differential d: F_p^sourceDim ->
// F_p^targetDim. The backing matrix has one spare row beyond
// sourceDim+targetDim "to make room for inconsistent differentials" (the
// Rust type's own comment): even a maximal-rank set of assertions leaves
// room for one more, inconsistent, row to be added and detected rather
// than silently dropped.
func NewDifferential(p fp.ValidPrime, sourceDim, targetDim int) *Differential {
	rows := sourceDim + targetDim + 1
	cols := sourceDim + targetDim
	return &Differential{p: p, sourceDim: sourceDim, targetDim: targetDim, m: matrix.NewMatrix(p, rows, cols)}
}

// SourceDim and TargetDim report the differential's domain and codomain
// dimensions.
func (d *Differential) SourceDim() int { return d.sourceDim }
func (d *Differential) TargetDim() int { return d.targetDim }

// Add asserts d(source) = target (target == nil means source maps to
// zero) and re-reduces the whole matrix. It reports whether the new row
// increased the matrix's rank, i.e. was a genuinely new linear
// constraint rather than a consequence of ones already recorded.
func (d *Differential) Add(source, target *fp.FpVec) bool {
	if d.nextRow >= d.m.NumRows() {
		return false
	}
	row := d.m.Row(d.nextRow)
	for i := 0; i < d.sourceDim; i++ {
		row.SetEntry(i, source.Entry(i))
	}
	if target != nil {
		for i := 0; i < d.targetDim; i++ {
			row.SetEntry(d.sourceDim+i, target.Entry(i))
		}
	}
	d.nextRow++
	before := d.rank
	d.m.RowReduce()
	d.rank = d.m.Rank()
	return d.rank > before
}

// SourceTargetPair is one row of a reduced Differential, split back into
// its source and target segments.
type SourceTargetPair struct {
	Source *fp.FpVec
	Target *fp.FpVec
}

// Pairs returns every nonzero row of the reduced matrix as a
// (source, target) pair (original_source's get_source_target_pairs).
func (d *Differential) Pairs() []SourceTargetPair {
	d.m.RowReduce()
	var out []SourceTargetPair
	for i := 0; i < d.m.NumRows(); i++ {
		row := d.m.RowReadOnly(i)
		if row.IsZero() {
			continue
		}
		src := fp.NewFpVec(d.p, d.sourceDim)
		tgt := fp.NewFpVec(d.p, d.targetDim)
		for j := 0; j < d.sourceDim; j++ {
			src.SetEntry(j, row.Entry(j))
		}
		for j := 0; j < d.targetDim; j++ {
			tgt.SetEntry(j, row.Entry(d.sourceDim+j))
		}
		out = append(out, SourceTargetPair{Source: src, Target: tgt})
	}
	return out
}

// ReduceTarget projects every row's target segment onto the complement of
// zeros (a subspace of classes already known to support no incoming
// class, e.g. the image of a differential already folded into the page),
// re-reduces, and records an inconsistency if any row whose source
// segment reduced to zero still has a nonzero target segment — that row
// asserts "0 maps to something nonzero", the "inconsistent user-asserted
// differential" spec.md §7 says must be recorded on ClassState.Error
// rather than aborting.
func (d *Differential) ReduceTarget(zeros *matrix.Subspace) {
	for i := 0; i < d.m.NumRows(); i++ {
		row := d.m.Row(i)
		tgt := fp.NewFpVec(d.p, d.targetDim)
		for j := 0; j < d.targetDim; j++ {
			tgt.SetEntry(j, row.Entry(d.sourceDim+j))
		}
		reduced := zeros.Reduce(tgt)
		for j := 0; j < d.targetDim; j++ {
			row.SetEntry(d.sourceDim+j, reduced.Entry(j))
		}
	}
	d.m.RowReduce()
	d.rank = d.m.Rank()

	d.errored = false
	for i := 0; i < d.m.NumRows(); i++ {
		row := d.m.RowReadOnly(i)
		srcZero := true
		for j := 0; j < d.sourceDim; j++ {
			if row.Entry(j) != 0 {
				srcZero = false
				break
			}
		}
		if !srcZero {
			continue
		}
		for j := 0; j < d.targetDim; j++ {
			if row.Entry(d.sourceDim+j) != 0 {
				d.errored = true
				break
			}
		}
	}
}

// Errored reports whether the last ReduceTarget found an inconsistency.
func (d *Differential) Errored() bool { return d.errored }

// Evaluate returns d(source), assuming every non-pivot source column has
// zero differential (the documented caveat in original_source's
// Differential::evaluate: this is only exact on the span of asserted
// source vectors). ok is false if source has support on a column with no
// pivot, meaning the differential there is not determined by what has
// been asserted so far.
func (d *Differential) Evaluate(source *fp.FpVec) (result *fp.FpVec, ok bool) {
	pivots := d.m.RowReduce()
	out := fp.NewFpVec(d.p, d.targetDim)
	pp := d.p.Uint32()
	for _, e := range source.IterNonzero() {
		if e.Index >= d.sourceDim {
			continue
		}
		row := pivots[e.Index]
		if row < 0 {
			return nil, false
		}
		full := d.m.RowReadOnly(row)
		for j := 0; j < d.targetDim; j++ {
			out.AddBasisElement(j, (e.Value*full.Entry(d.sourceDim+j))%pp)
		}
	}
	return out, true
}

// QuasiInverse finds some source vector s with Evaluate(s) == value, by
// row-reducing a transposed-segment copy of the matrix (target segment
// first, source segment as tail) so pivots are chosen against the target
// coordinates instead. Documented in the original as expensive and not a
// hot path; used only for "find the differential that hits this value"
// queries (e.g. QueryCocycleString on a target generator).
func (d *Differential) QuasiInverse(value *fp.FpVec) (source *fp.FpVec, ok bool) {
	rows := d.m.NumRows()
	cols := d.sourceDim + d.targetDim
	tm := matrix.NewMatrix(d.p, rows, cols)
	for i := 0; i < rows; i++ {
		src := d.m.RowReadOnly(i)
		row := tm.Row(i)
		for j := 0; j < d.targetDim; j++ {
			row.SetEntry(j, src.Entry(d.sourceDim+j))
		}
		for j := 0; j < d.sourceDim; j++ {
			row.SetEntry(d.targetDim+j, src.Entry(j))
		}
	}
	pivots := tm.RowReduceUpTo(d.targetDim)
	out := fp.NewFpVec(d.p, d.sourceDim)
	pp := d.p.Uint32()
	for _, e := range value.IterNonzero() {
		if e.Index >= d.targetDim {
			continue
		}
		row := pivots[e.Index]
		if row < 0 {
			return nil, false
		}
		full := tm.RowReadOnly(row)
		for j := 0; j < d.sourceDim; j++ {
			out.AddBasisElement(j, (e.Value*full.Entry(d.targetDim+j))%pp)
		}
	}
	return out, true
}
