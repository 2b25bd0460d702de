// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sseq

import (
	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
)

// Bidegree is a stem/filtration coordinate (x, y) = (stem, homological
// degree), the coordinate system spec.md §4.6 tracks ClassState by.
type Bidegree struct {
	X, Y int
}

// ClassState is the per-bidegree state spec.md §4.6 specifies: the E_2
// rank, the permanent-cycle subspace, the E_r subquotient at every page
// asserted so far, and the outgoing differentials recorded at each page.
type ClassState struct {
	Bidegree Bidegree
	Dim      int

	// Permanents is the subspace of classes known to survive every page
	// (no differential in or out will ever kill them).
	Permanents *matrix.Subspace

	// diffs[r] holds the differentials asserted at page r out of this
	// bidegree.
	diffs map[int]*Differential

	// classes[r] is E_r[x,y], recomputed lazily by refresh.
	classes map[int]*matrix.Subspace

	// Error is set when an asserted differential out of this bidegree is
	// found inconsistent with previously known data (spec.md §7): it is
	// surfaced as a highlight, never aborts computation.
	Error bool
}

func newClassState(bideg Bidegree, p fp.ValidPrime, dim int) *ClassState {
	return &ClassState{
		Bidegree:   bideg,
		Dim:        dim,
		Permanents: matrix.NewSubspace(p, dim),
		diffs:      make(map[int]*Differential),
		classes:    make(map[int]*matrix.Subspace),
	}
}

// differentialAt returns (creating if necessary) the Differential for
// page r out of this bidegree, sized against the given target dimension.
func (cs *ClassState) differentialAt(p fp.ValidPrime, r, targetDim int) *Differential {
	d, ok := cs.diffs[r]
	if !ok {
		d = NewDifferential(p, cs.Dim, targetDim)
		cs.diffs[r] = d
	}
	return d
}

// DifferentialPairs returns the asserted (source, target) pairs recorded
// at page r, or nil if no differential has been asserted at that page.
func (cs *ClassState) DifferentialPairs(r int) []SourceTargetPair {
	d, ok := cs.diffs[r]
	if !ok {
		return nil
	}
	return d.Pairs()
}

// ClassesAt returns the cached E_r subquotient basis at page r, or nil if
// it has not been computed by a refresh yet.
func (cs *ClassState) ClassesAt(r int) *matrix.Subspace {
	return cs.classes[r]
}

// refreshPage recomputes classes[r] as permanents + ker(d_r) modulo the
// image of d_{r-1} incoming into this bidegree (spec.md §4.6 "classes[r]:
// basis of E_r[x,y] as the subquotient permanents + ker(d_r) / image of
// d_{r-1}"). incoming is the subspace of this bidegree already known to
// be hit by some earlier differential; it may be nil (no known incoming
// differentials yet).
func (cs *ClassState) refreshPage(p fp.ValidPrime, r int, incoming *matrix.Subspace) {
	kernel := matrix.NewSubspace(p, cs.Dim)
	for i := 0; i < cs.Dim; i++ {
		e := fp.NewFpVec(p, cs.Dim)
		e.SetEntry(i, 1)
		kernel.AddVector(e)
	}
	if d, ok := cs.diffs[r]; ok {
		// ker(d_r) = vectors whose image under d_r is zero; approximate
		// by reducing every basis vector against the asserted pairs and
		// keeping those with zero image (exact on the span of what has
		// been asserted, per Differential.Evaluate's documented caveat).
		kernel = matrix.NewSubspace(p, cs.Dim)
		for i := 0; i < cs.Dim; i++ {
			e := fp.NewFpVec(p, cs.Dim)
			e.SetEntry(i, 1)
			img, ok := d.Evaluate(e)
			if ok && img.IsZero() {
				kernel.AddVector(e)
			}
		}
	}
	result := matrix.NewSubspace(p, cs.Dim)
	for _, v := range cs.Permanents.Basis() {
		result.AddVector(v)
	}
	for _, v := range kernel.Basis() {
		result.AddVector(v)
	}
	if incoming != nil {
		// Represent the subquotient by reducing against the image: callers
		// read ClassesAt(r) as "the surviving basis after quotienting",
		// obtained here by dropping anything already in incoming's span.
		filtered := matrix.NewSubspace(p, cs.Dim)
		for _, v := range result.Basis() {
			if !incoming.Contains(v) {
				filtered.AddVector(v)
			}
		}
		result = filtered
	}
	cs.classes[r] = result
}
