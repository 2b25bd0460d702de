// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package module

import (
	"fmt"
	"sync"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
)

type fdActionKey struct {
	opDeg, opIdx, modDeg, modIdx int
}

// FDModule is a finite-dimensional module given by explicit generators
// and explicit action matrices for the algebra's generators only; the
// action of every other basis element is computed on demand from the
// algebra's own decomposition (spec.md §3 "Finite-dimensional (FD)").
type FDModule struct {
	alg  algebra.Algebra
	p    fp.ValidPrime
	name string
	min  int

	mu      sync.Mutex
	names   map[int][]string
	maxDeg  int
	hasGens bool
	actions map[fdActionKey]*fp.FpVec
}

// NewFDModule returns an FDModule with no generators or actions yet.
func NewFDModule(alg algebra.Algebra, name string, minDegree int) *FDModule {
	return &FDModule{
		alg:     alg,
		p:       alg.Prime(),
		name:    name,
		min:     minDegree,
		names:   make(map[int][]string),
		actions: make(map[fdActionKey]*fp.FpVec),
	}
}

func (m *FDModule) Algebra() algebra.Algebra { return m.alg }
func (m *FDModule) Prime() fp.ValidPrime     { return m.p }
func (m *FDModule) MinDegree() int           { return m.min }
func (m *FDModule) Name() string             { return m.name }

// AddGenerators sets the generators in degree t, named by names.
func (m *FDModule) AddGenerators(t int, names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[t] = append([]string(nil), names...)
	if len(names) > 0 && t > m.maxDeg {
		m.maxDeg = t
	}
	m.hasGens = true
}

// SetAction records that algebra generator (opDeg, opIdx) sends basis
// element modIdx of degree modDeg to image (a vector of length
// Dimension(opDeg+modDeg)). Only generator ops need an explicit action;
// everything else is decomposed.
func (m *FDModule) SetAction(opDeg, opIdx, modDeg, modIdx int, image *fp.FpVec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[fdActionKey{opDeg, opIdx, modDeg, modIdx}] = image
}

// ComputeBasis is a no-op beyond bookkeeping: every FDModule's table is
// supplied up front via AddGenerators, so there is nothing to extend.
func (m *FDModule) ComputeBasis(t int) {}

func (m *FDModule) MaxComputedDegree() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasGens {
		return m.min - 1
	}
	return m.maxDeg
}

// Dimension returns the number of generators in degree t, 0 outside the
// module's support.
func (m *FDModule) Dimension(t int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.names[t])
}

func (m *FDModule) isGenerator(opDeg, opIdx int) bool {
	for _, g := range m.alg.Generators(opDeg) {
		if g == opIdx {
			return true
		}
	}
	return false
}

// ActOnBasis accumulates c · B_{opDeg,opIdx} · B_{modDeg,modIdx} into out.
// The degree-0 (identity) operation is handled directly; an algebra
// generator consults the explicit action table (zero if unset); any other
// basis element is rewritten via the algebra's own decomposition and the
// two smaller-degree factors are applied in turn (spec.md §3
// "decompose_basis_element").
func (m *FDModule) ActOnBasis(out *fp.FpVec, c uint32, opDeg, opIdx, modDeg, modIdx int) {
	if opDeg == 0 {
		out.AddBasisElement(modIdx, c)
		return
	}
	m.mu.Lock()
	img, ok := m.actions[fdActionKey{opDeg, opIdx, modDeg, modIdx}]
	m.mu.Unlock()
	if ok {
		out.Add(img, c)
		return
	}
	if m.isGenerator(opDeg, opIdx) {
		return // unset generator action is zero (spec.md's "unspecified ... assumed zero")
	}
	pp := m.p.Uint32()
	for _, d := range m.alg.DecomposeBasisElement(opDeg, opIdx) {
		tmp := fp.NewFpVec(m.p, m.Dimension(modDeg+d.DegB))
		m.ActOnBasis(tmp, 1, d.DegB, d.IdxB, modDeg, modIdx)
		coeff := (c * d.Coeff) % pp
		if coeff == 0 {
			continue
		}
		for _, e := range tmp.IterNonzero() {
			m.ActOnBasis(out, (coeff*e.Value)%pp, d.DegA, d.IdxA, modDeg+d.DegB, e.Index)
		}
	}
}

// BasisElementToString renders the generator's name, or a default label.
func (m *FDModule) BasisElementToString(t, idx int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := m.names[t]
	if idx < len(names) && names[idx] != "" {
		return names[idx]
	}
	return fmt.Sprintf("x_{%d,%d}", t, idx)
}

// Validate checks, for every pair of stored generator actions whose
// algebra factors multiply to a third stored basis element, that applying
// the two actions in sequence agrees with applying the algebra product
// directly — the consistency check spec.md §3 calls for ("each B_op ·
// B_op' · x == (B_op·B_op')·x for all stored relations"). It only checks
// combinations actually reachable from explicit SetAction entries, since
// those are the only place an inconsistency could be introduced by hand.
func (m *FDModule) Validate(throughDegree int) error {
	m.mu.Lock()
	keys := make([]fdActionKey, 0, len(m.actions))
	for k := range m.actions {
		keys = append(keys, k)
	}
	m.mu.Unlock()

	for _, ka := range keys {
		for _, kb := range keys {
			if kb.modDeg+kb.opDeg != ka.modDeg {
				continue // b's output degree must be a's input degree
			}
			totalDeg := ka.opDeg + kb.opDeg + kb.modDeg
			if totalDeg > throughDegree {
				continue
			}
			// lhs: apply b to x, then a to the result.
			lhs := fp.NewFpVec(m.p, m.Dimension(totalDeg))
			mid := fp.NewFpVec(m.p, m.Dimension(kb.modDeg+kb.opDeg))
			m.ActOnBasis(mid, 1, kb.opDeg, kb.opIdx, kb.modDeg, kb.modIdx)
			for _, e := range mid.IterNonzero() {
				m.ActOnBasis(lhs, e.Value, ka.opDeg, ka.opIdx, ka.modDeg, e.Index)
			}

			// rhs: multiply the two algebra elements first, then apply once.
			m.alg.ComputeBasis(ka.opDeg + kb.opDeg)
			prod := fp.NewFpVec(m.p, m.alg.Dimension(ka.opDeg+kb.opDeg))
			m.alg.MultiplyBasisElements(prod, 1, ka.opDeg, ka.opIdx, kb.opDeg, kb.opIdx)
			rhs := fp.NewFpVec(m.p, m.Dimension(totalDeg))
			for _, e := range prod.IterNonzero() {
				m.ActOnBasis(rhs, e.Value, ka.opDeg+kb.opDeg, e.Index, kb.modDeg, kb.modIdx)
			}

			if !sliceEqual(lhs.ToSlice(), rhs.ToSlice()) {
				return fmt.Errorf("module: %s inconsistent action: op(%d,%d)*op(%d,%d) on x_{%d,%d}",
					m.name, ka.opDeg, ka.opIdx, kb.opDeg, kb.opIdx, kb.modDeg, kb.modIdx)
			}
		}
	}
	return nil
}

func sliceEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
