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

// freeIndexEntry is one basis element of a FreeModule in some degree t: the
// pair (generator, algebra basis element) with deg(generator) + deg(op) == t.
type freeIndexEntry struct {
	genDeg, genIdx int
	opDeg, opIdx   int
}

type opGenKey struct {
	genDeg, genIdx, opDeg, opIdx int
}

// FreeModule is a graded free module: a sequence of generator counts by
// degree, with basis in degree t given by pairs (g, op), g a generator in
// degree t_g <= t and op a basis element of the algebra in degree t - t_g.
// The global index order is stable: generator degree ascending, then
// generator index, then algebra basis index (spec.md's "generator_block,
// offset_within_block" layout).
type FreeModule struct {
	alg       algebra.Algebra
	p         fp.ValidPrime
	name      string
	minDegree int

	mu        sync.Mutex
	genCount  map[int]int
	genNames  map[int][]string
	maxGenDeg int
	hasGens   bool

	index    map[int][]freeIndexEntry
	revIndex map[int]map[opGenKey]int
	maxComp  int
	anyComp  bool
}

// NewFreeModule returns a FreeModule with no generators yet, over alg.
func NewFreeModule(alg algebra.Algebra, name string, minDegree int) *FreeModule {
	return &FreeModule{
		alg:       alg,
		p:         alg.Prime(),
		name:      name,
		minDegree: minDegree,
		genCount:  make(map[int]int),
		genNames:  make(map[int][]string),
		index:     make(map[int][]freeIndexEntry),
		revIndex:  make(map[int]map[opGenKey]int),
	}
}

func (m *FreeModule) Algebra() algebra.Algebra { return m.alg }
func (m *FreeModule) Prime() fp.ValidPrime     { return m.p }
func (m *FreeModule) MinDegree() int           { return m.minDegree }
func (m *FreeModule) Name() string             { return m.name }

// AddGenerators appends len(names) new generators in degree t. Safe to call
// more than once for the same degree; later calls append further
// generators rather than replacing earlier ones. Must be called for every
// degree <= t before ComputeBasis(t) is invoked (append-only, index-stable
// generator containers, spec.md §9).
func (m *FreeModule) AddGenerators(t int, names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.genNames[t] = append(m.genNames[t], names...)
	m.genCount[t] = len(m.genNames[t])
	if len(names) > 0 && t > m.maxGenDeg {
		m.maxGenDeg = t
	}
	m.hasGens = true
}

// GeneratorsInDegree returns the number of generators in degree t.
func (m *FreeModule) GeneratorsInDegree(t int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.genCount[t]
}

// MaxGeneratorDegree returns the highest degree carrying a generator, or
// m.minDegree - 1 if the module has none yet.
func (m *FreeModule) MaxGeneratorDegree() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasGens {
		return m.minDegree - 1
	}
	return m.maxGenDeg
}

// ComputeBasis builds the degree-t basis table (idempotent, monotonic):
// every generator in degree t_g <= t paired with every algebra basis
// element in degree t - t_g. Degrees below m.maxComp are assumed frozen
// already (the usual resolver discipline of adding all generators in
// degree t_g before anyone asks for a basis in degree >= t_g).
func (m *FreeModule) ComputeBasis(t int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.anyComp && t <= m.maxComp {
		return
	}
	start := m.minDegree
	if m.anyComp {
		start = m.maxComp + 1
	}
	for d := start; d <= t; d++ {
		m.buildDegreeLocked(d)
	}
	m.maxComp = t
	m.anyComp = true
}

func (m *FreeModule) buildDegreeLocked(t int) {
	var entries []freeIndexEntry
	rev := make(map[opGenKey]int)
	for genDeg := m.minDegree; genDeg <= t; genDeg++ {
		n := m.genCount[genDeg]
		if n == 0 {
			continue
		}
		opDeg := t - genDeg
		m.alg.ComputeBasis(opDeg)
		dimOp := m.alg.Dimension(opDeg)
		for genIdx := 0; genIdx < n; genIdx++ {
			for opIdx := 0; opIdx < dimOp; opIdx++ {
				key := opGenKey{genDeg, genIdx, opDeg, opIdx}
				rev[key] = len(entries)
				entries = append(entries, freeIndexEntry{genDeg, genIdx, opDeg, opIdx})
			}
		}
	}
	m.index[t] = entries
	m.revIndex[t] = rev
}

func (m *FreeModule) MaxComputedDegree() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.anyComp {
		return m.minDegree - 1
	}
	return m.maxComp
}

// Dimension returns the basis size in degree t; panics if ComputeBasis has
// not reached t.
func (m *FreeModule) Dimension(t int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.anyComp || t > m.maxComp {
		panic(ErrOutOfRange{Kind: "FreeModule.Dimension", Degree: t, Max: m.maxComp})
	}
	if t < m.minDegree {
		return 0
	}
	return len(m.index[t])
}

// Decompose returns the (generator degree, generator index, op degree, op
// index) making up basis element idx of degree t.
func (m *FreeModule) Decompose(t, idx int) (genDeg, genIdx, opDeg, opIdx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.index[t][idx]
	return e.genDeg, e.genIdx, e.opDeg, e.opIdx
}

// OperationGeneratorToIndex looks up the global basis index of the pair
// (generator (genDeg, genIdx), algebra element (opDeg, opIdx)) in degree
// opDeg+genDeg.
func (m *FreeModule) OperationGeneratorToIndex(opDeg, opIdx, genDeg, genIdx int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := opDeg + genDeg
	idx, ok := m.revIndex[t][opGenKey{genDeg, genIdx, opDeg, opIdx}]
	if !ok {
		panic(fmt.Sprintf("module: no basis index for generator (%d,%d) op (%d,%d)", genDeg, genIdx, opDeg, opIdx))
	}
	return idx
}

// ActOnBasis accumulates c · B_{tOp,opIdx} · B_{tMod,modIdx} into out by
// multiplying the op onto modIdx's algebra factor and relabelling the
// result onto modIdx's generator (spec.md §4.4 "Free module generators").
func (m *FreeModule) ActOnBasis(out *fp.FpVec, c uint32, tOp, opIdx, tMod, modIdx int) {
	genDeg, genIdx, opDeg, idxB := m.Decompose(tMod, modIdx)
	newOpDeg := tOp + opDeg
	m.alg.ComputeBasis(newOpDeg)
	product := fp.NewFpVec(m.p, m.alg.Dimension(newOpDeg))
	m.alg.MultiplyBasisElements(product, c, tOp, opIdx, opDeg, idxB)

	newT := tMod + tOp
	m.mu.Lock()
	rev := m.revIndex[newT]
	m.mu.Unlock()
	for _, e := range product.IterNonzero() {
		gi, ok := rev[opGenKey{genDeg, genIdx, newOpDeg, e.Index}]
		if !ok {
			continue
		}
		out.AddBasisElement(gi, e.Value)
	}
}

// BasisElementToString renders e.g. "Sq^2 x0".
func (m *FreeModule) BasisElementToString(t, idx int) string {
	genDeg, genIdx, opDeg, opIdx := m.Decompose(t, idx)
	name := m.generatorName(genDeg, genIdx)
	if opDeg == 0 {
		return name
	}
	return m.alg.BasisElementToString(opDeg, opIdx) + " " + name
}

func (m *FreeModule) generatorName(genDeg, genIdx int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := m.genNames[genDeg]
	if genIdx < len(names) && names[genIdx] != "" {
		return names[genIdx]
	}
	return fmt.Sprintf("g_{%d,%d}", genDeg, genIdx)
}
