// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package module

import (
	"sync"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
)

// fpmIndexTable translates between a generator's index in the free cover
// and its index in the quotient, per degree (ported from the Rust
// FinitelyPresentedModule's gen_idx_to_fp_idx / fp_idx_to_gen_idx tables).
type fpmIndexTable struct {
	genToFP []int // length generators.Dimension(t); -1 if the column is a relation pivot (killed)
	fpToGen []int // length Dimension(t); the surviving generator index
}

// FPModule is a finitely presented module: a free module of generators,
// a free module of relations, and a map relations -> generators whose
// cokernel is the module (spec.md §3 "Finitely presented (FP)"). Basis in
// degree t is obtained by row-reducing the relations' images in the
// generators' basis and reading off the pivotless columns.
type FPModule struct {
	alg  algebra.Algebra
	p    fp.ValidPrime
	name string
	min  int

	generators *FreeModule
	relations  *FreeModule
	relMap     *FreeModuleHomomorphism

	mu      sync.Mutex
	tables  map[int]*fpmIndexTable
	maxComp int
	anyComp bool
}

// NewFPModule returns an FPModule with no generators or relations yet.
func NewFPModule(alg algebra.Algebra, name string, minDegree int) *FPModule {
	gens := NewFreeModule(alg, name+"-gens", minDegree)
	rels := NewFreeModule(alg, name+"-rels", minDegree)
	return &FPModule{
		alg:        alg,
		p:          alg.Prime(),
		name:       name,
		min:        minDegree,
		generators: gens,
		relations:  rels,
		relMap:     NewFreeModuleHomomorphism(rels, gens, 0),
		tables:     make(map[int]*fpmIndexTable),
	}
}

func (m *FPModule) Algebra() algebra.Algebra  { return m.alg }
func (m *FPModule) Prime() fp.ValidPrime      { return m.p }
func (m *FPModule) MinDegree() int            { return m.min }
func (m *FPModule) Generators() *FreeModule   { return m.generators }
func (m *FPModule) Relations() *FreeModule    { return m.relations }
func (m *FPModule) RelationMap() *FreeModuleHomomorphism { return m.relMap }

// AddGenerators adds len(names) generators in degree t.
func (m *FPModule) AddGenerators(t int, names []string) {
	m.generators.AddGenerators(t, names)
}

// AddRelations adds one new relation generator per entry of rels, each
// expressed as a vector in the generators' free-module basis of degree t.
func (m *FPModule) AddRelations(t int, rels []*fp.FpVec) {
	names := make([]string, len(rels))
	m.relations.AddGenerators(t, names)
	m.relMap.SetGeneratorImages(t, rels)
}

// ComputeBasis extends the generators' and relations' free-module tables
// through degree t, then builds the quotient index table for every newly
// reached degree by reducing the relation map's image against the
// generators' basis (spec.md §3 "FP ... basis ... obtained by row-reducing
// the presentation matrix").
func (m *FPModule) ComputeBasis(t int) {
	m.mu.Lock()
	if m.anyComp && t <= m.maxComp {
		m.mu.Unlock()
		return
	}
	start := m.min
	if m.anyComp {
		start = m.maxComp + 1
	}
	m.mu.Unlock()

	for d := start; d <= t; d++ {
		m.generators.ComputeBasis(d)
		m.relations.ComputeBasis(d)
		image := m.relMap.Image(d)
		genDim := m.generators.Dimension(d)
		pivots := make(map[int]bool)
		for _, c := range image.PivotColumns() {
			pivots[c] = true
		}
		genToFP := make([]int, genDim)
		var fpToGen []int
		for i := 0; i < genDim; i++ {
			if pivots[i] {
				genToFP[i] = -1
				continue
			}
			genToFP[i] = len(fpToGen)
			fpToGen = append(fpToGen, i)
		}
		m.mu.Lock()
		m.tables[d] = &fpmIndexTable{genToFP: genToFP, fpToGen: fpToGen}
		m.mu.Unlock()
	}

	m.mu.Lock()
	m.maxComp = t
	m.anyComp = true
	m.mu.Unlock()
}

func (m *FPModule) table(t int) *fpmIndexTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl, ok := m.tables[t]
	if !ok {
		panic(ErrOutOfRange{Kind: "FPModule", Degree: t, Max: m.maxComp})
	}
	return tbl
}

func (m *FPModule) MaxComputedDegree() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.anyComp {
		return m.min - 1
	}
	return m.maxComp
}

// Dimension returns the quotient's rank in degree t.
func (m *FPModule) Dimension(t int) int { return len(m.table(t).fpToGen) }

// GenIdxToFPIdx returns the quotient index of free-cover generator idx in
// degree t, or -1 if idx is killed by a relation.
func (m *FPModule) GenIdxToFPIdx(t, idx int) int { return m.table(t).genToFP[idx] }

// FPIdxToGenIdx returns the free-cover generator index underlying quotient
// basis element idx in degree t.
func (m *FPModule) FPIdxToGenIdx(t, idx int) int { return m.table(t).fpToGen[idx] }

// ActOnBasis computes the action in the free cover, then reduces the
// result against the relations' image and reads the surviving (pivotless)
// coordinates back off as the quotient's basis coordinates.
func (m *FPModule) ActOnBasis(out *fp.FpVec, c uint32, opDeg, opIdx, modDeg, modIdx int) {
	genIdx := m.FPIdxToGenIdx(modDeg, modIdx)
	outDeg := modDeg + opDeg
	tmp := fp.NewFpVec(m.p, m.generators.Dimension(outDeg))
	m.generators.ActOnBasis(tmp, c, opDeg, opIdx, modDeg, genIdx)

	reduced := m.relMap.Image(outDeg).Reduce(tmp)
	outTable := m.table(outDeg)
	for i, gi := range outTable.fpToGen {
		v := reduced.Entry(gi)
		if v != 0 {
			out.AddBasisElement(i, v)
		}
	}
}

// BasisElementToString renders the underlying free-cover generator's name.
func (m *FPModule) BasisElementToString(t, idx int) string {
	return m.generators.BasisElementToString(t, m.FPIdxToGenIdx(t, idx))
}
