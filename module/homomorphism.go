// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package module

import (
	"sync"

	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
)

// homAux is the per-degree auxiliary data of a FreeModuleHomomorphism:
// the matrix presentation at that degree plus its image, kernel, and
// quasi-inverse, built together from one augmented-matrix reduction
// (spec.md §4.4 "Auxiliary data").
type homAux struct {
	mat    *matrix.Matrix
	image  *matrix.Subspace
	kernel *matrix.Subspace
	qi     *matrix.QuasiInverse
}

// FreeModuleHomomorphism is a map f: Free(source) -> target of fixed
// internal degree shift d. It is stored as, for each generator g of source
// in degree t, the image f(g) in target degree t-d; linearity extends the
// action through the target's own algebra action. Unset generator images
// are treated as zero.
type FreeModuleHomomorphism struct {
	source *FreeModule
	target Module
	shift  int
	p      fp.ValidPrime

	mu     sync.Mutex
	images map[int][]*fp.FpVec // keyed by generator degree t

	auxMu   sync.Mutex
	auxOnce map[int]*sync.Once
	aux     map[int]*homAux
}

// NewFreeModuleHomomorphism builds the zero homomorphism Free(source) ->
// target of degree shift; set generator images with SetGeneratorImages or
// AddGeneratorImage.
func NewFreeModuleHomomorphism(source *FreeModule, target Module, shift int) *FreeModuleHomomorphism {
	return &FreeModuleHomomorphism{
		source:  source,
		target:  target,
		shift:   shift,
		p:       source.Prime(),
		images:  make(map[int][]*fp.FpVec),
		auxOnce: make(map[int]*sync.Once),
		aux:     make(map[int]*homAux),
	}
}

func (f *FreeModuleHomomorphism) Source() *FreeModule { return f.source }
func (f *FreeModuleHomomorphism) Target() Module      { return f.target }
func (f *FreeModuleHomomorphism) DegreeShift() int    { return f.shift }

// SetGeneratorImages sets the images of every generator in degree t at
// once, in generator-index order (mirrors a finitely presented module's
// add_relations, which defines a relation's image the moment its
// generator is created).
func (f *FreeModuleHomomorphism) SetGeneratorImages(t int, imgs []*fp.FpVec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[t] = append([]*fp.FpVec(nil), imgs...)
}

// AddGeneratorImage appends the image of one new generator in degree t,
// for incremental construction (the resolver adds one lifted generator at
// a time, spec.md §4.5 step 3).
func (f *FreeModuleHomomorphism) AddGeneratorImage(t int, img *fp.FpVec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[t] = append(f.images[t], img)
}

func (f *FreeModuleHomomorphism) generatorImage(t, genIdx int) *fp.FpVec {
	f.mu.Lock()
	defer f.mu.Unlock()
	imgs := f.images[t]
	if genIdx >= len(imgs) {
		return nil
	}
	return imgs[genIdx]
}

// ApplyToBasisElement accumulates c · f(B_{tIn,idx}) into out, an FpVec of
// length target.Dimension(tIn - shift).
func (f *FreeModuleHomomorphism) ApplyToBasisElement(out *fp.FpVec, c uint32, tIn, idx int) {
	genDeg, genIdx, opDeg, opIdx := f.source.Decompose(tIn, idx)
	img := f.generatorImage(genDeg, genIdx)
	if img == nil {
		return
	}
	pp := f.p.Uint32()
	targetModDeg := genDeg - f.shift
	for _, e := range img.IterNonzero() {
		coeff := (c * e.Value) % pp
		if coeff == 0 {
			continue
		}
		f.target.ActOnBasis(out, coeff, opDeg, opIdx, targetModDeg, e.Index)
	}
}

// Apply accumulates c · f(v) into out, where v is a vector of source
// degree tIn.
func (f *FreeModuleHomomorphism) Apply(out *fp.FpVec, c uint32, tIn int, v *fp.FpVec) {
	pp := f.p.Uint32()
	for _, e := range v.IterNonzero() {
		coeff := (c * e.Value) % pp
		if coeff == 0 {
			continue
		}
		f.ApplyToBasisElement(out, coeff, tIn, e.Index)
	}
}

// Matrix returns the matrix presentation of f at degree t: dim(source,t)
// rows, dim(target,t-shift) columns, row i the image of source basis
// element i (spec.md §4.4 "Matrix presentation"). This rebuilds on every
// call; use the cached Image/Kernel/QuasiInverse accessors for repeated
// queries.
func (f *FreeModuleHomomorphism) Matrix(t int) *matrix.Matrix {
	rows := f.source.Dimension(t)
	cols := f.target.Dimension(t - f.shift)
	m := matrix.NewMatrix(f.p, rows, cols)
	for i := 0; i < rows; i++ {
		f.ApplyToBasisElement(m.Row(i), 1, t, i)
	}
	return m
}

// auxFor builds (once, behind a per-degree barrier) and returns the
// image/kernel/quasi-inverse triple at degree t, per spec.md §4.4
// "Auxiliary data" and §5's once-per-degree synchronisation.
func (f *FreeModuleHomomorphism) auxFor(t int) *homAux {
	f.auxMu.Lock()
	once, ok := f.auxOnce[t]
	if !ok {
		once = &sync.Once{}
		f.auxOnce[t] = once
	}
	f.auxMu.Unlock()

	once.Do(func() {
		m := f.Matrix(t)
		aug := matrix.NewAugmentedMatrix(m)
		aug.RowReduce()
		data := &homAux{
			mat:    m,
			image:  aug.Image(),
			kernel: aug.Kernel(),
			qi:     aug.QuasiInverse(),
		}
		f.auxMu.Lock()
		f.aux[t] = data
		f.auxMu.Unlock()
	})

	f.auxMu.Lock()
	defer f.auxMu.Unlock()
	return f.aux[t]
}

// ComputeAuxiliaryDataThroughDegree forces the image/kernel/quasi-inverse
// computation for every degree up to and including t.
func (f *FreeModuleHomomorphism) ComputeAuxiliaryDataThroughDegree(t int) {
	for d := f.source.MinDegree(); d <= t; d++ {
		f.auxFor(d)
	}
}

// Image returns the image subspace of f at source degree t.
func (f *FreeModuleHomomorphism) Image(t int) *matrix.Subspace { return f.auxFor(t).image }

// Kernel returns the kernel subspace of f at source degree t.
func (f *FreeModuleHomomorphism) Kernel(t int) *matrix.Subspace { return f.auxFor(t).kernel }

// QuasiInverse returns a one-sided right inverse of f at source degree t,
// defined on f's image.
func (f *FreeModuleHomomorphism) QuasiInverse(t int) *matrix.QuasiInverse { return f.auxFor(t).qi }
