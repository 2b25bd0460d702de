// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sseq

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
)

// ProductType is a named filtration-shifting multiplicative structure
// (e.g. h_0, h_1) acting on every bidegree it has a recorded matrix for
// (spec.md §4.6 "Products"). Permanent marks the simplifying assumption
// this package makes for Leibniz propagation: a product class with no
// differentials of its own (true of h_0, h_1, h_2, h_3 in every range the
// scenarios in spec.md §8 exercise) contributes only the
// d_r(x)·p term of the Leibniz rule, never the x·d_r(p) term.
type ProductType struct {
	Name      string
	DX, DY    int
	Permanent bool
}

// Sseq is the spectral-sequence bookkeeper (spec.md §4.6): owned by a
// single goroutine (spec.md §5 "owned by a single thread ... other
// threads communicate by message"), tracking a ClassState per bidegree,
// a product table, and a block_refresh batching counter.
type Sseq struct {
	mu  sync.Mutex
	p   fp.ValidPrime
	log zerolog.Logger

	classes         map[Bidegree]*ClassState
	productTypes    map[string]ProductType
	productMatrices map[string]map[Bidegree]*matrix.Matrix

	blockRefresh int
	dirty        map[Bidegree]bool
}

// New returns an empty spectral sequence over p.
func New(p fp.ValidPrime, log zerolog.Logger) *Sseq {
	return &Sseq{
		p:               p,
		log:             log,
		classes:         make(map[Bidegree]*ClassState),
		productTypes:    make(map[string]ProductType),
		productMatrices: make(map[string]map[Bidegree]*matrix.Matrix),
		dirty:           make(map[Bidegree]bool),
	}
}

// AddClass records dim new classes at (x, y) (spec.md §4.6's "dim: the
// E_2 rank"); it is an error to call this twice for the same bidegree.
func (s *Sseq) AddClass(x, y, dim int) (*ClassState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := Bidegree{X: x, Y: y}
	if _, ok := s.classes[b]; ok {
		return nil, fmt.Errorf("sseq: class already recorded at (%d,%d)", x, y)
	}
	cs := newClassState(b, s.p, dim)
	s.classes[b] = cs
	s.dirty[b] = true
	s.log.Debug().Int("x", x).Int("y", y).Int("dim", dim).Msg("sseq: AddClass")
	return cs, nil
}

// Class returns the ClassState at (x, y), or nil if none has been added.
func (s *Sseq) Class(x, y int) *ClassState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes[Bidegree{X: x, Y: y}]
}

// AddProductType registers a named product with the given bidegree shift.
func (s *Sseq) AddProductType(pt ProductType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productTypes[pt.Name] = pt
	if _, ok := s.productMatrices[pt.Name]; !ok {
		s.productMatrices[pt.Name] = make(map[Bidegree]*matrix.Matrix)
	}
}

// AddProduct records the action matrix of product name at source bidegree
// (x, y): m has Dim(x,y) rows and Dim(x+dx, y+dy) columns, per
// ProductType's registered shift.
func (s *Sseq) AddProduct(name string, x, y int, m *matrix.Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productTypes[name]; !ok {
		return fmt.Errorf("sseq: unknown product type %q", name)
	}
	s.productMatrices[name][Bidegree{X: x, Y: y}] = m
	return nil
}

// BlockRefresh suppresses per-assertion page recomputation while
// on == true (for bulk loading); when a matching BlockRefresh(false)
// brings the nesting count back to zero, every dirty bidegree's pages are
// recomputed from scratch (spec.md §4.6 "Refresh").
func (s *Sseq) BlockRefresh(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.blockRefresh++
		return
	}
	if s.blockRefresh > 0 {
		s.blockRefresh--
	}
	if s.blockRefresh == 0 {
		s.refreshAllLocked()
	}
}

func (s *Sseq) refreshAllLocked() {
	for b := range s.dirty {
		cs, ok := s.classes[b]
		if !ok {
			continue
		}
		for r := range cs.diffs {
			cs.refreshPage(s.p, r, nil)
		}
	}
	s.dirty = make(map[Bidegree]bool)
}

type visitKey struct {
	r int
	b Bidegree
}

// AddDifferential asserts d_r(x,y) = (target at (x-1, y+r)) and
// propagates Leibniz consequences against every recorded product
// (spec.md §4.6 "Adding a differential"). target == nil asserts
// d_r(source) = 0, i.e. source is a cycle at this page.
func (s *Sseq) AddDifferential(r, x, y int, source, target *fp.FpVec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addDifferentialLocked(r, Bidegree{X: x, Y: y}, source, target, make(map[visitKey]bool))
}

func (s *Sseq) addDifferentialLocked(r int, src Bidegree, sourceVec, targetVec *fp.FpVec, visited map[visitKey]bool) error {
	key := visitKey{r: r, b: src}
	if visited[key] {
		return nil
	}
	visited[key] = true

	cs, ok := s.classes[src]
	if !ok {
		return fmt.Errorf("sseq: no class at bidegree (%d,%d)", src.X, src.Y)
	}
	targetBideg := Bidegree{X: src.X - 1, Y: src.Y + r}
	targetDim := 0
	if tcs, ok := s.classes[targetBideg]; ok {
		targetDim = tcs.Dim
	}
	d := cs.differentialAt(s.p, r, targetDim)
	grew := d.Add(sourceVec, targetVec)
	if !grew {
		return nil
	}

	s.dirty[src] = true
	s.dirty[targetBideg] = true
	if s.blockRefresh == 0 {
		cs.refreshPage(s.p, r, nil)
		if tcs, ok := s.classes[targetBideg]; ok {
			tcs.refreshPage(s.p, r, nil)
		}
	}
	s.log.Debug().Int("page", r).Int("x", src.X).Int("y", src.Y).Msg("sseq: AddDifferential")

	for name, pt := range s.productTypes {
		if !pt.Permanent {
			// p's own differential isn't tracked per-class in this model
			// (see ProductType doc); skip rather than silently assume zero.
			continue
		}
		srcMat, ok := s.productMatrices[name][src]
		if !ok {
			continue
		}
		zBideg := Bidegree{X: src.X + pt.DX, Y: src.Y + pt.DY}
		if _, ok := s.classes[zBideg]; !ok {
			continue
		}
		zSource := applyRow(srcMat, sourceVec)
		if zSource.IsZero() {
			continue
		}
		var zTarget *fp.FpVec
		if targetVec != nil {
			tgtMat, ok := s.productMatrices[name][targetBideg]
			if !ok {
				// p's action at the differential's target bidegree isn't
				// known yet; the Leibniz consequence can't be computed
				// until it is recorded.
				continue
			}
			zTarget = applyRow(tgtMat, targetVec)
		}
		if err := s.addDifferentialLocked(r, zBideg, zSource, zTarget, visited); err != nil {
			return err
		}
	}
	return nil
}

// applyRow computes v·m: v indexes m's rows, the result indexes m's
// columns (source_class · product, read off the product's action
// matrix).
func applyRow(m *matrix.Matrix, v *fp.FpVec) *fp.FpVec {
	rows, cols := m.Dims()
	p := m.Prime()
	out := fp.NewFpVec(p, cols)
	for _, e := range v.IterNonzero() {
		if e.Index >= rows {
			continue
		}
		out.Add(m.RowReadOnly(e.Index), e.Value)
	}
	return out
}
