// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolver builds minimal free resolutions of graded modules over
// the Steenrod algebra (spec.md §4.5 "The resolver"): per-s free modules
// and differentials, grown degree by degree by step_resolution, with
// box/stem frontier shapes, save-file persistence and resume, and chain
// homotopy lifts.
package resolver

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
	"github.com/SpectralSequences/sseq-sub004/module"
)

// Frontier describes the bidegree range a resolution is grown over
// (spec.md §4.5 "Frontier shape"). t is always swept in increasing order,
// and within a degree s is swept from 0 upward.
type Frontier interface {
	// Contains reports whether (s, t) is inside the frontier.
	Contains(s, t int) bool
	// MaxS is the highest filtration this frontier ever asks for.
	MaxS() int
	// MaxT is the highest internal degree this frontier ever asks for.
	MaxT() int
}

// Box is the frontier 0 <= s <= S, s+minDegree <= t <= T.
type Box struct {
	S, T      int
	MinDegree int
}

func (b Box) Contains(s, t int) bool { return s <= b.S && t >= s+b.MinDegree && t <= b.T }
func (b Box) MaxS() int              { return b.S }
func (b Box) MaxT() int              { return b.T }

// Stem is the frontier 0 <= s <= S, 0 <= t-s <= N.
type Stem struct{ S, N int }

func (s Stem) Contains(ss, t int) bool { return ss <= s.S && t-ss >= 0 && t-ss <= s.N }
func (s Stem) MaxS() int              { return s.S }
func (s Stem) MaxT() int              { return s.S + s.N }

// ProductType names a filtration-one (or higher) multiplicative
// generator of a resolution's own Ext algebra — e.g. h_0, h_1 — by the
// bidegree and index of the resolution generator representing it
// (spec.md §4.5 "for each requested filtration-one product ... compute
// the action on the new generators by lifting through the unit
// resolution").
type ProductType struct {
	Name   string
	S, T   int // the generator's own bidegree
	GenIdx int
}

// Resolution is a minimal free resolution of a single graded module
// (spec.md §4.5 "State"): P_0 -> target -> 0, P_1 -> P_0, P_2 -> P_1, ...
// all of shift 0.
type Resolution struct {
	p      fp.ValidPrime
	target module.Module
	unit   *Resolution // nil if this resolution IS the unit
	isUnit bool
	log    zerolog.Logger

	mu           sync.Mutex
	modules      []*module.FreeModule
	diffs        []*module.FreeModuleHomomorphism // diffs[0]: P_0 -> target; diffs[s]: P_s -> P_{s-1}
	computed     map[int]int                      // s -> max t whose generators have been added
	productTypes map[string]ProductType
	productMaps  map[string]map[int]*module.FreeModuleHomomorphism // name -> s -> P_s -> P_{s+ps}
}

// NewResolution begins resolving target (spec.md §4.5). minDegree is the
// lowest internal degree P_0 may carry generators in.
func NewResolution(p fp.ValidPrime, target module.Module, minDegree int, log zerolog.Logger) *Resolution {
	r := &Resolution{
		p:            p,
		target:       target,
		log:          log,
		computed:     make(map[int]int),
		productTypes: make(map[string]ProductType),
		productMaps:  make(map[string]map[int]*module.FreeModuleHomomorphism),
	}
	p0 := module.NewFreeModule(target.Algebra(), "P0", minDegree)
	d0 := module.NewFreeModuleHomomorphism(p0, target, 0)
	r.modules = append(r.modules, p0)
	r.diffs = append(r.diffs, d0)
	r.computed[0] = minDegree - 1
	return r
}

// NewUnitResolution builds a resolution of the trivial module F_p
// concentrated in degree 0 (spec.md §4.5 "Unit resolution"): the module
// every product and Massey product is lifted against.
func NewUnitResolution(p fp.ValidPrime, alg algebra.Algebra, log zerolog.Logger) *Resolution {
	unit := module.NewFDModule(alg, "unit", 0)
	unit.AddGenerators(0, []string{"1"})
	r := NewResolution(p, unit, 0, log)
	r.isUnit = true
	return r
}

// IsUnit reports whether this resolution resolves the trivial module.
func (r *Resolution) IsUnit() bool { return r.isUnit }

// SetUnit attaches u as the unit resolution products are lifted against.
func (r *Resolution) SetUnit(u *Resolution) { r.unit = u }

// Module returns P_s, creating it (and P_0..P_{s-1} if necessary) first.
func (r *Resolution) Module(s int) *module.FreeModule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(s)
}

// Differential returns d_s: P_s -> P_{s-1} (or -> target for s=0).
func (r *Resolution) Differential(s int) *module.FreeModuleHomomorphism {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(s)
	return r.diffs[s]
}

func (r *Resolution) ensureLocked(s int) *module.FreeModule {
	for len(r.modules) <= s {
		next := len(r.modules)
		alg := r.target.Algebra()
		pm := module.NewFreeModule(alg, fmt.Sprintf("P%d", next), r.modules[0].MinDegree())
		d := module.NewFreeModuleHomomorphism(pm, r.modules[next-1], 0)
		r.modules = append(r.modules, pm)
		r.diffs = append(r.diffs, d)
		r.computed[next] = pm.MinDegree() - 1
	}
	return r.modules[s]
}

// AddProductType registers a named product represented by the resolution
// generator at (s, t, genIdx) (spec.md §4.5 step 4).
func (r *Resolution) AddProductType(pt ProductType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productTypes[pt.Name] = pt
	r.productMaps[pt.Name] = make(map[int]*module.FreeModuleHomomorphism)
}

// StepResolution adds generators to P_s in degree t and fills in d_s on
// them (spec.md §4.5 "step_resolution(s, t)"). Preconditions: P_{s-1} is
// known through degree t, and (for s>0) d_{s-1}'s kernel at t is
// computable, i.e. P_{s-1} and P_{s-2} have generators through t.
func (r *Resolution) StepResolution(s, t int) error {
	r.mu.Lock()
	r.ensureLocked(s)
	ds := r.diffs[s]
	ps := r.modules[s]
	var target module.Module
	if s == 0 {
		target = r.target
	} else {
		target = r.modules[s-1]
	}
	r.mu.Unlock()

	// Step 1: the image of d_s on generators already known (degree < t).
	ps.ComputeBasis(t)
	target.ComputeBasis(t)
	existingImage := ds.Image(t)

	// Step 2: ker(d_{s-1})_t modulo that image. At s=0 there is no
	// previous differential: every vector of the target module in degree
	// t is "in the kernel" (the trivial resolution step before P_0).
	dim := target.Dimension(t)
	var kernel *matrix.Subspace
	if s == 0 {
		kernel = fullSpace(r.p, dim)
	} else {
		r.mu.Lock()
		dsMinus1 := r.diffs[s-1]
		r.mu.Unlock()
		kernel = dsMinus1.Kernel(t)
	}
	remaining := matrix.NewSubspace(r.p, dim)
	for _, v := range kernel.Basis() {
		reduced := existingImage.Reduce(v)
		if !reduced.IsZero() {
			remaining.AddVector(reduced)
		}
	}

	// Step 3: one new generator per remaining basis vector, its
	// differential defined directly as that vector (already known to lie
	// in ker(d_{s-1}) and to be independent of the existing image, which
	// is exactly the minimality invariant spec.md §4.5 describes).
	newVecs := remaining.Basis()
	k := len(newVecs)
	if k > 0 {
		names := make([]string, k)
		for i := range names {
			names[i] = fmt.Sprintf("x_{%d,%d,%d}", s, t, i)
		}
		ps.AddGenerators(t, names)
		for _, v := range newVecs {
			ds.AddGeneratorImage(t, v)
		}
	} else {
		ps.AddGenerators(t, nil)
	}

	r.mu.Lock()
	r.computed[s] = t
	r.mu.Unlock()

	r.log.Debug().Int("s", s).Int("t", t).Int("new_gens", k).Msg("resolver: StepResolution")

	if k > 0 {
		if err := r.liftProducts(s, t, k); err != nil {
			return err
		}
	}
	return nil
}

func fullSpace(p fp.ValidPrime, dim int) *matrix.Subspace {
	s := matrix.NewSubspace(p, dim)
	for i := 0; i < dim; i++ {
		e := fp.NewFpVec(p, dim)
		e.SetEntry(i, 1)
		s.AddVector(e)
	}
	return s
}

// Resolve sweeps frontier in the order spec.md §4.5 requires: t
// increasing, and for each t, s from 0 upward.
func (r *Resolution) Resolve(frontier Frontier) error {
	for t := 0; t <= frontier.MaxT(); t++ {
		for s := 0; s <= frontier.MaxS(); s++ {
			if !frontier.Contains(s, t) {
				continue
			}
			if err := r.StepResolution(s, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// MaxComputedDegree returns the highest t for which P_s's generators have
// been fully determined.
func (r *Resolution) MaxComputedDegree(s int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.computed[s]
}

// CocycleString renders the (s, t, idx) generator as a human-readable
// name (spec.md §6 "QueryCocycleString").
func (r *Resolution) CocycleString(s, t, idx int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(s)
	return r.modules[s].BasisElementToString(t, idx)
}
