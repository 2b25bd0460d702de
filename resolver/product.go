// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolver

import (
	"fmt"

	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/module"
)

// liftProducts extends every registered product's chain map onto the k
// generators just added to P_s in degree t (spec.md §4.5 step 4: "for
// each requested filtration-one product, compute the action on the new
// generators by lifting through the unit resolution").
//
// Full correctness is scoped to a resolution of the trivial module: the
// representative cocycle of a product class h in bidegree (Δs, Δt) is
// simply the h-th generator of P_{Δs}, and the chain map φ_h: P_s ->
// P_{s+Δs} (internal degree shift -Δt) is built inductively over s by
// solving d_{s+Δs}(y) = φ_h(d_s(g)) with the target differential's
// quasi-inverse — the reattribution of spec.md §4.5's quasi-inverse
// language from step 3 (where it does not apply: a new generator's own
// image is already known to lie in the kernel, so y = v directly, no
// solve needed) to this step, where it genuinely is needed. Lifting a
// product against a distinct target module's own resolution would also
// need that module's structure maps composed in; that is out of scope
// here and reported as an error instead of silently producing a wrong
// answer.
func (r *Resolution) liftProducts(s, t, k int) error {
	if !r.isUnit {
		return nil // products are only auto-lifted while resolving the unit
	}
	r.mu.Lock()
	names := make([]string, 0, len(r.productTypes))
	for name := range r.productTypes {
		names = append(names, name)
	}
	r.mu.Unlock()

	for _, name := range names {
		if err := r.liftOneProduct(name, s, t, k); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolution) liftOneProduct(name string, s, t, k int) error {
	r.mu.Lock()
	pt := r.productTypes[name]
	phiS := r.productMaps[name][s]
	r.mu.Unlock()

	target := r.Module(s + pt.S)
	if phiS == nil {
		phiS = module.NewFreeModuleHomomorphism(r.Module(s), target, -pt.T)
		r.mu.Lock()
		r.productMaps[name][s] = phiS
		r.mu.Unlock()
	}

	if s == 0 {
		// The unit's only generator (degree 0) maps to the chosen
		// representative cocycle: the pt.GenIdx-th generator of P_{pt.S}
		// itself, viewed as an element of degree pt.T.
		if t != 0 {
			return nil // nothing to do outside the unit's own degree
		}
		target.ComputeBasis(pt.T)
		img := unitVectorIn(target, pt.T, pt.GenIdx)
		phiS.AddGeneratorImage(0, img)
		return nil
	}

	r.mu.Lock()
	prevPhi := r.productMaps[name][s-1]
	r.mu.Unlock()
	if prevPhi == nil {
		return fmt.Errorf("resolver: product %q not yet lifted to filtration %d", name, s-1)
	}

	dS := r.Differential(s)
	dTarget := r.Differential(s + pt.S) // P_{s+pt.S} -> P_{s+pt.S-1}
	prevTarget := r.Module(s - 1 + pt.S)
	targetDeg := t + pt.T
	target.ComputeBasis(targetDeg)
	prevTarget.ComputeBasis(targetDeg)
	dTarget.ComputeAuxiliaryDataThroughDegree(targetDeg)

	ps := r.Module(s)
	base := ps.Dimension(t) - k
	for i := 0; i < k; i++ {
		genIdx := base + i
		idx := ps.OperationGeneratorToIndex(0, 0, t, genIdx)

		dg := fp.NewFpVec(r.p, r.Module(s-1).Dimension(t))
		dS.ApplyToBasisElement(dg, 1, t, idx)

		w := fp.NewFpVec(r.p, prevTarget.Dimension(targetDeg))
		prevPhi.Apply(w, 1, t, dg)

		qi := dTarget.QuasiInverse(targetDeg)
		y := qi.Apply(w)
		phiS.AddGeneratorImage(t, y)
	}
	return nil
}

func unitVectorIn(m module.Module, t, idx int) *fp.FpVec {
	v := fp.NewFpVec(m.Prime(), m.Dimension(t))
	v.SetEntry(idx, 1)
	return v
}
