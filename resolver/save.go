// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolver

import (
	"errors"
	"fmt"

	"github.com/SpectralSequences/sseq-sub004/algebra"
	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/module"
	"github.com/SpectralSequences/sseq-sub004/wire"
)

// ResolveWithSaves sweeps frontier like Resolve, but consults dir before
// computing each (s, t) and stores the result after (spec.md §4.5
// "Save files" and §7 "Resume"). On a fresh run with no save data, this
// is equivalent to Resolve; given a partially-populated save directory it
// resumes from the first bidegree with no saved differential, recomputing
// nothing earlier.
func (r *Resolution) ResolveWithSaves(frontier Frontier, dir wire.SaveDir) error {
	algID := r.algebraID()
	for t := 0; t <= frontier.MaxT(); t++ {
		for s := 0; s <= frontier.MaxS(); s++ {
			if !frontier.Contains(s, t) {
				continue
			}
			if err := r.stepWithSave(s, t, dir, algID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Resolution) algebraID() wire.AlgebraID {
	switch r.target.Algebra().(type) {
	case *algebra.AdemAlgebra:
		return wire.AlgebraAdem
	default:
		return wire.AlgebraMilnor
	}
}

func (r *Resolution) stepWithSave(s, t int, dir wire.SaveDir, algID wire.AlgebraID) error {
	r.mu.Lock()
	r.ensureLocked(s)
	ps := r.modules[s]
	ds := r.diffs[s]
	r.mu.Unlock()

	rec, err := dir.Load(wire.KindDifferential, s, t)
	switch {
	case err == nil:
		return r.restoreStep(s, t, ps, ds, rec)
	case errors.Is(err, wire.ErrNotFound):
		// not yet computed (or not yet saved); fall through and compute it
	default:
		return fmt.Errorf("resolver: loading save for (%d,%d): %w", s, t, err)
	}

	if err := r.StepResolution(s, t); err != nil {
		return err
	}

	newGens := generatorImagesAt(ds, t)
	payload, err := wire.EncodeVectors(newGens)
	if err != nil {
		return err
	}
	if dir.Write == "" {
		return nil // read-only save dir: nothing more to do
	}
	return dir.Store(wire.KindDifferential, algID, r.p, s, t, payload)
}

// restoreStep replays a saved (s, t) step: it adds the same number of
// generators StepResolution would have, with the differential images read
// back from the save file instead of recomputed (spec.md §7 "a resumed
// run must reconstruct identical state to an uninterrupted one").
func (r *Resolution) restoreStep(s, t int, ps *module.FreeModule, ds *module.FreeModuleHomomorphism, rec *wire.Record) error {
	vecs, err := wire.DecodeVectors(r.p, rec.Payload)
	if err != nil {
		return err
	}
	target := ds.Target()
	target.ComputeBasis(t)
	k := len(vecs)
	if k > 0 {
		names := make([]string, k)
		for i := range names {
			names[i] = fmt.Sprintf("x_{%d,%d,%d}", s, t, i)
		}
		ps.AddGenerators(t, names)
		for _, v := range vecs {
			ds.AddGeneratorImage(t, v)
		}
	} else {
		ps.AddGenerators(t, nil)
	}
	r.mu.Lock()
	r.computed[s] = t
	r.mu.Unlock()
	if k > 0 {
		return r.liftProducts(s, t, k)
	}
	return nil
}

func generatorImagesAt(ds *module.FreeModuleHomomorphism, t int) []*fp.FpVec {
	ds.Source().ComputeBasis(t)
	n := ds.Source().GeneratorsInDegree(t)
	out := make([]*fp.FpVec, 0, n)
	for i := 0; i < n; i++ {
		idx := ds.Source().OperationGeneratorToIndex(0, 0, t, i)
		img := fp.NewFpVec(ds.Source().Prime(), ds.Target().Dimension(t-ds.DegreeShift()))
		ds.ApplyToBasisElement(img, 1, t, idx)
		out = append(out, img)
	}
	return out
}
