// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolver

import (
	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/module"
)

// ChainHomotopy lifts two chain maps f, g: this resolution's P_* -> other's
// P_* that agree on homology into an explicit homotopy h with d h + h d =
// f - g (spec.md §4.5 "Chain homotopy lift"). h is built generator by
// generator, increasing s: h_s(x) is any solution of
// d_{s+1}(h_s(x)) = f(x) - g(x) - h_{s-1}(d_s(x)),
// found with other's differential's quasi-inverse at the target's degree —
// the right-hand side is already known to lie in that differential's
// image because f and g are themselves chain maps agreeing on H_0.
type ChainHomotopy struct {
	p     fp.ValidPrime
	from  *Resolution
	to    *Resolution
	f, g  map[int]*module.FreeModuleHomomorphism // s -> P_s(from) -> P_s(to), shift -Δt
	delta int                                    // internal degree shift common to f and g
	h     map[int]*module.FreeModuleHomomorphism // s -> P_s(from) -> P_{s+1}(to)
}

// NewChainHomotopy prepares a homotopy between f and g, two chain maps of
// the same internal degree shift delta from one resolution to another.
func NewChainHomotopy(from, to *Resolution, f, g map[int]*module.FreeModuleHomomorphism, delta int) *ChainHomotopy {
	return &ChainHomotopy{
		p:     from.p,
		from:  from,
		to:    to,
		f:     f,
		g:     g,
		delta: delta,
		h:     make(map[int]*module.FreeModuleHomomorphism),
	}
}

// Step builds h_s on the generators P_s(from) carries in degree t, given
// that h_{s-1} (if s>0) is already known through degree t.
func (c *ChainHomotopy) Step(s, t int) error {
	src := c.from.Module(s)
	dst := c.to.Module(s + 1)
	hs, ok := c.h[s]
	if !ok {
		hs = module.NewFreeModuleHomomorphism(src, dst, -(c.delta + 1))
		c.h[s] = hs
	}

	fS := c.f[s]
	gS := c.g[s]
	toDeg := t + c.delta
	dst.ComputeBasis(toDeg)
	dTo := c.to.Differential(s + 1)
	dTo.ComputeAuxiliaryDataThroughDegree(toDeg)

	// Step is called at most once per (s, t) pair, in the same ascending
	// order the resolver itself sweeps bidegrees, so every generator in
	// this degree is unlifted on entry.
	n := src.Dimension(t)
	for idx := 0; idx < n; idx++ {
		rhs := fp.NewFpVec(c.p, dst.Dimension(toDeg))
		if fS != nil {
			fS.ApplyToBasisElement(rhs, 1, t, idx)
		}
		if gS != nil {
			gS.ApplyToBasisElement(rhs, c.p.Uint32()-1, t, idx) // p-1 == -1 mod p
		}
		if s > 0 {
			if hPrev, ok := c.h[s-1]; ok {
				dPrev := fp.NewFpVec(c.p, c.from.Module(s-1).Dimension(t))
				c.from.Differential(s).ApplyToBasisElement(dPrev, 1, t, idx)
				hPrevImg := fp.NewFpVec(c.p, dst.Dimension(toDeg))
				hPrev.Apply(hPrevImg, c.p.Uint32()-1, t, dPrev)
				rhs.Add(hPrevImg, 1)
			}
		}
		qi := dTo.QuasiInverse(toDeg)
		y := qi.Apply(rhs)
		hs.AddGeneratorImage(t, y)
	}
	return nil
}

// Apply returns h_s applied to basis element idx of P_s(from) in degree
// t, as a vector of P_{s+1}(to) in degree t+delta, or nil if Step has not
// built h_s.
func (c *ChainHomotopy) Apply(s, t, idx int) *fp.FpVec {
	hs := c.h[s]
	if hs == nil {
		return nil
	}
	dst := c.to.Module(s + 1)
	toDeg := t + c.delta
	out := fp.NewFpVec(c.p, dst.Dimension(toDeg))
	hs.ApplyToBasisElement(out, 1, t, idx)
	return out
}
