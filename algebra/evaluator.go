// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package algebra

import (
	"sync"

	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
)

// SteenrodEvaluator holds both bases of the Steenrod algebra at a prime
// and converts vectors between them, caching the per-degree change of
// basis (spec.md §4.3 "SteenrodEvaluator ... converts between the Adem
// and Milnor bases, lazily, per degree"). At odd primes there is no
// admissible-monomial basis (AdemAlgebra is p=2 only, see
// ErrUnsupportedPrime); the Milnor basis alone is authoritative there,
// and ToMilnor/ToAdem report ErrUnsupportedPrime.
type SteenrodEvaluator struct {
	p      fp.ValidPrime
	milnor *MilnorAlgebra
	adem   *AdemAlgebra // nil at odd primes

	mu           sync.Mutex
	ademToMilnor map[int][]*fp.FpVec
	milnorToAdem map[int]*matrix.QuasiInverse
}

// NewSteenrodEvaluator constructs both bases at p, restricted to profile
// (UnrestrictedProfile for the full algebra).
func NewSteenrodEvaluator(p fp.ValidPrime, profile Profile) *SteenrodEvaluator {
	adem, _ := NewAdemAlgebra(p) // nil, non-nil error at odd primes; ignored
	return &SteenrodEvaluator{
		p:            p,
		milnor:       NewMilnorAlgebra(p, profile),
		adem:         adem,
		ademToMilnor: make(map[int][]*fp.FpVec),
		milnorToAdem: make(map[int]*matrix.QuasiInverse),
	}
}

// Milnor returns the Milnor-basis algebra (always available).
func (e *SteenrodEvaluator) Milnor() *MilnorAlgebra { return e.milnor }

// SingleMilnorElement returns elt's degree and its unit vector in the
// Milnor basis of that degree (an all-zero vector if elt, or its
// restriction under the algebra's profile, is not a valid basis element).
// Used by wire's module-definition parser to turn a parsed Sq^n/P(...)/Q_i
// token into a vector before acting it on a generator.
func (e *SteenrodEvaluator) SingleMilnorElement(elt MilnorElt) (deg int, vec *fp.FpVec) {
	deg = elt.Degree(e.p)
	e.milnor.ComputeBasis(deg)
	v := fp.NewFpVec(e.p, e.milnor.Dimension(deg))
	if idx, ok := e.milnor.IndexOf(deg, elt); ok {
		v.SetEntry(idx, 1)
	}
	return deg, v
}

// UnitVector returns the degree-0 unit vector 1 in the Milnor basis.
func (e *SteenrodEvaluator) UnitVector() *fp.FpVec {
	e.milnor.ComputeBasis(0)
	v := fp.NewFpVec(e.p, e.milnor.Dimension(0))
	v.SetEntry(0, 1)
	return v
}

// Adem returns the Adem-basis algebra, or nil at odd primes.
func (e *SteenrodEvaluator) Adem() *AdemAlgebra { return e.adem }

// ToMilnor converts v, a vector in the Adem basis of degree t, to its
// Milnor-basis coordinates.
func (e *SteenrodEvaluator) ToMilnor(t int, v *fp.FpVec) (*fp.FpVec, error) {
	if e.adem == nil {
		return nil, ErrUnsupportedPrime
	}
	rows := e.ademToMilnorRowsFor(t)
	e.milnor.ComputeBasis(t)
	out := fp.NewFpVec(e.p, e.milnor.Dimension(t))
	for _, ent := range v.IterNonzero() {
		out.Add(rows[ent.Index], ent.Value)
	}
	return out, nil
}

// ToAdem converts v, a vector in the Milnor basis of degree t, to its
// Adem-basis coordinates.
func (e *SteenrodEvaluator) ToAdem(t int, v *fp.FpVec) (*fp.FpVec, error) {
	if e.adem == nil {
		return nil, ErrUnsupportedPrime
	}
	qi := e.milnorToAdemQIFor(t)
	return qi.Apply(v), nil
}

// ademToMilnorRowsFor returns (building and caching on first use) the
// Milnor-basis coordinate vector of every admissible monomial of degree
// t: row i is the Milnor expansion of the i-th admissible monomial,
// computed by iterated right-multiplication in the Milnor basis (spec.md
// §4.3; grounded on the base fact Sq(n) = Sq^n together with the Milnor
// matrix algorithm already verified in multiplyPParts).
func (e *SteenrodEvaluator) ademToMilnorRowsFor(t int) []*fp.FpVec {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rows, ok := e.ademToMilnor[t]; ok {
		return rows
	}
	e.adem.ComputeBasis(t)
	e.milnor.ComputeBasis(t)
	dim := e.adem.Dimension(t)
	rows := make([]*fp.FpVec, dim)
	for i, seq := range e.adem.basis[t] {
		rows[i] = e.ademMonomialToMilnor(seq)
	}
	e.ademToMilnor[t] = rows
	return rows
}

func (e *SteenrodEvaluator) ademMonomialToMilnor(seq []int) *fp.FpVec {
	if len(seq) == 0 {
		e.milnor.ComputeBasis(0)
		v := fp.NewFpVec(e.p, e.milnor.Dimension(0))
		v.SetEntry(0, 1)
		return v
	}
	curDeg := seq[0]
	acc := e.milnorSingle(seq[0])
	for _, ni := range seq[1:] {
		e.milnor.ComputeBasis(curDeg)
		e.milnor.ComputeBasis(ni)
		newDeg := curDeg + ni
		e.milnor.ComputeBasis(newDeg)
		niIdx := e.milnorSingleIndex(ni)
		out := fp.NewFpVec(e.p, e.milnor.Dimension(newDeg))
		for _, ent := range acc.IterNonzero() {
			e.milnor.MultiplyBasisElements(out, ent.Value, curDeg, ent.Index, ni, niIdx)
		}
		acc = out
		curDeg = newDeg
	}
	return acc
}

// milnorSingle returns the unit vector for the Milnor basis element
// P(n), the P-tuple whose only entry is r_1 = n (which equals
// Sq^n / Sq(n) by definition), in degree n.
func (e *SteenrodEvaluator) milnorSingle(n int) *fp.FpVec {
	e.milnor.ComputeBasis(n)
	v := fp.NewFpVec(e.p, e.milnor.Dimension(n))
	v.SetEntry(e.milnorSingleIndex(n), 1)
	return v
}

func (e *SteenrodEvaluator) milnorSingleIndex(n int) int {
	e.milnor.ComputeBasis(n)
	return e.milnor.index[n][(MilnorElt{P: []int{n}}).key()]
}

// milnorToAdemQIFor returns (building and caching on first use) the
// quasi-inverse of the degree-t Adem-to-Milnor change of basis: since
// both bases have equal dimension in every degree, this square map is
// invertible and its quasi-inverse is exact on the whole space (spec.md
// §4.2 "Augmented matrices" combined with §4.3's basis-dimension
// equality).
func (e *SteenrodEvaluator) milnorToAdemQIFor(t int) *matrix.QuasiInverse {
	e.mu.Lock()
	defer e.mu.Unlock()
	if qi, ok := e.milnorToAdem[t]; ok {
		return qi
	}
	rows := e.ademToMilnorRowsForLocked(t)
	dim := e.milnor.Dimension(t)
	m := matrix.FromRows(e.p, dim, rows)
	aug := matrix.NewAugmentedMatrix(m)
	aug.RowReduce()
	qi := aug.QuasiInverse()
	e.milnorToAdem[t] = qi
	return qi
}

// ademToMilnorRowsForLocked is ademToMilnorRowsFor without re-acquiring
// e.mu, for use by callers that already hold it.
func (e *SteenrodEvaluator) ademToMilnorRowsForLocked(t int) []*fp.FpVec {
	if rows, ok := e.ademToMilnor[t]; ok {
		return rows
	}
	e.adem.ComputeBasis(t)
	e.milnor.ComputeBasis(t)
	dim := e.adem.Dimension(t)
	rows := make([]*fp.FpVec, dim)
	for i, seq := range e.adem.basis[t] {
		rows[i] = e.ademMonomialToMilnor(seq)
	}
	e.ademToMilnor[t] = rows
	return rows
}
