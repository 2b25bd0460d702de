// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package algebra

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/SpectralSequences/sseq-sub004/fp"
	"github.com/SpectralSequences/sseq-sub004/matrix"
)

// ErrUnsupportedPrime is returned by NewAdemAlgebra for any prime other
// than 2. The Adem relations generalize to odd primes (with a separate
// family of beta/P relations), but none of this system's scenarios needs
// an odd-prime admissible basis and the Milnor basis already serves as
// the authoritative odd-prime basis (spec.md §4.3), so that second
// family is not implemented here.
var ErrUnsupportedPrime = errors.New("algebra: AdemAlgebra supports only p = 2")

// AdemAlgebra implements Algebra for the admissible-monomial basis of the
// mod-2 Steenrod algebra (spec.md §4.3 "Adem basis"). A sequence
// (i_1,...,i_k) is admissible when i_j >= 2*i_{j+1} for every j < k; the
// empty sequence is the unit.
type AdemAlgebra struct {
	p fp.ValidPrime

	mu     sync.Mutex
	basis  map[int][][]int
	index  map[int]map[string]int
	maxDeg int

	decompMu    sync.Mutex
	decompPairs map[int][][2]int
	decompTab   map[int]*decompTable
}

// decompTable is the row-reduced [products | pair-index] augmented
// matrix used to express a length-1 non-generator Sq^n as a combination
// of admissible products Sq^a·Sq^b, a+b=n (see DecomposeBasisElement).
type decompTable struct {
	dim    int
	pairs  int
	m      *matrix.Matrix
	pivots []int
}

// NewAdemAlgebra constructs the admissible basis at p. Only p = 2 is
// supported; see ErrUnsupportedPrime.
func NewAdemAlgebra(p fp.ValidPrime) (*AdemAlgebra, error) {
	if p.Uint32() != 2 {
		return nil, ErrUnsupportedPrime
	}
	return &AdemAlgebra{
		p:     p,
		basis: map[int][][]int{0: {{}}},
		index: map[int]map[string]int{0: {"": 0}},
	}, nil
}

func (a *AdemAlgebra) Prime() fp.ValidPrime { return a.p }

func admissibleKey(seq []int) string {
	strs := make([]string, len(seq))
	for i, v := range seq {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, ",")
}

// ComputeBasis extends the cached admissible-monomial tables through
// degree t (spec.md §4.3, §5: idempotent, monotonic, mutex-guarded).
func (a *AdemAlgebra) ComputeBasis(t int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t <= a.maxDeg {
		return
	}
	for d := a.maxDeg + 1; d <= t; d++ {
		a.basis[d] = enumerateAdmissible(d)
		idx := make(map[string]int, len(a.basis[d]))
		for i, seq := range a.basis[d] {
			idx[admissibleKey(seq)] = i
		}
		a.index[d] = idx
	}
	a.maxDeg = t
}

// enumerateAdmissible lists every admissible sequence of total degree d,
// built left to right: having placed i_1,...,i_j, the next entry is
// bounded above by floor(i_j/2).
func enumerateAdmissible(d int) [][]int {
	var rec func(remaining, maxFirst int) [][]int
	rec = func(remaining, maxFirst int) [][]int {
		out := [][]int{{}}
		top := remaining
		if maxFirst >= 0 && maxFirst < top {
			top = maxFirst
		}
		for i1 := 1; i1 <= top; i1++ {
			for _, suffix := range rec(remaining-i1, i1/2) {
				seq := append([]int{i1}, suffix...)
				out = append(out, seq)
			}
		}
		return out
	}
	all := rec(d, -1)
	results := make([][]int, 0, len(all))
	for _, seq := range all {
		sum := 0
		for _, v := range seq {
			sum += v
		}
		if sum == d {
			results = append(results, seq)
		}
	}
	return results
}

func (a *AdemAlgebra) Dimension(t int) int {
	a.ComputeBasis(t)
	if t < 0 {
		return 0
	}
	return len(a.basis[t])
}

func (a *AdemAlgebra) BasisElementToString(t, idx int) string {
	a.ComputeBasis(t)
	seq := a.basis[t][idx]
	if len(seq) == 0 {
		return "1"
	}
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = fmt.Sprintf("Sq^%d", v)
	}
	return strings.Join(parts, " ")
}

// Generators returns the indecomposable admissible monomials in degree
// t: the length-1 sequences (Sq^n) with n a power of 2 (spec.md §4.3).
func (a *AdemAlgebra) Generators(t int) []int {
	a.ComputeBasis(t)
	var out []int
	for i, seq := range a.basis[t] {
		if len(seq) == 1 && isPowerOfTwo(seq[0]) {
			out = append(out, i)
		}
	}
	return out
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// MultiplyBasisElements accumulates c·Sq^R·Sq^S into out (spec.md §4.3
// "Adem basis ... Multiplication reduces inadmissible pairs via the Adem
// relations").
func (a *AdemAlgebra) MultiplyBasisElements(out *fp.FpVec, c uint32, tR, rIdx, tS, sIdx int) {
	a.ComputeBasis(tR)
	a.ComputeBasis(tS)
	target := tR + tS
	a.ComputeBasis(target)
	r := a.basis[tR][rIdx]
	s := a.basis[tS][sIdx]
	terms := a.multiply(r, s)
	for key, coeff := range terms {
		if coeff == 0 {
			continue
		}
		idx, ok := a.index[target][key]
		if !ok {
			continue
		}
		out.AddBasisElement(idx, (c*coeff)%2)
	}
}

// multiply computes the admissible-basis expansion of the sequence
// concatenation r·s, applying the Adem relation at the junction and
// recursing until every term is admissible (spec.md §4.3). Classical
// algorithm: if r is empty or r's last entry already dominates s's
// first entry (last >= 2*first), the concatenation is already
// admissible; otherwise rewrite the junction pair via ademRelation and
// recurse on each resulting (shorter-junction) sequence.
func (a *AdemAlgebra) multiply(r, s []int) map[string]uint32 {
	if len(r) == 0 {
		return map[string]uint32{admissibleKey(s): 1}
	}
	if len(s) == 0 {
		return map[string]uint32{admissibleKey(r): 1}
	}
	last := r[len(r)-1]
	first := s[0]
	if last >= 2*first {
		return map[string]uint32{admissibleKey(append(append([]int(nil), r...), s...)): 1}
	}
	out := make(map[string]uint32)
	for _, term := range ademRelation(last, first) {
		// Sq^0 is the unit, so a c = 0 term leaves only s[1:] on the right.
		rights := map[string]uint32{admissibleKey(s[1:]): 1}
		if term.c > 0 {
			rights = a.multiply([]int{term.c}, s[1:])
		}
		// r[:len(r)-1]·Sq^{newI} and Sq^c·s[1:] need not be admissible
		// themselves, so each side is expanded before the two are joined.
		for lk, lc := range a.multiply(r[:len(r)-1], []int{term.newI}) {
			for rk, rc := range rights {
				for key, coeff := range a.multiply(parsePKey(lk), parsePKey(rk)) {
					v := (coeff * lc * rc * term.coeff) % 2
					out[key] = (out[key] + v) % 2
				}
			}
		}
	}
	return out
}

type ademTerm struct {
	newI, c int
	coeff   uint32
}

// ademRelation expands the inadmissible pair Sq^a Sq^b (a < 2b) via the
// Adem relation Sq^a Sq^b = sum_{c=0}^{floor(a/2)} C(b-c-1, a-2c) mod 2 ·
// Sq^{a+b-c} Sq^c.
func ademRelation(a, b int) []ademTerm {
	var out []ademTerm
	p2 := fp.MustValidPrime(2)
	for c := 0; c <= a/2; c++ {
		n := b - c - 1
		k := a - 2*c
		if n < 0 || k < 0 {
			continue
		}
		coeff := fp.Binomial(p2, n, k)
		if coeff == 0 {
			continue
		}
		out = append(out, ademTerm{newI: a + b - c, c: c, coeff: coeff})
	}
	return out
}

// DecomposeBasisElement expresses a non-generator admissible monomial as
// a sum of products of strictly smaller degree (spec.md §3
// "decompose_basis_element"). Sequences of length >= 2 split trivially
// at the first entry. Length-1 sequences Sq^n with n not a power of 2
// have no such trivial split (Sq^n is a single letter); instead this
// solves, via row reduction over the span of {Sq^a·Sq^b : a+b=n}, for a
// combination of admissible products of strictly smaller degree whose
// sum equals Sq^n exactly (spec.md §4.3 "the Adem relations make every
// non-generator decomposable").
func (a *AdemAlgebra) DecomposeBasisElement(t, idx int) []Decomposition {
	a.ComputeBasis(t)
	seq := a.basis[t][idx]
	if len(seq) >= 2 {
		head := []int{seq[0]}
		tail := append([]int(nil), seq[1:]...)
		headDeg := seq[0]
		tailDeg := t - headDeg
		return []Decomposition{{
			Coeff: 1,
			DegA:  headDeg, IdxA: a.indexOf(headDeg, head),
			DegB: tailDeg, IdxB: a.indexOf(tailDeg, tail),
		}}
	}
	// length-1, not a generator (t not a power of 2): solve for the
	// decomposition by reducing e_idx against the row-reduced span of
	// {Sq^a·Sq^b : a+b=t}.
	dt, pairs := a.decompTableFor(t)
	target := fp.NewFpVec(a.p, dt.dim)
	target.SetEntry(idx, 1)
	combo := fp.NewFpVec(a.p, dt.pairs)
	prime := a.p.Uint32()
	for col := 0; col < dt.dim; col++ {
		row := dt.pivots[col]
		if row < 0 {
			continue
		}
		factor := target.Entry(col)
		if factor == 0 {
			continue
		}
		full := dt.m.RowReadOnly(row)
		target.SliceMut(0, dt.dim).Add(full.Slice(0, dt.dim), (prime-factor)%prime)
		combo.SliceMut(0, dt.pairs).Add(full.Slice(dt.dim, dt.dim+dt.pairs), factor)
	}
	var decomp []Decomposition
	for _, e := range combo.IterNonzero() {
		pr := pairs[e.Index]
		decomp = append(decomp, Decomposition{
			Coeff: e.Value,
			DegA:  pr[0], IdxA: a.indexOf(pr[0], []int{pr[0]}),
			DegB: pr[1], IdxB: a.indexOf(pr[1], []int{pr[1]}),
		})
	}
	return decomp
}

func (a *AdemAlgebra) indexOf(t int, seq []int) int {
	a.ComputeBasis(t)
	return a.index[t][admissibleKey(seq)]
}

// decompTableFor builds (and caches) the row-reduced [products | pair
// index] augmented matrix for degree t: row k is [multiply(a_k,b_k) |
// e_k] for every split a_k+b_k=t, 1<=a_k,b_k<t. Reducing any target
// vector against the pivot rows (see DecomposeBasisElement) recovers a
// combination of those products equal to the target, by the invariant
// that row reduction preserves "tail records which combination of
// original rows produced this row" (spec.md §4.2 "Augmented matrices").
func (a *AdemAlgebra) decompTableFor(t int) (*decompTable, [][2]int) {
	a.decompMu.Lock()
	defer a.decompMu.Unlock()
	if a.decompTab == nil {
		a.decompTab = make(map[int]*decompTable)
		a.decompPairs = make(map[int][][2]int)
	}
	if dt, ok := a.decompTab[t]; ok {
		return dt, a.decompPairs[t]
	}
	dim := a.Dimension(t)
	var pairs [][2]int
	var rowVecs []*fp.FpVec
	for aDeg := 1; aDeg < t; aDeg++ {
		bDeg := t - aDeg
		if bDeg < 1 {
			continue
		}
		row := fp.NewFpVec(a.p, dim)
		terms := a.multiply([]int{aDeg}, []int{bDeg})
		for key, coeff := range terms {
			if coeff == 0 {
				continue
			}
			if idx, ok := a.index[t][key]; ok {
				row.SetEntry(idx, coeff)
			}
		}
		pairs = append(pairs, [2]int{aDeg, bDeg})
		rowVecs = append(rowVecs, row)
	}
	numPairs := len(pairs)
	m := matrix.NewMatrix(a.p, numPairs, dim+numPairs)
	for k, row := range rowVecs {
		dst := m.Row(k)
		for j := 0; j < dim; j++ {
			dst.SetEntry(j, row.Entry(j))
		}
		dst.SetEntry(dim+k, 1)
	}
	pivots := m.RowReduceUpTo(dim)
	dt := &decompTable{dim: dim, pairs: numPairs, m: m, pivots: pivots}
	a.decompTab[t] = dt
	a.decompPairs[t] = pairs
	return dt, pairs
}
