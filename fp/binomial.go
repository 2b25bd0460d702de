// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

import "sync"

// Binomial computes n choose k mod p via Lucas' theorem, reducing to a
// direct table of binomial coefficients for digits 0..p in base p. This
// mirrors the dispatch in the source's fp::prime::Binomial trait: p=2 gets
// a specialised bitwise test, other primes fall back to the digit-by-digit
// product.
func Binomial(p ValidPrime, n, k int) uint32 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if p.p == 2 {
		return binomial2(n, k)
	}
	return binomialOdd(p, n, k)
}

// binomial2 exploits Lucas' theorem at p=2: n choose k is odd iff every bit
// set in k is also set in n (Kummer's carry criterion), so the coefficient
// mod 2 is 1 exactly when (n & k) == k.
func binomial2(n, k int) uint32 {
	if n&k == k {
		return 1
	}
	return 0
}

// binomialOdd applies Lucas' theorem: write n and k in base p and multiply
// the direct table entries for each base-p digit pair.
func binomialOdd(p ValidPrime, n, k int) uint32 {
	result := uint32(1)
	pp := int(p.p)
	for n > 0 || k > 0 {
		nd, kd := n%pp, k%pp
		if kd > nd {
			return 0
		}
		result = (result * directBinomial(p, nd, kd)) % p.p
		n /= pp
		k /= pp
	}
	return result
}

// Multinomial computes the multinomial coefficient of l mod p, i.e.
// (sum l) choose l[0], l[1], ... . It mutates nothing; l is read only.
func Multinomial(p ValidPrime, l []int) uint32 {
	if p.p == 2 {
		return multinomial2(l)
	}
	return multinomialOdd(p, l)
}

// multinomial2 mirrors the source's multinomial2: mod 2, the multinomial
// coefficient is 1 exactly when the parts partition the bits of their sum
// disjointly (no carries in binary addition).
func multinomial2(l []int) uint32 {
	var bitOr, sum int
	for _, e := range l {
		sum += e
		bitOr |= e
	}
	if bitOr == sum {
		return 1
	}
	return 0
}

func multinomialOdd(p ValidPrime, l []int) uint32 {
	l = append([]int(nil), l...) // the digit loop below consumes its own copy
	result := uint32(1)
	n := 0
	for _, e := range l {
		n += e
	}
	for n > 0 {
		pp := int(p.p)
		digitSum := 0
		digits := make([]int, len(l))
		for i, e := range l {
			digits[i] = e % pp
			digitSum += digits[i]
			l[i] = e / pp
		}
		nd := n % pp
		n /= pp
		if digitSum > nd {
			return 0
		}
		result = (result * multinomialDirect(p, nd, digits)) % p.p
	}
	return result
}

// multinomialDirect computes (sum digits) choose digits as a product of
// direct binomials, where all entries are already known to be < p.
func multinomialDirect(p ValidPrime, n int, digits []int) uint32 {
	result := uint32(1)
	remaining := n
	for _, d := range digits {
		result = (result * directBinomial(p, remaining, d)) % p.p
		remaining -= d
	}
	return result
}

// directBinomial tables are lazily built per prime and cached forever
// (spec.md §9 "Global state": process-wide, initialised once, never
// mutated), mirroring the source's BINOMIAL_TABLE constant but computed on
// demand instead of code-generated.
var directTables sync.Map // map[uint32][][]uint32

func directBinomial(p ValidPrime, n, k int) uint32 {
	if k < 0 || n < 0 || k > n || n >= int(p.p) {
		if n >= int(p.p) {
			panic("fp: directBinomial called with n >= p")
		}
		return 0
	}
	tableIface, ok := directTables.Load(p.p)
	if !ok {
		tableIface, _ = directTables.LoadOrStore(p.p, buildDirectTable(p))
	}
	table := tableIface.([][]uint32)
	return table[n][k]
}

func buildDirectTable(p ValidPrime) [][]uint32 {
	pp := int(p.p)
	table := make([][]uint32, pp)
	for n := 0; n < pp; n++ {
		table[n] = make([]uint32, pp)
		table[n][0] = 1
		for k := 1; k <= n; k++ {
			table[n][k] = (table[n-1][k-1] + table[n-1][k]) % p.p
		}
	}
	return table
}
