// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

import "strconv"

// ValidPrime is a witness that a uint32 is prime and small enough for the
// packed limb layout (spec.md §3 "Prime p"). It is only ever constructed
// through NewValidPrime, so a ValidPrime value in the wild can be trusted.
type ValidPrime struct {
	p uint32
}

// NewValidPrime validates p and returns a witness, or ErrNotPrime.
func NewValidPrime(p uint32) (ValidPrime, error) {
	if p < 2 || p > maxSupportedPrime {
		return ValidPrime{}, ErrNotPrime
	}
	if !isPrime(p) {
		return ValidPrime{}, ErrNotPrime
	}
	return ValidPrime{p: p}, nil
}

// MustValidPrime is NewValidPrime but panics on an invalid argument; meant
// for use with compile-time-known primes (2, 3, 5, 7, ...).
func MustValidPrime(p uint32) ValidPrime {
	vp, err := NewValidPrime(p)
	if err != nil {
		panic(err)
	}
	return vp
}

// Uint32 returns the underlying prime.
func (vp ValidPrime) Uint32() uint32 { return vp.p }

func (vp ValidPrime) String() string { return strconv.FormatUint(uint64(vp.p), 10) }

// maxSupportedPrime bounds the primes for which the binomial table and limb
// layout are precomputed; there is no mathematical obstruction to larger
// primes, but the resolver is not expected to be run past this range.
const maxSupportedPrime = 1 << 16

// primeTable is a process-wide sieve, in the spirit of spec.md §9 "Global
// state": built once at package initialisation, never mutated after.
var primeTable = newSieve(maxSupportedPrime)

type sieve struct {
	composite []bool
}

func newSieve(n uint32) *sieve {
	s := &sieve{composite: make([]bool, n+1)}
	for i := uint32(2); i*i <= n; i++ {
		if s.composite[i] {
			continue
		}
		for j := i * i; j <= n; j += i {
			s.composite[j] = true
		}
	}
	return s
}

func isPrime(p uint32) bool {
	if p < 2 || p > maxSupportedPrime {
		return false
	}
	return !primeTable.composite[p]
}

// Inverse returns the multiplicative inverse of a mod p via Fermat's
// little theorem (a^{p-2} == a^{-1} mod p for prime p). Panics if a == 0.
func Inverse(p ValidPrime, a uint32) uint32 {
	a %= p.p
	if a == 0 {
		panic("fp: inverse of zero")
	}
	return powMod(a, p.p-2, p.p)
}

func powMod(base, exp, mod uint32) uint32 {
	result := uint64(1)
	b := uint64(base) % uint64(mod)
	e := exp
	m := uint64(mod)
	for e > 0 {
		if e&1 == 1 {
			result = (result * b) % m
		}
		b = (b * b) % m
		e >>= 1
	}
	return uint32(result)
}

// BitLength returns the smallest b such that p(p-1) < 2^b (spec.md §3
// "Limb"): the number of bits reserved per packed coefficient. For p=2 this
// is 1, for p=3 it is 3, for p=5 it is 5, matching the worked examples in
// the spec.
func BitLength(p ValidPrime) int {
	if p.p == 2 {
		// p=2 packs a single bit per entry; the general p(p-1) < 2^b
		// bound would give 2, but only one bit of information exists.
		return 1
	}
	bound := uint64(p.p) * uint64(p.p-1)
	b := 1
	for (uint64(1) << uint(b)) <= bound {
		b++
	}
	return b
}
