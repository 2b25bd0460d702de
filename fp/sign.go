// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

// SignRule returns the parity (0 or 1) of the number of transpositions
// needed to sort the concatenation of a's and b's nonzero index sets into
// increasing order, interpreting each vector as a product of exterior
// generators named by its nonzero indices (spec.md §4.1 "Sign rule (p=2
// only)"). It panics if either vector is not over F_2.
//
// Used for the graded Leibniz rule: at p=2 every coefficient is 1, so the
// only bookkeeping Leibniz needs is this parity.
func SignRule(a, b *FpVec) int {
	if a.p.p != 2 || b.p.p != 2 {
		panic("fp: SignRule is only defined at p=2")
	}
	ai := a.IterNonzero()
	bi := b.IterNonzero()
	inversions := 0
	// a's generators precede b's in the concatenation; an inversion is a
	// pair (x in a, y in b) with x > y, since those two must swap past
	// each other to reach sorted order.
	for _, x := range ai {
		for _, y := range bi {
			if x.Index > y.Index {
				inversions++
			}
		}
	}
	return inversions & 1
}
