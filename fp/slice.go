// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

// SliceView is a lightweight, possibly-unaligned read-only view of a
// contiguous logical range [start, end) of an FpVec (spec.md §4.1 "A slice
// may begin mid-limb"). It does not copy the backing limbs.
type SliceView struct {
	v          *FpVec
	start, end int
}

// Slice returns a read-only view of v[a:b].
func (v *FpVec) Slice(a, b int) SliceView {
	if a < 0 || b > v.n || a > b {
		panic("fp: slice out of range")
	}
	return SliceView{v: v, start: a, end: b}
}

// Len returns the logical length of the slice.
func (s SliceView) Len() int { return s.end - s.start }

// Entry returns the i-th entry of the slice (0-indexed within the slice).
func (s SliceView) Entry(i int) uint32 {
	if i < 0 || i >= s.Len() {
		panic("fp: index out of range")
	}
	return s.v.Entry(s.start + i)
}

// ToVec materialises the slice as an owned FpVec.
func (s SliceView) ToVec() *FpVec {
	out := NewFpVec(s.v.p, s.Len())
	for i := 0; i < s.Len(); i++ {
		out.SetEntry(i, s.Entry(i))
	}
	return out
}

// MutSliceView is the mutable counterpart of SliceView, used by row
// reduction to operate on a sub-range of a row in place without copying.
type MutSliceView struct {
	v          *FpVec
	start, end int
}

// SliceMut returns a mutable view of v[a:b).
func (v *FpVec) SliceMut(a, b int) MutSliceView {
	if a < 0 || b > v.n || a > b {
		panic("fp: slice out of range")
	}
	return MutSliceView{v: v, start: a, end: b}
}

// Len returns the logical length of the slice.
func (s MutSliceView) Len() int { return s.end - s.start }

// Entry returns the i-th entry (0-indexed within the slice).
func (s MutSliceView) Entry(i int) uint32 {
	if i < 0 || i >= s.Len() {
		panic("fp: index out of range")
	}
	return s.v.Entry(s.start + i)
}

// SetEntry sets the i-th entry (0-indexed within the slice).
func (s MutSliceView) SetEntry(i int, c uint32) {
	if i < 0 || i >= s.Len() {
		panic("fp: index out of range")
	}
	s.v.SetEntry(s.start+i, c)
}

// Add performs self += c*other over the slice range; both slices must have
// equal length and the same prime.
func (s MutSliceView) Add(other SliceView, c uint32) {
	if s.v.p.p != other.v.p.p {
		panic(ErrPrimeMismatch{A: s.v.p, B: other.v.p})
	}
	if s.Len() != other.Len() {
		panic(ErrLengthMismatch{A: s.Len(), B: other.Len()})
	}
	c %= s.v.p.p
	if c == 0 {
		return
	}
	for i := 0; i < s.Len(); i++ {
		sum := (s.Entry(i) + c*other.Entry(i)) % s.v.p.p
		s.SetEntry(i, sum)
	}
}
