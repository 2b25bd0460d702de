// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when a serialised payload is shorter than its
// declared shape requires (spec.md §7 "Save-file corruption").
var ErrTruncated = errors.New("fp: truncated payload")

// ErrNotPrime is returned by NewValidPrime when the argument is not a prime
// the package knows how to pack, or is outside the supported range.
var ErrNotPrime = errors.New("fp: not a valid prime")

// ErrPrimeMismatch is the programmer-error panic value used when two FpVec,
// Matrix, or related values over different primes are combined. It is never
// returned as an error value: combining vectors over mismatched primes is a
// bug in the caller, not a data error, so it panics (spec.md §7).
type ErrPrimeMismatch struct {
	A, B ValidPrime
}

func (e ErrPrimeMismatch) Error() string {
	return "fp: prime mismatch: " + e.A.String() + " vs " + e.B.String()
}

// ErrLengthMismatch is the programmer-error panic value used when two FpVec
// of different logical lengths are combined in an operation that requires
// equal length.
type ErrLengthMismatch struct {
	A, B int
}

func (e ErrLengthMismatch) Error() string {
	return fmt.Sprintf("fp: length mismatch: %d vs %d", e.A, e.B)
}
