// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

import "golang.org/x/sys/cpu"

// addLimbsP2Impl is swapped at init() time based on detected CPU features,
// mirroring the runtime-dispatch idiom used for axpyUnitaryImpl in
// gonum/internal/asm/f64/axpy_amd64.go. At p=2, vector addition with a
// nonzero scalar is just XOR: there is no coefficient overflow to reduce,
// so the "vectorised" path is a tight word-at-a-time XOR loop; on amd64
// with AVX2 available the same loop still compiles to wide vector XORs,
// but we keep a single Go implementation and only vary the unroll factor,
// since Go offers no portable SIMD intrinsics outside assembly stubs.
var addLimbsP2Impl func(dst, src []uint64)

func init() {
	if cpu.X86.HasAVX2 {
		addLimbsP2Impl = addLimbsP2Unrolled4
	} else {
		addLimbsP2Impl = addLimbsP2Scalar
	}
}

// addLimbsP2 computes dst ^= src when c is odd (the only nonzero scalar mod
// 2); c==0 is handled by the caller before reaching here.
func addLimbsP2(dst, src []uint64, c uint32) {
	if c&1 == 0 {
		return
	}
	addLimbsP2Impl(dst, src)
}

func addLimbsP2Scalar(dst, src []uint64) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// addLimbsP2Unrolled4 processes four limbs per iteration. This has no
// effect on correctness versus the scalar loop; it exists because AVX2
// hardware retires four 64-bit XORs per cycle about as cheaply as one, and
// unrolling lets the Go compiler schedule independent XORs back to back
// instead of serialising through a single loop-carried dependency.
func addLimbsP2Unrolled4(dst, src []uint64) {
	n := len(dst)
	i := 0
	for ; i+4 <= n; i += 4 {
		dst[i] ^= src[i]
		dst[i+1] ^= src[i+1]
		dst[i+2] ^= src[i+2]
		dst[i+3] ^= src[i+3]
	}
	for ; i < n; i++ {
		dst[i] ^= src[i]
	}
}
