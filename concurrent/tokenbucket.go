// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package concurrent implements the resolver's concurrency harness
// (spec.md §5): a TokenBucket bounding the number of simultaneously
// running bidegree computations, a stem-shaped parallel walk over the
// triangular (s, t) frontier, and an append-only, write-once-per-key
// OnceMap for sparse bidegree-indexed generator containers (spec.md §9
// "Generator containers").
package concurrent

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// TokenBucket bounds concurrency to at most maxThreads simultaneous
// holders, grounded on original_source/ext/crates/thread-token/src/lib.rs's
// Token/TokenBucket pair: take_token blocks until a slot is free,
// release_token frees one and wakes a waiter. Backed by
// golang.org/x/sync/semaphore.Weighted rather than a hand-rolled
// mutex+condvar, since the package is already a direct dependency of the
// example pack (see DESIGN.md).
type TokenBucket struct {
	sem *semaphore.Weighted
}

// NewTokenBucket returns a bucket admitting at most maxThreads concurrent
// token holders. maxThreads <= 0 is treated as 1 (always at least one
// worker may proceed).
func NewTokenBucket(maxThreads int) *TokenBucket {
	if maxThreads <= 0 {
		maxThreads = 1
	}
	return &TokenBucket{sem: semaphore.NewWeighted(int64(maxThreads))}
}

// Token is a single held slot in a TokenBucket. The zero value is not
// usable; obtain one from TokenBucket.Take.
type Token struct {
	bucket   *TokenBucket
	released bool
}

// Take blocks until a slot is available (or ctx is done) and returns the
// held token.
func (b *TokenBucket) Take(ctx context.Context) (*Token, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Token{bucket: b}, nil
}

// Release frees the token's slot, waking one waiter if any. Safe to call
// more than once; only the first call has an effect (mirrors the Rust
// Token's Drop releasing exactly once).
func (t *Token) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	t.bucket.sem.Release(1)
}

// RecvOrRelease releases t's slot, waits on done (or ctx), then
// re-acquires a slot before returning — the "release while waiting on a
// predecessor, then re-acquire to do work" pattern thread-token's
// recv_or_release documents as the common suspension point (spec.md §5
// "Suspension points"). On success *t is replaced with the freshly
// reacquired token; on error the caller holds no token.
func (t *Token) RecvOrRelease(ctx context.Context, done <-chan struct{}) error {
	t.Release()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	nt, err := t.bucket.Take(ctx)
	if err != nil {
		return err
	}
	*t = *nt
	return nil
}
