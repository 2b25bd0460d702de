// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Walk runs process over every bidegree (s, t) with 0 <= s <= maxS and
// 0 <= t <= maxT, one long-lived goroutine per s sweeping t in increasing
// order, following the stem-shaped scheduling model of spec.md §5: task s
// may only process (s, t) after task s-1 has completed (s-1, t), and
// within a task t is already sequential so (s, t-1) happens-before
// (s, t) for free. This is the Go shape of
// original_source/ext/crates/thread-token/src/lib.rs's iter_s_t, which
// chains one completion channel per row into the next row's consumer.
//
// inStem restricts which bidegrees actually do resolver work; bidegrees
// outside it still participate in the box sweep (so the completion
// channels line up uniformly across every s) but process is not called
// for them — this lets a "stem" frontier (0 <= t-s <= N) and a "box"
// frontier (0 <= t <= T) share one scheduler instead of needing per-shape
// channel bookkeeping, which the original's per-s task ranges otherwise
// require.
//
// process errors abort the whole walk (via errgroup); the first error
// returned anywhere is returned by Walk.
func Walk(ctx context.Context, bucket *TokenBucket, maxS, maxT int, inStem func(s, t int) bool, process func(ctx context.Context, s, t int) error) error {
	g, ctx := errgroup.WithContext(ctx)

	// doneCh[s] carries, in increasing t order, the t of every bidegree
	// task s has finished; task s+1 consumes it to learn when (s, t) is
	// ready. Buffered so a fast producer never blocks on a slow consumer
	// starting late.
	doneCh := make([]chan int, maxS+2)
	for s := range doneCh {
		doneCh[s] = make(chan int, maxT+2)
	}

	for s := 0; s <= maxS; s++ {
		s := s
		g.Go(func() error {
			var tok *Token
			var err error
			release := func() {
				if tok != nil {
					tok.Release()
					tok = nil
				}
			}
			for t := 0; t <= maxT; t++ {
				if tok == nil {
					tok, err = bucket.Take(ctx)
					if err != nil {
						return err
					}
				}
				if s > 0 {
					if err := waitForRow(ctx, tok, doneCh[s], t); err != nil {
						release()
						return err
					}
				}
				if inStem(s, t) {
					if err := process(ctx, s, t); err != nil {
						release()
						return err
					}
				}
				if s+1 <= maxS {
					select {
					case doneCh[s+1] <- t:
					case <-ctx.Done():
						release()
						return ctx.Err()
					}
				}
			}
			release()
			return nil
		})
	}
	return g.Wait()
}

// waitForRow blocks until predecessor row ch has signalled completion
// through at least t, releasing the caller's token while it waits and
// reacquiring one before returning (the "release while waiting on a
// predecessor, then re-acquire to do work" suspension point of spec.md
// §5), discarding any earlier signals along the way.
func waitForRow(ctx context.Context, tok *Token, ch <-chan int, t int) error {
	tok.Release()
	for {
		select {
		case done := <-ch:
			if done >= t {
				nt, err := tok.bucket.Take(ctx)
				if err != nil {
					return err
				}
				*tok = *nt
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
