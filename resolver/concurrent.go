// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolver

import (
	"context"

	"github.com/SpectralSequences/sseq-sub004/concurrent"
	"github.com/SpectralSequences/sseq-sub004/wire"
)

// ResolveConcurrent sweeps frontier with one goroutine per filtration s,
// bounded to bucket's thread count, following the stem-shaped scheduling
// model (spec.md §5 "Concurrency model"): task s processes (s, t) only
// after task s-1 has finished (s-1, t), which is exactly the dependency
// StepResolution needs (P_{s-1} and d_{s-1} known through t).
func (r *Resolution) ResolveConcurrent(ctx context.Context, bucket *concurrent.TokenBucket, frontier Frontier) error {
	return concurrent.Walk(ctx, bucket, frontier.MaxS(), frontier.MaxT(), frontier.Contains,
		func(ctx context.Context, s, t int) error {
			return r.StepResolution(s, t)
		})
}

// ResolveConcurrentWithSaves is ResolveConcurrent, consulting and
// populating dir the way ResolveWithSaves does.
func (r *Resolution) ResolveConcurrentWithSaves(ctx context.Context, bucket *concurrent.TokenBucket, frontier Frontier, dir wire.SaveDir) error {
	algID := r.algebraID()
	return concurrent.Walk(ctx, bucket, frontier.MaxS(), frontier.MaxT(), frontier.Contains,
		func(ctx context.Context, s, t int) error {
			return r.stepWithSave(s, t, dir, algID)
		})
}
