// Copyright ©2026 The SpectralSequences Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package concurrent

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenBucketBoundsConcurrency(t *testing.T) {
	bucket := NewTokenBucket(2)
	ctx := context.Background()

	var mu sync.Mutex
	cur, maxSeen := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := bucket.Take(ctx)
			require.NoError(t, err)
			mu.Lock()
			cur++
			if cur > maxSeen {
				maxSeen = cur
			}
			mu.Unlock()
			mu.Lock()
			cur--
			mu.Unlock()
			tok.Release()
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, maxSeen, 2)
}

func TestOnceMapRunsInitExactlyOnce(t *testing.T) {
	m := NewOnceMap[int]()
	var mu sync.Mutex
	n := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.GetOrInit(2, 3, func() int {
				mu.Lock()
				n++
				mu.Unlock()
				return 42
			})
		}()
	}
	wg.Wait()
	require.Equal(t, 1, n)
	v, ok := m.Get(2, 3)
	require.True(t, ok)
	require.Equal(t, 42, v)

	_, ok = m.Get(9, 9)
	require.False(t, ok)
}

func TestWalkVisitsStemFrontierInOrder(t *testing.T) {
	bucket := NewTokenBucket(4)
	const maxS, maxT = 3, 6
	inStem := func(s, t int) bool { return t-s >= 0 && t-s <= 2 }

	var mu sync.Mutex
	seen := map[[2]int]bool{}
	prevTByRow := map[int]int{}

	err := Walk(context.Background(), bucket, maxS, maxT, inStem, func(ctx context.Context, s, deg int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[[2]int{s, deg}] = true
		if prev, ok := prevTByRow[s]; ok {
			require.Greater(t, deg, prev, "row %d regressed", s)
		}
		prevTByRow[s] = deg
		return nil
	})
	require.NoError(t, err)

	for s := 0; s <= maxS; s++ {
		for tt := 0; tt <= maxT; tt++ {
			if inStem(s, tt) {
				require.True(t, seen[[2]int{s, tt}], "missing (%d,%d)", s, tt)
			}
		}
	}
}
