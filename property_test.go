// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lueckem/sample-until"
)

// Collecting and folding the same finite sequence must yield the same
// multiset of samples for any worker count and batch size.
func TestCollectedAndFoldedAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)
		args := rapid.SliceOfN(rapid.IntRange(-100, 100), 0, 30).Draw(t, "args")
		workers := rapid.IntRange(1, 4).Draw(t, "workers")
		batch := rapid.IntRange(1, 8).Draw(t, "batch")
		ctx := context.Background()
		f := func(ctx context.Context, a int) (int, error) { return 3 * a, nil }

		collected, err := sample.UntilArgs(ctx, f, slices.Values(args),
			sample.WithWorkers(workers))
		chk.NoError(err)

		folded, count, err := sample.UntilFoldedArgs(ctx, f, slices.Values(args),
			func(acc []int, v int) []int { return append(acc, v) }, []int(nil),
			sample.WithWorkers(workers), sample.WithBatchSize(batch))
		chk.NoError(err)

		chk.Equal(int64(len(args)), count)
		chk.Len(collected, len(args))
		slices.Sort(collected)
		slices.Sort(folded)
		chk.Equal(collected, folded)
	})
}

// A sample count limit yields exactly that many samples in both modes, for
// any worker count and batch size.
func TestSampleBudgetIsExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)
		n := rapid.IntRange(1, 60).Draw(t, "n")
		workers := rapid.IntRange(1, 6).Draw(t, "workers")
		batch := rapid.IntRange(1, 9).Draw(t, "batch")
		ctx := context.Background()
		f := func(ctx context.Context) (int, error) { return 1, nil }

		samples, err := sample.Until(ctx, f,
			sample.WithMaxSamples(n), sample.WithWorkers(workers))
		chk.NoError(err)
		chk.Len(samples, n)

		total, count, err := sample.UntilFolded(ctx, f,
			func(acc, v int) int { return acc + v }, 0,
			sample.WithMaxSamples(n), sample.WithWorkers(workers), sample.WithBatchSize(batch))
		chk.NoError(err)
		chk.Equal(int64(n), count)
		chk.Equal(n, total)
	})
}

// The round-robin deal makes collected multi-worker output fully
// deterministic: worker w samples elements w, w+workers, and so on, and the
// result concatenates the workers' slices in worker order.
func TestRoundRobinDealIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)
		n := rapid.IntRange(0, 40).Draw(t, "n")
		workers := rapid.IntRange(1, 5).Draw(t, "workers")
		args := make([]int, n)
		for i := range args {
			args[i] = i
		}

		samples, err := sample.UntilArgs(
			context.Background(),
			func(ctx context.Context, a int) (int, error) { return a, nil },
			slices.Values(args),
			sample.WithWorkers(workers),
		)
		chk.NoError(err)

		var want []int
		for w := range workers {
			for i := w; i < n; i += workers {
				want = append(want, i)
			}
		}
		chk.Equal(want, samples)
	})
}
