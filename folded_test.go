// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample_test

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lueckem/sample-until"
)

func TestUntilFoldedSum(t *testing.T) {
	chk := require.New(t)
	acc, count, err := sample.UntilFolded(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		func(acc, v int) int { return acc + v },
		0,
		sample.WithMaxSamples(50),
	)
	chk.NoError(err)
	chk.Equal(int64(50), count)
	chk.Equal(50, acc)
}

func TestUntilFoldedNoStopCondition(t *testing.T) {
	chk := require.New(t)
	acc, count, err := sample.UntilFolded(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		func(acc, v int) int { return acc + v },
		42,
	)
	chk.ErrorIs(err, sample.ErrNoStopCondition)
	chk.Equal(42, acc, "the initial accumulator comes back untouched")
	chk.Zero(count)
}

func TestUntilFoldedNilFoldPanic(t *testing.T) {
	chk := require.New(t)
	chk.PanicsWithValue("fold function must be non-nil", func() {
		_, _, _ = sample.UntilFolded(
			context.Background(),
			func(ctx context.Context) (int, error) { return 1, nil },
			nil, // Nil fold function should panic
			0,
			sample.WithMaxSamples(1),
		)
	})
}

func TestUntilFoldedRejectsOutputLimit(t *testing.T) {
	chk := require.New(t)
	_, _, err := sample.UntilFolded(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		func(acc, v int) int { return acc + v },
		0,
		sample.WithMaxSamples(5),
		sample.WithMaxOutputBytes(100),
	)
	chk.ErrorIs(err, sample.ErrInvalidOption)
	chk.ErrorContains(err, "output size limit")
}

func TestUntilFoldedWorkersExactCount(t *testing.T) {
	chk := require.New(t)
	var calls atomic.Int64
	acc, count, err := sample.UntilFolded(
		context.Background(),
		func(ctx context.Context) (int, error) {
			calls.Add(1)
			return 1, nil
		},
		func(acc, v int) int { return acc + v },
		0,
		sample.WithMaxSamples(100),
		sample.WithWorkers(4),
	)
	chk.NoError(err)
	chk.Equal(int64(100), count, "the fold goroutine stops exactly at the budget")
	chk.Equal(100, acc)
	chk.GreaterOrEqual(calls.Load(), int64(100), "producers may overshoot; the fold may not")
}

func TestUntilFoldedArgsSum(t *testing.T) {
	chk := require.New(t)
	acc, count, err := sample.UntilFoldedArgs(
		context.Background(),
		func(ctx context.Context, a int) (int, error) { return a, nil },
		slices.Values([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
		func(acc, v int) int { return acc + v },
		0,
	)
	chk.NoError(err)
	chk.Equal(int64(10), count)
	chk.Equal(55, acc)
}

func TestUntilFoldedArgsSingleWorkerKeepsOrder(t *testing.T) {
	chk := require.New(t)
	acc, count, err := sample.UntilFoldedArgs(
		context.Background(),
		func(ctx context.Context, a int) (int, error) { return a, nil },
		slices.Values([]int{1, 2, 3, 4, 5}),
		func(acc []int, v int) []int { return append(acc, v) },
		[]int(nil),
	)
	chk.NoError(err)
	chk.Equal(int64(5), count)
	chk.Equal([]int{1, 2, 3, 4, 5}, acc)
}

func TestUntilFoldedArgsWorkersConsumeEverything(t *testing.T) {
	chk := require.New(t)
	acc, count, err := sample.UntilFoldedArgs(
		context.Background(),
		func(ctx context.Context, a int) (int, error) { return a, nil },
		slices.Values([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
		func(acc, v int) int { return acc + v },
		0,
		sample.WithWorkers(3),
	)
	chk.NoError(err)
	chk.Equal(int64(10), count)
	chk.Equal(55, acc, "the sum does not depend on fold order")
}

func TestUntilFoldedBatchingIsTransparent(t *testing.T) {
	chk := require.New(t)
	args := make([]int, 40)
	for i := range args {
		args[i] = i
	}
	acc, count, err := sample.UntilFoldedArgs(
		context.Background(),
		func(ctx context.Context, a int) (int, error) { return a, nil },
		slices.Values(args),
		func(acc, v int) int { return acc + v },
		0,
		sample.WithWorkers(3),
		sample.WithBatchSize(7),
	)
	chk.NoError(err)
	chk.Equal(int64(40), count, "partial batches are flushed when the feed runs dry")
	chk.Equal(780, acc)
}

func TestUntilFoldedArgsInfiniteSequenceCountExact(t *testing.T) {
	chk := require.New(t)
	naturals := func(yield func(int) bool) {
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
	_, count, err := sample.UntilFoldedArgs(
		context.Background(),
		func(ctx context.Context, a int) (int, error) { return a, nil },
		naturals,
		func(acc, v int) int { return acc + v },
		0,
		sample.WithMaxSamples(25),
		sample.WithWorkers(4),
	)
	chk.NoError(err)
	chk.Equal(int64(25), count)
}

func TestUntilFoldedProducerError(t *testing.T) {
	chk := require.New(t)
	boom := errors.New("boom")
	var calls atomic.Int64
	acc, count, err := sample.UntilFolded(
		context.Background(),
		func(ctx context.Context) (int, error) {
			if calls.Add(1) == 7 {
				return 0, boom
			}
			return 1, nil
		},
		func(acc, v int) int { return acc + v },
		0,
		sample.WithMaxSamples(1_000_000),
		sample.WithWorkers(3),
	)
	chk.ErrorIs(err, boom)
	chk.Equal(int64(acc), count, "the accumulator reflects exactly the folded samples")
	chk.Less(count, calls.Load())
}

func TestUntilFoldedFoldPanicJoinsProducers(t *testing.T) {
	chk := require.New(t)
	var inFlight atomic.Int64
	chk.PanicsWithValue("kaboom", func() {
		_, _, _ = sample.UntilFolded(
			context.Background(),
			func(ctx context.Context) (int, error) {
				inFlight.Add(1)
				defer inFlight.Add(-1)
				return 1, nil
			},
			func(acc, v int) int { panic("kaboom") },
			0,
			sample.WithMaxSamples(1000),
			sample.WithWorkers(4),
		)
	})
	chk.Equal(int64(0), inFlight.Load(), "producers are joined before the panic unwinds")
}

func TestUntilFoldedContextCanceled(t *testing.T) {
	chk := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var folds int64
	acc, count, err := sample.UntilFolded(
		ctx,
		func(ctx context.Context) (int, error) { return 1, nil },
		func(acc, v int) int {
			if folds++; folds == 20 {
				cancel()
			}
			return acc + v
		},
		0,
		sample.WithMaxSamples(1_000_000),
		sample.WithWorkers(3),
	)
	chk.ErrorIs(err, context.Canceled)
	chk.GreaterOrEqual(count, int64(20))
	chk.Equal(int64(acc), count)
}
