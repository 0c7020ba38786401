// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"context"
	"iter"
	"sync"
	"time"
)

// Until calls f repeatedly and collects its results until a stop condition is
// met, then returns the samples produced so far. At least one stop condition
// must be configured (see [WithDuration], [WithMaxSamples], [WithMemoryLimit],
// [WithMaxOutputBytes], and [WithCondition]); otherwise Until returns
// [ErrNoStopCondition] without calling f.
//
// With the default single worker the semantics are exact: samples appear in
// production order, and a sample count limit of n yields exactly n samples
// unless another condition fires first. With w workers (see [WithWorkers])
// each worker runs its own loop with a private copy of the stop conditions
// and a private slice; the slices are concatenated in worker order, so each
// worker's samples stay in production order but samples of different workers
// are not interleaved chronologically.
//
// Conditions are evaluated only between calls to f, so a call in flight
// always completes; a duration limit is therefore exceeded by at most one
// call's running time per worker.
//
// Until returns a non-nil error when an option is invalid, when ctx is
// canceled, or when f returns an error; in the latter two cases the samples
// collected before the failure are returned alongside the error, after all
// workers have been wound down and joined. Callers that need all-or-nothing
// behavior should discard the samples when the error is non-nil.
func Until[T any](ctx context.Context, f Func[T], opts ...Option) ([]T, error) {
	if f == nil {
		panic("sampling function must be non-nil")
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if !cfg.hasStopCondition() {
		return nil, ErrNoStopCondition
	}
	return collect(ctx, cfg, ignoreArg(f), unitSource)
}

// UntilArgs is [Until] for sampling functions that take an argument: the i-th
// call receives the i-th element of args. Sampling stops when a configured
// condition is met or when args is exhausted, whichever comes first, so no
// stop condition is required. For a finite sequence of n elements and a
// single worker, exactly n samples are produced (absent other conditions) in
// sequence order.
//
// With w workers the sequence is dealt round-robin: worker i samples elements
// i, i+w, i+2w, and so on, each worker preserving its own order. The combined
// result concatenates the workers' samples in worker order. Since every
// element is consumed by some worker, a finite sequence still yields exactly
// n samples; a sample count limit is divided across workers as described at
// [WithMaxSamples].
func UntilArgs[A, T any](ctx context.Context, f ArgFunc[A, T], args iter.Seq[A], opts ...Option) ([]T, error) {
	if f == nil {
		panic("sampling function must be non-nil")
	}
	if args == nil {
		panic("argument sequence must be non-nil")
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return collect(ctx, cfg, f, seqSource(args))
}

// ForDuration collects samples from f for the given wall-clock duration. It
// is shorthand for [Until] with [WithDuration]; additional options may be
// supplied and may add further stop conditions.
func ForDuration[T any](ctx context.Context, f Func[T], d time.Duration, opts ...Option) ([]T, error) {
	return Until(ctx, f, append([]Option{WithDuration(d)}, opts...)...)
}

// collect runs cfg.workers collecting loops over the given argument source
// and concatenates their output in worker order.
func collect[A, T any](ctx context.Context, cfg *config, f ArgFunc[A, T], src pullSource[A]) ([]T, error) {
	re := newRunEnv(cfg)
	rc := newRunCtrl(ctx)
	defer rc.stop()

	workers := cfg.workers
	pulls, release := src(workers)
	defer release()

	if workers == 1 {
		snk := &collectSink[T]{trackBytes: cfg.maxBytes > 0}
		_, err := runLoop(ctx, rc, re.loopEnv(0, cfg.collectConditions(0, 1)), pulls[0], f, snk)
		return snk.out, err
	}

	sinks := make([]*collectSink[T], workers)
	var wg sync.WaitGroup
	for i := range workers {
		snk := &collectSink[T]{trackBytes: cfg.maxBytes > 0}
		sinks[i] = snk
		env := re.loopEnv(i, cfg.collectConditions(i, workers))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := runLoop(ctx, rc, env, pulls[i], f, snk); err != nil {
				rc.abort(err)
			}
		}()
	}
	wg.Wait()

	var out []T
	for _, snk := range sinks {
		out = append(out, snk.out...)
	}
	return out, rc.failure()
}
