// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"context"
	"fmt"
	"iter"
	"sync"
)

// UntilFolded calls f repeatedly and folds every sample into an accumulator,
// returning the final accumulator and the number of samples folded. It is the
// memory-bounded alternative to [Until]: samples are consumed as they are
// produced and never retained, so arbitrarily long runs use constant space.
// As with [Until], at least one stop condition must be configured, or
// [ErrNoStopCondition] is returned.
//
// The fold always runs on the calling goroutine, one sample at a time, so
// fold needs no synchronization. With the default single worker, sampling and
// folding interleave exactly: a sample count limit of n folds exactly n
// samples. With w workers, w-1 producer goroutines sample concurrently and
// hand batches (see [WithBatchSize]) to the calling goroutine over a bounded
// channel; the fold applies samples one at a time, counts globally, and stops
// all producers the moment a stop condition is met, so a sample count limit
// is still exact. Producer-side batches still in flight at that moment are
// dropped. See [FoldFunc] for the ordering caveat with multiple workers.
//
// [WithMaxOutputBytes] does not apply to folded sampling and is rejected.
//
// On error (invalid option, canceled ctx, failing f) the accumulator and
// count reflect the samples folded before the failure and are returned
// alongside the error, after all workers have been wound down and joined.
func UntilFolded[Acc, T any](ctx context.Context, f Func[T], fold FoldFunc[Acc, T], initial Acc, opts ...Option) (Acc, int64, error) {
	if f == nil {
		panic("sampling function must be non-nil")
	}
	if fold == nil {
		panic("fold function must be non-nil")
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return initial, 0, err
	}
	if !cfg.hasStopCondition() {
		return initial, 0, ErrNoStopCondition
	}
	if cfg.maxBytes > 0 {
		return initial, 0, errFoldedOutputLimit
	}
	return folded(ctx, cfg, ignoreArg(f), unitSource, fold, initial)
}

// UntilFoldedArgs is [UntilFolded] for sampling functions that take an
// argument drawn from args. Like [UntilArgs] it needs no stop condition,
// because exhaustion of args ends sampling; with w workers the sequence is
// dealt round-robin across the w-1 producers.
func UntilFoldedArgs[Acc, A, T any](ctx context.Context, f ArgFunc[A, T], args iter.Seq[A], fold FoldFunc[Acc, T], initial Acc, opts ...Option) (Acc, int64, error) {
	if f == nil {
		panic("sampling function must be non-nil")
	}
	if fold == nil {
		panic("fold function must be non-nil")
	}
	if args == nil {
		panic("argument sequence must be non-nil")
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return initial, 0, err
	}
	if cfg.maxBytes > 0 {
		return initial, 0, errFoldedOutputLimit
	}
	return folded(ctx, cfg, f, seqSource(args), fold, initial)
}

var errFoldedOutputLimit = fmt.Errorf("%w: output size limit requires collected sampling (use Until or UntilArgs)", ErrInvalidOption)

// folded orchestrates the folded modes. One worker means the calling
// goroutine samples and folds by itself. More workers mean cfg.workers-1
// producers feeding one bounded channel while the calling goroutine folds,
// enforces the global conditions, and broadcasts the stop.
func folded[Acc, A, T any](ctx context.Context, cfg *config, f ArgFunc[A, T], src pullSource[A], fold FoldFunc[Acc, T], acc Acc) (Acc, int64, error) {
	re := newRunEnv(cfg)
	rc := newRunCtrl(ctx)
	defer rc.stop()

	if cfg.workers == 1 {
		pulls, release := src(1)
		defer release()
		snk := &foldSink[Acc, T]{acc: acc, fold: fold}
		count, err := runLoop(ctx, rc, re.loopEnv(0, cfg.aggregatorConditions()), pulls[0], f, snk)
		return snk.acc, count, err
	}

	producers := cfg.workers - 1
	pulls, release := src(producers)
	defer release()

	ch := make(chan []T, 2*producers)
	var wg sync.WaitGroup
	for i := range producers {
		env := re.loopEnv(i+1, cfg.producerConditions())
		snk := &batchSink[T]{ch: ch, stop: rc.stopCtx.Done(), size: cfg.batch}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := runLoop(ctx, rc, env, pulls[i], f, snk); err != nil {
				rc.abort(err)
				return
			}
			snk.flush()
		}()
	}
	// Closing the channel once the last producer exits ends the fold loop
	// when production stops before any global condition fires.
	go func() {
		wg.Wait()
		close(ch)
	}()

	// Producers must be woken and joined on every exit path, including a
	// panicking fold function.
	defer func() {
		rc.stop()
		wg.Wait()
	}()

	env := re.loopEnv(0, cfg.aggregatorConditions())
	var count int64
drain:
	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				break drain
			}
			if rc.failure() != nil {
				break drain
			}
			for _, v := range batch {
				acc = fold(acc, v)
				count++
				p, err := env.progress(count, 0)
				if err != nil {
					rc.abort(err)
					break drain
				}
				if c, met := env.conds.met(p); met {
					env.reportStop(c.Reason(), p)
					rc.stop()
					break drain
				}
			}
		case <-ctx.Done():
			break drain
		}
	}
	rc.stop()
	wg.Wait()
	if err := rc.failure(); err != nil {
		return acc, count, err
	}
	if err := ctx.Err(); err != nil {
		return acc, count, err
	}
	return acc, count, nil
}
