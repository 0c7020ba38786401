// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pullFunc returns the next argument for a sampling call, reporting false
// once the feed is exhausted. Each worker owns one pullFunc, so
// implementations need not be thread-safe against themselves.
type pullFunc[A any] func() (A, bool)

// runCtrl coordinates cooperative shutdown across the loops of one sampling
// call. stopCtx is derived from the caller's context and additionally
// canceled when a stop condition fires in one loop or a worker fails. It is
// used only for internal waits (channel sends, pacing) and never passed to
// user functions, so an internal stop cannot interrupt an in-flight sampling
// call.
type runCtrl struct {
	stopCtx context.Context
	stop    context.CancelFunc

	mu  sync.Mutex
	err error
}

func newRunCtrl(ctx context.Context) *runCtrl {
	rc := &runCtrl{}
	rc.stopCtx, rc.stop = context.WithCancel(ctx)
	return rc
}

func (rc *runCtrl) stopRequested() bool {
	return rc.stopCtx.Err() != nil
}

// abort records the first failure and wakes every loop. Later failures are
// dropped; the first error is the one the caller sees.
func (rc *runCtrl) abort(err error) {
	rc.mu.Lock()
	if rc.err == nil {
		rc.err = err
	}
	rc.mu.Unlock()
	rc.stop()
}

func (rc *runCtrl) failure() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.err
}

// runEnv holds the fixtures shared by all loops of one sampling call.
type runEnv struct {
	start  time.Time
	mem    *memoryState
	pace   *rate.Limiter
	log    *slog.Logger
	onStop func(reason string)
}

func newRunEnv(c *config) *runEnv {
	re := &runEnv{
		start:  time.Now(),
		log:    c.logger,
		onStop: c.onStop,
	}
	if c.needsMemory() {
		re.mem = newMemoryState(c)
	}
	if c.rate > 0 {
		re.pace = rate.NewLimiter(rate.Limit(c.rate), 1)
	}
	return re
}

// loopEnv is one worker's view of the run: the shared fixtures plus its
// private condition set and index.
type loopEnv struct {
	*runEnv
	conds  conditionSet
	worker int
}

func (re *runEnv) loopEnv(worker int, conds conditionSet) *loopEnv {
	return &loopEnv{runEnv: re, conds: conds, worker: worker}
}

func (e *loopEnv) progress(count, bytes int64) (Progress, error) {
	p := Progress{
		Start:   e.start,
		Elapsed: time.Since(e.start),
		Count:   count,
		Memory:  -1,
		Bytes:   bytes,
	}
	if e.mem != nil {
		v, err := e.mem.current()
		if err != nil {
			return p, err
		}
		p.Memory = v
	}
	return p, nil
}

func (e *loopEnv) reportStop(reason string, p Progress) {
	e.log.Debug("sampling stopped",
		slog.String("reason", reason),
		slog.Int("worker", e.worker),
		slog.Int64("count", p.Count),
		slog.Duration("elapsed", p.Elapsed))
	if e.onStop != nil {
		e.onStop(reason)
	}
}

// runLoop is the sampling loop every worker runs: evaluate the stop
// conditions, pull the next argument, pace if configured, call f, and hand
// the sample to the sink. Conditions, cancellation, and the shutdown
// broadcast are checked only between calls to f, so a call in flight always
// completes before its loop winds down.
//
// The returned count is the number of samples delivered to the sink. A nil
// error means the loop stopped normally (condition met, feed exhausted, or
// shutdown broadcast); the caller's context being canceled, a failing f, and
// a failing sink all surface as errors.
func runLoop[A, T any](ctx context.Context, rc *runCtrl, env *loopEnv, pull pullFunc[A], f ArgFunc[A, T], snk sink[T]) (int64, error) {
	var count int64
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if rc.stopRequested() {
			return count, nil
		}
		p, err := env.progress(count, snk.bytes())
		if err != nil {
			return count, err
		}
		if c, met := env.conds.met(p); met {
			env.reportStop(c.Reason(), p)
			return count, nil
		}
		arg, ok := pull()
		if !ok {
			env.reportStop(reasonExhausted, p)
			return count, nil
		}
		if env.pace != nil {
			if err := env.pace.Wait(rc.stopCtx); err != nil {
				if cerr := ctx.Err(); cerr != nil {
					return count, cerr
				}
				if rc.stopRequested() {
					return count, nil
				}
				return count, err
			}
		}
		v, err := f(ctx, arg)
		if err != nil {
			return count, err
		}
		if err := snk.deliver(v); err != nil {
			if errors.Is(err, errLoopStopped) {
				return count, nil
			}
			return count, err
		}
		count++
	}
}
