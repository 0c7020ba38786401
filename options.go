// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// An Option adjusts how [Until], [UntilArgs], [UntilFolded],
// [UntilFoldedArgs], and [ForDuration] run. Options are applied in order;
// when the same option is given twice, the later value wins. An option
// carrying a value outside its documented range causes the sampling call to
// return an error wrapping [ErrInvalidOption] before any work starts.
type Option func(*config) error

type config struct {
	duration      time.Duration
	samples       int64
	memLimit      float64
	memLimitSet   bool
	maxBytes      int64
	workers       int
	batch         int
	rate          float64
	custom        []Condition
	probe         MemoryProbe
	probeInterval time.Duration
	logger        *slog.Logger
	onStop        func(reason string)
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		workers:       1,
		batch:         1,
		probeInterval: 100 * time.Millisecond,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			panic("option must be non-nil")
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithDuration stops sampling once the given wall-clock time has elapsed
// since the sampling call began. The duration must be positive. Elapsed time
// is checked between sampling calls, so the last call may run past the
// deadline; see [Condition] for the overshoot rules.
func WithDuration(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return fmt.Errorf("%w: duration must be positive (got %v)", ErrInvalidOption, d)
		}
		c.duration = d
		return nil
	}
}

// WithMaxSamples stops sampling once n samples have been produced. n must be
// positive.
//
// With a single worker, exactly n samples are produced (unless another
// condition or the argument sequence ends sampling first). With w collecting
// workers, the budget is divided evenly among them with the remainder going
// to the first workers, so the total is again exactly n. In the folded modes
// the count is enforced globally by the fold goroutine, which stops exactly
// at n regardless of worker count.
func WithMaxSamples(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: sample limit must be positive (got %d)", ErrInvalidOption, n)
		}
		c.samples = int64(n)
		return nil
	}
}

// WithMemoryLimit stops sampling once the fraction of system memory in use
// reaches limit, which must be in [0, 1]. The fraction is read from the
// configured [MemoryProbe] at a bounded cadence (see
// [WithMemoryProbeInterval]); a limit of 0 therefore stops after the first
// probe reading.
func WithMemoryLimit(limit float64) Option {
	return func(c *config) error {
		if limit < 0 || limit > 1 {
			return fmt.Errorf("%w: memory limit must be in [0, 1] (got %v)", ErrInvalidOption, limit)
		}
		c.memLimit = limit
		c.memLimitSet = true
		return nil
	}
}

// WithMaxOutputBytes stops sampling once the estimated size of the collected
// samples reaches n bytes. n must be positive.
//
// The per-sample size is estimated once, from the marginal gob encoding size
// of the second sample, and extrapolated; the condition therefore cannot fire
// before two samples exist, and the estimate is only as good as gob's view of
// the sample type. Sample types that gob cannot encode cause the sampling
// call to fail when the estimate is first attempted.
//
// This option applies only to [Until], [UntilArgs], and [ForDuration]. The
// folded modes do not retain samples, so they reject it.
func WithMaxOutputBytes(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: output size limit must be positive (got %d)", ErrInvalidOption, n)
		}
		c.maxBytes = n
		return nil
	}
}

// WithWorkers sets the number of concurrent sampling workers. n must be
// positive, or -1 to use [runtime.GOMAXPROCS] workers. The default is 1,
// which runs the sampling loop on the calling goroutine and gives the exact
// single-worker semantics described on each entry point.
//
// In the folded modes one of the n workers is the fold goroutine, so n
// workers perform n-1 concurrent sampling loops there.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n == -1 {
			c.workers = runtime.GOMAXPROCS(0)
			return nil
		}
		if n < 1 {
			return fmt.Errorf("%w: workers must be positive or -1 (got %d)", ErrInvalidOption, n)
		}
		c.workers = n
		return nil
	}
}

// WithBatchSize sets how many samples a producing worker accumulates before
// handing them to the fold goroutine in the folded modes. n must be positive;
// the default is 1. Larger batches amortize channel synchronization for cheap
// sampling functions at the cost of the fold seeing samples a little later.
// Batching is transparent: the folded result does not depend on the batch
// size. The option has no effect on the collecting modes.
func WithBatchSize(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: batch size must be positive (got %d)", ErrInvalidOption, n)
		}
		c.batch = n
		return nil
	}
}

// WithCondition adds a custom stop [Condition]. It may be given multiple
// times; sampling stops when any condition is met. In the collecting modes
// every worker evaluates the condition against its own [Progress]; in the
// folded modes it is evaluated by the fold goroutine against global progress,
// once per folded sample.
func WithCondition(cond Condition) Option {
	return func(c *config) error {
		if cond == nil {
			return fmt.Errorf("%w: condition must be non-nil", ErrInvalidOption)
		}
		c.custom = append(c.custom, cond)
		return nil
	}
}

// WithRateLimit paces sampling calls to at most perSecond calls per second,
// shared across all workers. perSecond must be positive. Pacing is applied
// before each call, so a paced loop still honors its stop conditions
// promptly.
func WithRateLimit(perSecond float64) Option {
	return func(c *config) error {
		if perSecond <= 0 {
			return fmt.Errorf("%w: rate limit must be positive (got %v)", ErrInvalidOption, perSecond)
		}
		c.rate = perSecond
		return nil
	}
}

// WithMemoryProbe replaces the default gopsutil-based [MemoryProbe].
// Supplying a probe also enables the Memory field of [Progress] even when no
// memory limit is configured, so custom conditions can use it.
func WithMemoryProbe(probe MemoryProbe) Option {
	return func(c *config) error {
		if probe == nil {
			return fmt.Errorf("%w: memory probe must be non-nil", ErrInvalidOption)
		}
		c.probe = probe
		return nil
	}
}

// WithMemoryProbeInterval sets the minimum time between two memory probe
// readings. d must be positive; the default is 100ms. Between readings all
// workers see the last probed value.
func WithMemoryProbeInterval(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return fmt.Errorf("%w: memory probe interval must be positive (got %v)", ErrInvalidOption, d)
		}
		c.probeInterval = d
		return nil
	}
}

// WithLogger sets the logger used to record stop causes and probe trouble.
// Sampling logs at Debug level on every stop and at Warn level when the
// memory probe fails after having succeeded before. The default logger
// discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("%w: logger must be non-nil", ErrInvalidOption)
		}
		c.logger = logger
		return nil
	}
}

// WithOnStop registers a callback invoked with the stop reason each time a
// sampling loop ends normally (stop condition met or arguments exhausted).
// With multiple workers the callback runs once per stopping loop, possibly
// concurrently, so it must be thread-safe. It is not invoked when sampling
// ends with an error.
func WithOnStop(fn func(reason string)) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("%w: stop callback must be non-nil", ErrInvalidOption)
		}
		c.onStop = fn
		return nil
	}
}

// hasStopCondition reports whether any configured option can end sampling on
// its own.
func (c *config) hasStopCondition() bool {
	return c.duration > 0 || c.samples > 0 || c.memLimitSet || c.maxBytes > 0 || len(c.custom) > 0
}

func (c *config) needsMemory() bool {
	return c.memLimitSet || c.probe != nil
}

// splitBudget divides a budget across n workers: an even share each, with the
// remainder spread over the first workers.
func splitBudget(total int64, n, worker int) int64 {
	share := total / int64(n)
	if int64(worker) < total%int64(n) {
		share++
	}
	return share
}

// collectConditions builds the private condition set for one collecting
// worker. Count and output budgets are divided across workers; duration,
// memory, and custom conditions are shared as-is.
func (c *config) collectConditions(worker, workers int) conditionSet {
	var s conditionSet
	if c.duration > 0 {
		s = append(s, durationCondition(c.duration))
	}
	if c.samples > 0 {
		s = append(s, countCondition(splitBudget(c.samples, workers, worker)))
	}
	if c.memLimitSet {
		s = append(s, memoryCondition(c.memLimit))
	}
	if c.maxBytes > 0 {
		s = append(s, outputCondition(splitBudget(c.maxBytes, workers, worker)))
	}
	return append(s, c.custom...)
}

// producerConditions builds the condition set for a producing worker in the
// folded modes. Producers stop themselves on duration and memory; the sample
// count and custom conditions are enforced globally by the fold goroutine.
func (c *config) producerConditions() conditionSet {
	var s conditionSet
	if c.duration > 0 {
		s = append(s, durationCondition(c.duration))
	}
	if c.memLimitSet {
		s = append(s, memoryCondition(c.memLimit))
	}
	return s
}

// aggregatorConditions builds the condition set evaluated by the fold
// goroutine against global progress.
func (c *config) aggregatorConditions() conditionSet {
	var s conditionSet
	if c.duration > 0 {
		s = append(s, durationCondition(c.duration))
	}
	if c.samples > 0 {
		s = append(s, countCondition(c.samples))
	}
	if c.memLimitSet {
		s = append(s, memoryCondition(c.memLimit))
	}
	return append(s, c.custom...)
}
