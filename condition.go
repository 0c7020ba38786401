// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"time"
)

// Progress is a snapshot of one sampling loop's state, passed to [Condition]
// implementations between sampling calls.
//
// With more than one worker, each worker evaluates conditions against its own
// Progress: Count and Bytes reflect only the samples that worker has produced
// (except in the folded modes, where the aggregator evaluates the global
// count). Start, Elapsed, and Memory are the same for all workers.
type Progress struct {
	// Start is the instant the sampling call began.
	Start time.Time

	// Elapsed is the time since Start, measured with the monotonic clock.
	Elapsed time.Duration

	// Count is the number of samples produced so far.
	Count int64

	// Memory is the fraction of system memory in use, in [0, 1]. It is
	// refreshed at a bounded cadence and only when a memory limit or probe
	// has been configured; otherwise it is negative.
	Memory float64

	// Bytes is the estimated size of the collected output so far. It is zero
	// unless [WithMaxOutputBytes] is in effect, and remains zero until enough
	// samples exist to estimate a per-sample size.
	Bytes int64
}

// A Condition decides when sampling should stop. Between sampling calls, each
// worker evaluates its conditions against a [Progress] snapshot; the first
// condition reporting true ends that worker's loop. Conditions never
// interrupt a sampling call already in flight.
//
// Built-in conditions are supplied through options such as [WithDuration] and
// [WithMaxSamples]. Custom implementations are attached with [WithCondition];
// they are copied verbatim to every worker and must be thread-safe if they
// keep state, since workers evaluate them concurrently.
type Condition interface {
	// Met reports whether sampling should stop.
	Met(p Progress) bool

	// Reason is a short human-readable cause, used for logging and the
	// [WithOnStop] callback.
	Reason() string
}

const (
	reasonDuration  = "duration elapsed"
	reasonCount     = "sample count reached"
	reasonMemory    = "memory limit exceeded"
	reasonOutput    = "output size limit reached"
	reasonExhausted = "arguments exhausted"
)

type durationCondition time.Duration

func (c durationCondition) Met(p Progress) bool {
	return p.Elapsed >= time.Duration(c)
}

func (c durationCondition) Reason() string { return reasonDuration }

type countCondition int64

func (c countCondition) Met(p Progress) bool {
	return p.Count >= int64(c)
}

func (c countCondition) Reason() string { return reasonCount }

type memoryCondition float64

func (c memoryCondition) Met(p Progress) bool {
	// A negative Memory means the probe has not reported yet.
	return p.Memory >= 0 && p.Memory >= float64(c)
}

func (c memoryCondition) Reason() string { return reasonMemory }

type outputCondition int64

func (c outputCondition) Met(p Progress) bool {
	return p.Bytes >= int64(c)
}

func (c outputCondition) Reason() string { return reasonOutput }

// A conditionSet stops when any member does.
type conditionSet []Condition

func (s conditionSet) met(p Progress) (Condition, bool) {
	for _, c := range s {
		if c.Met(p) {
			return c, true
		}
	}
	return nil, false
}
