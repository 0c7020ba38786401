// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package fold

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	durationsMin = int64(1)                            // 1µs
	durationsMax = int64(time.Hour / time.Microsecond) // 1h in µs
)

// Durations accumulates time.Duration samples in an HDR histogram with
// microsecond resolution, three significant figures, and a one-hour ceiling;
// samples outside [1µs, 1h] are clamped. Create one with [NewDurations] and
// fold with [Duration].
type Durations struct {
	h *hdrhistogram.Histogram
}

// NewDurations returns an empty duration accumulator.
func NewDurations() *Durations {
	return &Durations{h: hdrhistogram.New(durationsMin, durationsMax, 3)}
}

// Duration folds one duration sample into the accumulator. Use it as the fold
// function with a [NewDurations] accumulator.
func Duration(acc *Durations, d time.Duration) *Durations {
	us := int64(d / time.Microsecond)
	if us < durationsMin {
		us = durationsMin
	} else if us > durationsMax {
		us = durationsMax
	}
	_ = acc.h.RecordValue(us)
	return acc
}

// Count returns the number of samples recorded.
func (d *Durations) Count() int64 { return d.h.TotalCount() }

// Percentile returns the duration at the given percentile, e.g. 50 for the
// median or 99 for the 99th percentile.
func (d *Durations) Percentile(p float64) time.Duration {
	return time.Duration(d.h.ValueAtQuantile(p)) * time.Microsecond
}

// Mean returns the mean of the recorded durations.
func (d *Durations) Mean() time.Duration {
	return time.Duration(d.h.Mean() * float64(time.Microsecond))
}

// StdDev returns the standard deviation of the recorded durations.
func (d *Durations) StdDev() time.Duration {
	return time.Duration(d.h.StdDev() * float64(time.Microsecond))
}

// Min returns the smallest recorded duration (after clamping).
func (d *Durations) Min() time.Duration {
	return time.Duration(d.h.Min()) * time.Microsecond
}

// Max returns the largest recorded duration (after clamping).
func (d *Durations) Max() time.Duration {
	return time.Duration(d.h.Max()) * time.Microsecond
}
