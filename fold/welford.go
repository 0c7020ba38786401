// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package fold

import (
	"math"
)

// Stats accumulates the count, mean, and variance of float64 samples using
// Welford's online algorithm, which remains numerically stable over long
// runs. The zero value is an empty accumulator ready to fold with [Observe].
type Stats struct {
	n    int64
	mean float64
	m2   float64
}

// Observe folds one sample into the statistics:
//
//	stats, _, err := sample.UntilFolded(ctx, f, fold.Observe, fold.Stats{}, opts...)
func Observe(s Stats, x float64) Stats {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
	return s
}

// Count returns the number of samples observed.
func (s Stats) Count() int64 { return s.n }

// Mean returns the running mean, or 0 for an empty accumulator.
func (s Stats) Mean() float64 { return s.mean }

// Variance returns the unbiased sample variance. It is 0 until two samples
// have been observed.
func (s Stats) Variance() float64 {
	if s.n < 2 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

// StdDev returns the sample standard deviation.
func (s Stats) StdDev() float64 { return math.Sqrt(s.Variance()) }
