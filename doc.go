// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sample runs a sampling function repeatedly until something says
// stop. The stopping conditions (wall-clock duration, sample count, system
// memory usage, collected output size, or anything custom) are checked only
// between calls, race against each other, and the first one met wins. This
// turns the recurring "call f in a loop with a deadline and a counter and
// hope the bookkeeping is right" pattern into a single call.
//
// Samples can be consumed two ways. [Until] and [UntilArgs] collect them into
// a slice. [UntilFolded] and [UntilFoldedArgs] fold each sample into an
// accumulator as it arrives, so unbounded runs use constant memory; the
// companion [github.com/lueckem/sample-until/fold] package provides common
// folds such as sums, online statistics, and latency histograms.
//
// Sampling can be spread across workers with [WithWorkers]. Collection then
// relaxes only in ways that are explicit: each worker keeps its own samples
// in production order, counts split across workers so totals stay exact, and
// a duration limit overshoots by at most one in-flight call per worker. In
// the folded modes the fold itself always runs on the calling goroutine, one
// sample at a time, so accumulators never need locks no matter how many
// workers produce.
package sample
