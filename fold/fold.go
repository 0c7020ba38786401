// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package fold provides ready-made fold functions and accumulators for the
// folded sampling modes of github.com/lueckem/sample-until.
//
// The plain functions (Sum, Count, Append, Min, Max) match the FoldFunc
// signature directly. The accumulator types (Stats, TopK, Durations) pair a
// state-carrying value with a fold function (Observe, Largest, Duration). All
// of them are commutative in the sample argument, so they are safe with any
// worker count.
package fold

import (
	"cmp"

	"golang.org/x/exp/constraints"
)

// Number constrains the sample types [Sum] accepts.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum adds the sample to the accumulator.
func Sum[T Number](acc, v T) T { return acc + v }

// Count counts samples, ignoring their values.
func Count[T any](acc int64, _ T) int64 { return acc + 1 }

// Append collects samples into a slice. Folding with Append makes a folded
// call behave like its collecting counterpart, which is chiefly useful for
// testing; for plain collection prefer Until and UntilArgs.
func Append[T any](acc []T, v T) []T { return append(acc, v) }

// Min keeps the smallest sample seen. Seed the fold with an identity such as
// math.Inf(1) or the maximum value of the integer type.
func Min[T cmp.Ordered](acc, v T) T { return min(acc, v) }

// Max keeps the largest sample seen. Seed the fold with an identity such as
// math.Inf(-1) or the minimum value of the integer type.
func Max[T cmp.Ordered](acc, v T) T { return max(acc, v) }
