// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample_test

import (
	"context"
	"fmt"
	"slices"

	// Superfluous alias needed to work around
	// https://github.com/golang/go/issues/12794
	sample "github.com/lueckem/sample-until"
)

// Collects a fixed number of samples from a deterministic source.
func Example_fixedCount() {
	ctx := context.Background()

	var n int
	samples, _ := sample.Until(
		ctx,
		func(context.Context) (int, error) {
			n++
			return n * n, nil
		},
		sample.WithMaxSamples(5),
	)
	fmt.Println(samples)
	// Output: [1 4 9 16 25]
}

// Runs the sampling function once per argument, in sequence order.
func Example_perArgument() {
	ctx := context.Background()

	squares, _ := sample.UntilArgs(
		ctx,
		func(_ context.Context, n int) (int, error) { return n * n, nil },
		slices.Values([]int{1, 2, 3, 4}),
	)
	fmt.Println(squares)
	// Output: [1 4 9 16]
}
