// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"context"
	"iter"

	"github.com/lueckem/sample-until/internal/splitq"
)

// A pullSource builds one pullFunc per worker plus a release function to be
// called after all workers have joined.
type pullSource[A any] func(workers int) ([]pullFunc[A], func())

// unitSource feeds argument-less sampling: every pull succeeds with a unit
// value and the feed never runs dry.
func unitSource(workers int) ([]pullFunc[struct{}], func()) {
	pulls := make([]pullFunc[struct{}], workers)
	for i := range pulls {
		pulls[i] = func() (struct{}, bool) { return struct{}{}, true }
	}
	return pulls, func() {}
}

// seqSource distributes an argument sequence across workers. A single worker
// consumes the sequence directly; multiple workers receive round-robin
// partitions, so worker i sees elements i, i+w, i+2w, and so on, in order.
func seqSource[A any](seq iter.Seq[A]) pullSource[A] {
	return func(workers int) ([]pullFunc[A], func()) {
		if workers == 1 {
			next, release := iter.Pull(seq)
			return []pullFunc[A]{next}, release
		}
		s := splitq.New(seq, workers)
		pulls := make([]pullFunc[A], workers)
		for i, p := range s.Partitions() {
			pulls[i] = p.Next
		}
		return pulls, s.Stop
	}
}

// ignoreArg adapts an argument-less Func to the argument-taking loop.
func ignoreArg[T any](f Func[T]) ArgFunc[struct{}, T] {
	return func(ctx context.Context, _ struct{}) (T, error) {
		return f(ctx)
	}
}
