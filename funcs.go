// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"context"
)

// A Func produces one sample per call. It returns a sample of type T and an
// error value. The provided context should be respected for cancellation: it
// is the context given to [Until], [UntilFolded], or [ForDuration], and it is
// canceled only by the caller, never by the sampling machinery itself. Any
// inputs to the function are expected to be provided by specifying the Func
// as a [function literal] that references and therefore captures local
// variables via [lexical closure].
//
// When more than one worker is configured, a Func is called concurrently from
// multiple goroutines and must therefore be thread-safe. This includes access
// to any captured variables.
//
// A non-nil error returned by a Func aborts sampling: all workers are wound
// down and joined, and the error is returned to the caller. If a Func panics,
// the whole program will terminate as per [Handling panics] in The Go
// Programming Language Specification. If you need to avoid this behavior,
// recover from the panic within the function itself and return an error.
//
// [function literal]: https://go.dev/ref/spec#Function_literals
// [lexical closure]: https://en.wikipedia.org/wiki/Closure_(computer_programming)
// [Handling panics]: https://go.dev/ref/spec#Handling_panics
type Func[T any] = func(context.Context) (T, error)

// An ArgFunc produces one sample per call from an argument of type A drawn
// from the argument sequence given to [UntilArgs] or [UntilFoldedArgs]. The
// same caveats apply as for [Func]: the context is the caller's, concurrent
// use requires thread safety, a non-nil error aborts sampling, and panics are
// not recovered.
type ArgFunc[A, T any] = func(context.Context, A) (T, error)

// A FoldFunc combines one sample into an accumulator and returns the new
// accumulator value. It is used by [UntilFolded] and [UntilFoldedArgs] to
// consume samples without retaining them.
//
// A FoldFunc is only ever called from a single goroutine, the one that called
// [UntilFolded] or [UntilFoldedArgs], so it needs no synchronization even
// when many workers produce samples. It must however tolerate receiving
// samples in an order that differs from production order: with more than one
// worker, samples from different workers are interleaved arbitrarily. Folds
// that are commutative in the sample argument (sums, counts, extrema,
// histograms) are unaffected.
//
// The [github.com/lueckem/sample-until/fold] package provides ready-made
// fold functions and accumulators.
type FoldFunc[Acc, T any] = func(Acc, T) Acc

// A MemoryProbe reports the fraction of system memory currently in use as a
// value in [0, 1]. The default probe reads virtual memory statistics via
// gopsutil; [WithMemoryProbe] replaces it, which is chiefly useful in tests.
//
// Probes are called from at most one goroutine at a time and at a bounded
// cadence (see [WithMemoryProbeInterval]), regardless of worker count.
type MemoryProbe = func() (float64, error)
