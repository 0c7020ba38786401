// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"fmt"
)

// A sink consumes the samples one loop produces. deliver returns
// errLoopStopped when the consumer has gone away (shutdown broadcast); any
// other non-nil error aborts the loop and the whole sampling call.
type sink[T any] interface {
	deliver(v T) error

	// bytes is the estimated size of everything delivered so far, zero when
	// the sink does not track size.
	bytes() int64
}

// collectSink appends samples to a worker-private slice. When an output size
// limit is configured it estimates a per-sample size from the first two
// samples and extrapolates.
type collectSink[T any] struct {
	out        []T
	trackBytes bool
	perSample  int64
}

func (s *collectSink[T]) deliver(v T) error {
	s.out = append(s.out, v)
	if s.trackBytes && len(s.out) == 2 {
		per, err := marginalGobSize(s.out[0], s.out[1])
		if err != nil {
			return fmt.Errorf("sample: estimating output size: %w", err)
		}
		s.perSample = per
	}
	return nil
}

func (s *collectSink[T]) bytes() int64 {
	return s.perSample * int64(len(s.out))
}

// foldSink folds samples into the accumulator on the spot. It serves the
// single-worker folded modes, where the sampling goroutine and the fold
// goroutine are the same.
type foldSink[Acc, T any] struct {
	acc  Acc
	fold FoldFunc[Acc, T]
}

func (s *foldSink[Acc, T]) deliver(v T) error {
	s.acc = s.fold(s.acc, v)
	return nil
}

func (s *foldSink[Acc, T]) bytes() int64 { return 0 }

// batchSink buffers samples and ships them to the fold goroutine over a
// bounded channel. A full channel blocks the producer (backpressure); the
// shutdown broadcast wakes any blocked send.
type batchSink[T any] struct {
	ch   chan<- []T
	stop <-chan struct{}
	size int
	buf  []T
}

func (s *batchSink[T]) deliver(v T) error {
	if s.buf == nil {
		s.buf = make([]T, 0, s.size)
	}
	s.buf = append(s.buf, v)
	if len(s.buf) < s.size {
		return nil
	}
	return s.send()
}

func (s *batchSink[T]) bytes() int64 { return 0 }

// flush ships whatever partial batch remains. Called when a producer's loop
// ends normally so that already-produced samples still reach the fold.
func (s *batchSink[T]) flush() {
	if len(s.buf) > 0 {
		_ = s.send()
	}
}

func (s *batchSink[T]) send() error {
	b := s.buf
	s.buf = nil
	select {
	case s.ch <- b:
		return nil
	case <-s.stop:
		return errLoopStopped
	}
}
