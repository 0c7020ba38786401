// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package splitq distributes one sequence across n consumers in strict
// round-robin order: partition i receives elements i, i+n, i+2n, and so on,
// each in source order. The source is pulled lazily under a shared lock, so
// elements destined for a slow partition are buffered only when a faster
// partition has to read past them.
package splitq

import (
	"iter"
	"sync"

	"github.com/gammazero/deque"
)

type Splitter[T any] struct {
	mu      sync.Mutex
	next    func() (T, bool)
	release func()
	parts   []*Partition[T]
	cursor  int
	done    bool
}

// New splits seq into n round-robin partitions. The splitter owns a pull
// iterator over seq; call [Splitter.Stop] once all consumers are finished to
// release it.
func New[T any](seq iter.Seq[T], n int) *Splitter[T] {
	next, release := iter.Pull(seq)
	s := &Splitter[T]{
		next:    next,
		release: release,
		parts:   make([]*Partition[T], n),
	}
	for i := range s.parts {
		s.parts[i] = &Partition[T]{s: s}
	}
	return s
}

func (s *Splitter[T]) Partitions() []*Partition[T] {
	return s.parts
}

// Stop releases the underlying pull iterator. Pending buffered elements
// remain readable; anything not yet pulled from the source is abandoned.
func (s *Splitter[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.done = true
		s.release()
	}
}

// A Partition is one consumer's view of the split sequence. A single
// partition must not be used from multiple goroutines at once, but distinct
// partitions may be consumed concurrently.
type Partition[T any] struct {
	s       *Splitter[T]
	pending deque.Deque[T]
}

// Next returns the partition's next element. It reports false once the
// partition's share of the source is exhausted.
func (p *Partition[T]) Next() (T, bool) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.pending.Len() > 0 {
		return p.pending.PopFront(), true
	}
	// Pull from the source until an element lands in this partition, parking
	// elements that belong to the others.
	for !s.done {
		v, ok := s.next()
		if !ok {
			s.done = true
			s.release()
			break
		}
		owner := s.parts[s.cursor]
		s.cursor++
		if s.cursor == len(s.parts) {
			s.cursor = 0
		}
		if owner == p {
			return v, true
		}
		owner.pending.PushBack(v)
	}
	var zero T
	return zero, false
}
