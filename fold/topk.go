// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package fold

import (
	"cmp"
	"slices"

	"github.com/addrummond/heap"
)

// TopK keeps the k largest samples seen so far in constant space. The
// smallest retained sample sits at the root of a bounded min-heap and is
// evicted whenever a larger sample arrives. Create one with [NewTopK] and
// fold with [Largest].
type TopK[T cmp.Ordered] struct {
	k    int
	size int
	h    heap.Heap[topkItem[T], heap.Min]
}

type topkItem[T cmp.Ordered] struct {
	v T
}

func (a *topkItem[T]) Cmp(b *topkItem[T]) int {
	return cmp.Compare(a.v, b.v)
}

// NewTopK returns an accumulator keeping the k largest samples. k must be
// positive.
func NewTopK[T cmp.Ordered](k int) *TopK[T] {
	if k < 1 {
		panic("fold: top-k size must be positive")
	}
	return &TopK[T]{k: k}
}

// Largest folds one sample into the accumulator. Use it as the fold function
// with a [NewTopK] accumulator.
func Largest[T cmp.Ordered](acc *TopK[T], v T) *TopK[T] {
	if acc.size < acc.k {
		heap.PushOrderable(&acc.h, topkItem[T]{v: v})
		acc.size++
		return acc
	}
	if smallest, ok := heap.Peek(&acc.h); ok && cmp.Less(smallest.v, v) {
		_, _ = heap.PopOrderable(&acc.h)
		heap.PushOrderable(&acc.h, topkItem[T]{v: v})
	}
	return acc
}

// Values returns the retained samples in descending order. The accumulator
// remains usable afterwards.
func (t *TopK[T]) Values() []T {
	out := make([]T, 0, t.size)
	for {
		it, ok := heap.PopOrderable(&t.h)
		if !ok {
			break
		}
		out = append(out, it.v)
	}
	// Popping empties the heap, so rebuild it from what came out.
	for _, v := range out {
		heap.PushOrderable(&t.h, topkItem[T]{v: v})
	}
	slices.Reverse(out)
	return out
}
