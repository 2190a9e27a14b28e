package taskheap

import (
	"container/heap"

	"github.com/LambdaTest/forkplan/pkg/core"
)

// Heap is a min-heap of fork loads ordered by running duration, lowest fork index first on ties.
type Heap []*core.ForkLoad

// New returns an initialized heap with forkCount empty forks.
func New(forkCount int) Heap {
	h := make(Heap, forkCount)
	for i := 0; i < forkCount; i++ {
		h[i] = &core.ForkLoad{Index: i}
	}
	heap.Init(&h)
	return h
}

// Len returns the length of the heap
func (h Heap) Len() int {
	return len(h)
}

func (h Heap) Less(i, j int) bool {
	if h[i].Duration == h[j].Duration {
		return h[i].Index < h[j].Index
	}
	return h[i].Duration < h[j].Duration
}

// Swap swaps the values of two forks
func (h Heap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds a new fork to the heap
func (h *Heap) Push(x interface{}) {
	item := x.(*core.ForkLoad)
	*h = append(*h, item)
}

// Pop removes the top fork from the heap
func (h *Heap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil // avoid memory leak
	*h = old[0 : n-1]
	return x
}

// UpdateHead assigns bucket to the least loaded fork and returns that fork's index.
func (h *Heap) UpdateHead(bucket *core.TestBucket) int {
	head := (*h)[0]
	head.Duration += bucket.Duration()
	head.Buckets = append(head.Buckets, bucket)
	// heapify after updating the fork
	heap.Fix(h, 0)
	return head.Index
}

// ByIndex returns the forks ordered by fork index without disturbing the heap.
func (h Heap) ByIndex() []*core.ForkLoad {
	forks := make([]*core.ForkLoad, len(h))
	for _, f := range h {
		forks[f.Index] = f
	}
	return forks
}
