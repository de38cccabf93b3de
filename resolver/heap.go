package resolver

import (
	"container/heap"
)

// admissionHeap orders the handles awaiting a DHT GET by start time,
// oldest on top. It implements the backpressure policy: when the heap is at
// capacity, admitting a new GET force-fails the oldest waiting one.
//
// All methods must be called with the context lock held.
type admissionHeap struct {
	handles handleHeap
}

func newAdmissionHeap() *admissionHeap {
	return &admissionHeap{}
}

func (a *admissionHeap) size() int {
	return len(a.handles)
}

func (a *admissionHeap) push(h *Handle) {
	heap.Push(&a.handles, h)
}

// popOldest removes and returns the handle with the earliest start time
func (a *admissionHeap) popOldest() *Handle {
	h := heap.Pop(&a.handles).(*Handle)
	h.heapIndex = -1

	return h
}

// remove takes a handle out of the heap regardless of position;
// a no-op when the handle is not in the heap
func (a *admissionHeap) remove(h *Handle) {
	if h.heapIndex < 0 {
		return
	}

	heap.Remove(&a.handles, h.heapIndex)
	h.heapIndex = -1
}

type handleHeap []*Handle

func (s handleHeap) Len() int { return len(s) }

func (s handleHeap) Less(i, j int) bool {
	return s[i].dhtStarted.Before(s[j].dhtStarted)
}

func (s handleHeap) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].heapIndex = i
	s[j].heapIndex = j
}

func (s *handleHeap) Push(x interface{}) {
	h := x.(*Handle)
	h.heapIndex = len(*s)
	*s = append(*s, h)
}

func (s *handleHeap) Pop() interface{} {
	old := *s
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	*s = old[:n-1]

	return h
}
