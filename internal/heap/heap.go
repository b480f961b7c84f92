// Package heap implements a generic array-backed binary heap with an
// injected ordering policy.
//
// The heap stores elements in a slice with children of index i at 2i+1 and
// 2i+2 and the parent at (i-1)/2. The root (index 0) is always the maximal
// element under the injected comparator. Whether that means "largest" or
// "smallest" is entirely the comparator's business - the heap never compares
// elements itself.
//
// Equal-priority elements surface in no guaranteed relative order: the heap
// is not a stable container. Duplicates are fully supported.
package heap

import (
	"cmp"

	"github.com/roach88/hoard/internal/order"
)

// Heap is a binary heap ordered by the comparator supplied at construction.
// The zero value is not usable; construct with New, NewMax, NewMin, or
// Heapify.
//
// Heap is not safe for concurrent use.
type Heap[T any] struct {
	cmp   order.Comparator[T]
	items []T
}

// New creates an empty heap governed by the given policy.
// The same comparator drives the heap for its whole lifetime.
func New[T any](c order.Comparator[T]) *Heap[T] {
	return &Heap[T]{cmp: c}
}

// NewMax creates an empty max-heap over naturally ordered elements.
func NewMax[T cmp.Ordered]() *Heap[T] {
	return New(order.Max[T]())
}

// NewMin creates an empty min-heap over naturally ordered elements.
func NewMin[T cmp.Ordered]() *Heap[T] {
	return New(order.Min[T]())
}

// Heapify establishes heap order over the given slice in linear time and
// returns a heap backed by it. The heap takes ownership of the slice; the
// caller must not use it afterwards.
//
// Order is established bottom-up: every subtree root from index len/2 - 1
// down to 0 is sifted down. Empty and single-element slices are already
// heaps and need no work.
func Heapify[T any](items []T, c order.Comparator[T]) *Heap[T] {
	h := &Heap[T]{cmp: c, items: items}
	for i := len(items)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
	return h
}

// Insert adds an element, restoring heap order by sifting it up while it
// dominates its parent.
func (h *Heap[T]) Insert(v T) {
	h.items = append(h.items, v)
	h.up(len(h.items) - 1)
}

// Extract removes and returns the root element.
// Returns EmptyError if the heap is empty.
func (h *Heap[T]) Extract() (T, error) {
	n := len(h.items)
	if n == 0 {
		var zero T
		return zero, &EmptyError{Op: "extract"}
	}

	root := h.items[0]
	if n == 1 {
		h.items = h.items[:0]
		return root, nil
	}

	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	h.down(0)
	return root, nil
}

// Peek returns the root element without removing it.
// Returns EmptyError if the heap is empty.
func (h *Heap[T]) Peek() (T, error) {
	if len(h.items) == 0 {
		var zero T
		return zero, &EmptyError{Op: "peek"}
	}
	return h.items[0], nil
}

// Len returns the number of elements in the heap.
func (h *Heap[T]) Len() int {
	return len(h.items)
}

// IsEmpty reports whether the heap holds no elements.
func (h *Heap[T]) IsEmpty() bool {
	return len(h.items) == 0
}

// Items returns a copy of the backing array in heap order: the root at
// index 0, children of index i at 2i+1 and 2i+2. Used to persist or
// snapshot a heap without consuming it.
func (h *Heap[T]) Items() []T {
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}

// Drain extracts every element in priority order, consuming the heap.
// The heap is empty afterwards and may be reused.
func (h *Heap[T]) Drain() []T {
	out := make([]T, 0, len(h.items))
	for len(h.items) > 0 {
		v, _ := h.Extract()
		out = append(out, v)
	}
	return out
}

// up sifts the element at index i toward the root while it dominates its
// parent.
func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.cmp(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

// down sifts the element at index i toward the leaves until neither child
// dominates it.
//
// Tie-break: the candidate child starts as the left child; the right child
// replaces it only when the right strictly dominates the left. Equal
// priorities therefore favor the left branch.
func (h *Heap[T]) down(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		child := left
		if right := left + 1; right < n && h.cmp(h.items[right], h.items[left]) {
			child = right
		}
		if !h.cmp(h.items[child], h.items[i]) {
			return
		}
		h.items[i], h.items[child] = h.items[child], h.items[i]
		i = child
	}
}
