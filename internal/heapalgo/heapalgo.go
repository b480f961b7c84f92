// Package heapalgo provides heap-backed algorithms: full sorting and
// bounded top-k selection.
package heapalgo

import (
	"cmp"

	"github.com/roach88/hoard/internal/heap"
	"github.com/roach88/hoard/internal/order"
)

// Sort returns the elements in ascending or descending natural order.
// The input slice is copied, never mutated. Empty input yields an empty,
// non-nil slice.
//
// Mechanics: heapify a copy in linear time, then drain. Ascending order
// uses the min policy so each extract surfaces the next smallest element.
func Sort[T cmp.Ordered](items []T, ascending bool) []T {
	if ascending {
		return SortFunc(items, order.Min[T]())
	}
	return SortFunc(items, order.Max[T]())
}

// SortFunc returns the elements in priority order under the given policy:
// the element the policy ranks highest comes first. The input slice is
// copied, never mutated.
func SortFunc[T any](items []T, c order.Comparator[T]) []T {
	buf := make([]T, len(items))
	copy(buf, items)
	return heap.Heapify(buf, c).Drain()
}

// KLargest returns the k largest elements in ascending order.
//
// k <= 0 fails with InvalidArgumentError. k >= len(items) returns all
// elements sorted ascending. The input slice is never mutated.
//
// A min-heap of size k holds the current candidates; its root is the
// smallest survivor, so any element that strictly exceeds the root evicts
// it. Elements equal to the root leave the candidate set unchanged.
// Memory beyond the input stays proportional to k.
func KLargest[T cmp.Ordered](items []T, k int) ([]T, error) {
	if k <= 0 {
		return nil, NewInvalidArgumentError("k_largest", "k must be positive")
	}
	if k >= len(items) {
		return Sort(items, true), nil
	}

	buf := make([]T, k)
	copy(buf, items[:k])
	h := heap.Heapify(buf, order.Min[T]())

	for _, v := range items[k:] {
		floor, err := h.Peek()
		if err != nil {
			return nil, err
		}
		if v > floor {
			if _, err := h.Extract(); err != nil {
				return nil, err
			}
			h.Insert(v)
		}
	}

	return h.Drain(), nil
}

// KLargestFunc returns the k highest-priority elements under the given
// policy, lowest of the selection first. With a descending policy it
// behaves as KLargest does for ordered types.
//
// The selection heap is ordered by the reversed policy so its root is the
// lowest-priority survivor; an element evicts the root only when the policy
// ranks it strictly above. The input slice is never mutated.
func KLargestFunc[T any](items []T, k int, c order.Comparator[T]) ([]T, error) {
	if k <= 0 {
		return nil, NewInvalidArgumentError("k_largest", "k must be positive")
	}
	if k >= len(items) {
		return SortFunc(items, order.Reverse(c)), nil
	}

	buf := make([]T, k)
	copy(buf, items[:k])
	h := heap.Heapify(buf, order.Reverse(c))

	for _, v := range items[k:] {
		floor, err := h.Peek()
		if err != nil {
			return nil, err
		}
		if c(v, floor) {
			if _, err := h.Extract(); err != nil {
				return nil, err
			}
			h.Insert(v)
		}
	}

	return h.Drain(), nil
}
