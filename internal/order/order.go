// Package order defines the comparator policies that drive heap ordering.
//
// A Comparator is a pure, named ordering predicate. Policies are built from
// the constructors below rather than ad hoc closures so that the same policy
// value can drive a heap for its whole lifetime and tests can name the
// ordering they exercise.
package order

import (
	"cmp"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator reports whether a must sit above b in the heap.
//
// The relation is strict: cmp(a, a) is false for every well-formed
// comparator, and cmp(a, b) is false when a and b rank equally.
// Comparators must be pure - no side effects, stable results for the
// same arguments.
type Comparator[T any] func(a, b T) bool

// Max returns the natural descending policy: the largest element on top.
func Max[T cmp.Ordered]() Comparator[T] {
	return func(a, b T) bool { return a > b }
}

// Min returns the natural ascending policy: the smallest element on top.
func Min[T cmp.Ordered]() Comparator[T] {
	return func(a, b T) bool { return a < b }
}

// Reverse inverts a comparator by swapping its arguments.
// Reverse(Reverse(c)) behaves as c.
func Reverse[T any](c Comparator[T]) Comparator[T] {
	return func(a, b T) bool { return c(b, a) }
}

// MaxBy projects a key from each element and prefers the larger key.
// Elements with equal keys rank equally regardless of their other fields.
func MaxBy[T any, K cmp.Ordered](key func(T) K) Comparator[T] {
	return func(a, b T) bool { return key(a) > key(b) }
}

// MinBy projects a key from each element and prefers the smaller key.
func MinBy[T any, K cmp.Ordered](key func(T) K) Comparator[T] {
	return func(a, b T) bool { return key(a) < key(b) }
}

// FromCompare adapts a three-way compare function into a Comparator.
// With descending=false the smaller element sits on top; with
// descending=true the larger one does.
func FromCompare[T any](compare func(a, b T) int, descending bool) Comparator[T] {
	if descending {
		return func(a, b T) bool { return compare(a, b) > 0 }
	}
	return func(a, b T) bool { return compare(a, b) < 0 }
}

// Collated returns an ascending string policy under the collation rules of
// the given language tag. The collator is allocated once and captured; the
// returned comparator must not be shared across goroutines because
// collate.Collator is not safe for concurrent use.
func Collated(t language.Tag) Comparator[string] {
	c := collate.New(t)
	return func(a, b string) bool { return c.CompareString(a, b) < 0 }
}
