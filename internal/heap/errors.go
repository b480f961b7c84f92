package heap

import (
	"errors"
	"fmt"
)

// EmptyError is returned when extract or peek is attempted on an empty heap.
// The heap never panics on empty access.
type EmptyError struct {
	// Op is the operation that found the heap empty ("extract" or "peek").
	Op string
}

// Error implements the error interface.
func (e *EmptyError) Error() string {
	return fmt.Sprintf("%s on empty heap", e.Op)
}

// IsEmptyError returns true if the error is an empty-heap error.
// Uses errors.As to handle wrapped errors.
func IsEmptyError(err error) bool {
	var ee *EmptyError
	return errors.As(err, &ee)
}
