package heapalgo

import (
	"errors"
	"fmt"
)

// InvalidArgumentError is returned when an algorithm receives an argument
// outside its domain, such as a non-positive k for top-k selection.
type InvalidArgumentError struct {
	// Op is the algorithm that rejected the argument.
	Op string

	// Message describes the violated constraint.
	Message string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(op, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Message: message}
}

// IsInvalidArgument returns true if the error is an invalid-argument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var ie *InvalidArgumentError
	return errors.As(err, &ie)
}
