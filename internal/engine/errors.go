package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/heap"
)

// DispatchError represents a semantic failure of a dispatched operation.
//
// Dispatch errors include:
//   - Not initialized: no bundle attached, or no heap behind the bundle
//   - Already initialized: init on a principal that already has a heap
//   - Invalid argument: insert without an element, or a malformed one
//   - Quota exceeded: insert would grow the heap past the element limit
//   - Bundle held: dispatch attempted while the bundle is checked out
//
// DispatchError includes structured fields for diagnostics and recovery.
type DispatchError struct {
	// Code identifies the error category.
	Code DispatchErrorCode

	// Message is a human-readable description.
	Message string

	// Principal identifies the affected principal.
	Principal string

	// Op identifies the operation that failed, when one was dispatched.
	Op caps.OpKind

	// Details contains additional context.
	Details map[string]string
}

// DispatchErrorCode categorizes dispatch errors.
type DispatchErrorCode string

const (
	// ErrCodeNotInitialized indicates a missing bundle or heap.
	ErrCodeNotInitialized DispatchErrorCode = "NOT_INITIALIZED"

	// ErrCodeAlreadyInitialized indicates a repeated initialization.
	ErrCodeAlreadyInitialized DispatchErrorCode = "ALREADY_INITIALIZED"

	// ErrCodeInvalidArgument indicates a missing or malformed operation argument.
	ErrCodeInvalidArgument DispatchErrorCode = "INVALID_ARGUMENT"

	// ErrCodeQuotaExceeded indicates the heap would exceed its element limit.
	ErrCodeQuotaExceeded DispatchErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeBundleHeld indicates a dispatch while the bundle is checked out.
	ErrCodeBundleHeld DispatchErrorCode = "BUNDLE_HELD"
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Principal != "" && e.Op != "" {
		return fmt.Sprintf("%s: %s (principal=%s, op=%s)", e.Code, e.Message, e.Principal, e.Op)
	}
	if e.Principal != "" {
		return fmt.Sprintf("%s: %s (principal=%s)", e.Code, e.Message, e.Principal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotInitialized returns true if the error reports a missing bundle or heap.
// Uses errors.As to handle wrapped errors.
func IsNotInitialized(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeNotInitialized
	}
	return false
}

// IsAlreadyInitialized returns true if the error reports a repeated initialization.
// Uses errors.As to handle wrapped errors.
func IsAlreadyInitialized(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeAlreadyInitialized
	}
	return false
}

// IsInvalidArgument returns true if the error reports a bad operation argument.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeInvalidArgument
	}
	return false
}

// IsQuotaExceeded returns true if the error reports a breached element limit.
// Uses errors.As to handle wrapped errors.
func IsQuotaExceeded(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeQuotaExceeded
	}
	return false
}

// IsBundleHeld returns true if the error reports a dispatch during checkout.
// Uses errors.As to handle wrapped errors.
func IsBundleHeld(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeBundleHeld
	}
	return false
}

// NewNotInitializedError creates a DispatchError for a missing bundle or heap.
func NewNotInitializedError(principal string, op caps.OpKind, message string) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeNotInitialized,
		Message:   message,
		Principal: principal,
		Op:        op,
	}
}

// NewAlreadyInitializedError creates a DispatchError for repeated initialization.
func NewAlreadyInitializedError(principal string, op caps.OpKind, message string) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeAlreadyInitialized,
		Message:   message,
		Principal: principal,
		Op:        op,
	}
}

// NewInvalidArgumentError creates a DispatchError for a bad operation argument.
func NewInvalidArgumentError(principal string, op caps.OpKind, message string) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeInvalidArgument,
		Message:   message,
		Principal: principal,
		Op:        op,
	}
}

// NewQuotaExceededError creates a DispatchError for a breached element limit.
func NewQuotaExceededError(principal string, op caps.OpKind, size, limit int) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeQuotaExceeded,
		Message:   fmt.Sprintf("heap size limit reached (%d of %d elements)", size, limit),
		Principal: principal,
		Op:        op,
		Details: map[string]string{
			"size":  fmt.Sprintf("%d", size),
			"limit": fmt.Sprintf("%d", limit),
		},
	}
}

// NewBundleHeldError creates a DispatchError for a reentrant dispatch.
func NewBundleHeldError(principal string, op caps.OpKind) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeBundleHeld,
		Message:   "bundle is checked out by an in-flight dispatch",
		Principal: principal,
		Op:        op,
	}
}

// OutcomeOf maps an error returned by a dispatch or view call to its
// audit outcome code. Returns caps.OutcomeOK for nil and an empty
// outcome for infrastructure errors, which carry no code.
func OutcomeOf(err error) caps.Outcome {
	return outcomeFor(err)
}

// outcomeFor maps a dispatch failure to its audit outcome.
// Returns ok for nil and an empty outcome for infrastructure errors,
// which are never audited.
func outcomeFor(err error) caps.Outcome {
	if err == nil {
		return caps.OutcomeOK
	}
	if heap.IsEmptyError(err) {
		return caps.OutcomeEmptyHeap
	}
	var de *DispatchError
	if errors.As(err, &de) {
		switch de.Code {
		case ErrCodeNotInitialized:
			return caps.OutcomeNotInitialized
		case ErrCodeAlreadyInitialized:
			return caps.OutcomeAlreadyInitialized
		case ErrCodeInvalidArgument:
			return caps.OutcomeInvalidArgument
		case ErrCodeQuotaExceeded:
			return caps.OutcomeQuotaExceeded
		case ErrCodeBundleHeld:
			return caps.OutcomeBundleHeld
		}
	}
	return ""
}
