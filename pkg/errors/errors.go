// Package errors defines the error values shared across the behavior tree SDK.
// Statuses (RUNNING, SUCCESS, FAIL) are normal control values and are never
// expressed as errors; only protocol violations and malformed configuration
// surface through this package.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCompleted indicates that a terminated act was ticked without an
	// intervening reset (an advance-after-completion fault)
	ErrCompleted = errors.New("act already completed")

	// ErrNoChildren indicates that a composite was constructed without children
	ErrNoChildren = errors.New("composite requires at least one child")

	// ErrNilChild indicates that a nil child was passed to a composite constructor
	ErrNilChild = errors.New("child cannot be nil")

	// ErrNilComputation indicates that a wrap was constructed without a computation
	ErrNilComputation = errors.New("computation cannot be nil")

	// ErrInvalidIterations indicates that a loop was configured with a
	// non-positive iteration bound
	ErrInvalidIterations = errors.New("iterations must be greater than 0")

	// ErrNilRoot indicates that a tree was constructed without a root act
	ErrNilRoot = errors.New("root act cannot be nil")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrUnknownKind indicates that a definition references an unknown node kind
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrUnknownRef indicates that a leaf definition references a factory that
	// was never registered
	ErrUnknownRef = errors.New("unknown leaf reference")
)

// Error codes used by the structured Error type
const (
	CodeCompleted     = "ACT_COMPLETED"
	CodeMalformed     = "MALFORMED_CONFIGURATION"
	CodeUnknownKind   = "UNKNOWN_KIND"
	CodeUnknownRef    = "UNKNOWN_REF"
	CodeLeafFailure   = "LEAF_FAILURE"
	CodeStorage       = "STORAGE_FAILURE"
	CodeInvalidSchema = "INVALID_SCHEMA"
)

// Error represents a structured SDK error
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new SDK error
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Completed builds the completion-fault error for the named act
func Completed(name string) error {
	return NewError(CodeCompleted, fmt.Sprintf("act %q ticked after termination", name), ErrCompleted)
}

// Malformed builds a malformed-configuration error for the named act
func Malformed(name string, err error) error {
	return NewError(CodeMalformed, fmt.Sprintf("invalid configuration for act %q", name), err)
}

// IsCompleted checks if an error is a completion fault
func IsCompleted(err error) bool {
	return errors.Is(err, ErrCompleted)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
