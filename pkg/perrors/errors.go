// Package perrors defines the partitioner's error taxonomy: a small set of
// codes distinguishing fatal input/reference problems from isolated trial
// failures and the no-solution case.
package perrors

import (
	"errors"
	"fmt"
)

// Error codes for the partitioner.
const (
	CodeUnknown      = "UNKNOWN_ERROR"
	CodeInput        = "INPUT_ERROR"
	CodeReference    = "REFERENCE_ERROR"
	CodeTrialFailure = "TRIAL_FAILURE"
	CodeNoSolution   = "NO_SOLUTION"
	CodeConfigError  = "CONFIG_ERROR"
)

// AppError represents a partitioner error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrInput        = New(CodeInput, "invalid input")
	ErrReference    = New(CodeReference, "unresolved cell reference")
	ErrTrialFailure = New(CodeTrialFailure, "trial failed")
	ErrNoSolution   = New(CodeNoSolution, "no trial produced a valid partition")
	ErrConfigError  = New(CodeConfigError, "configuration error")
)

// IsInputError reports whether err is an input-format error.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInput)
}

// IsReferenceError reports whether err is an unresolved-reference error.
func IsReferenceError(err error) bool {
	return errors.Is(err, ErrReference)
}

// IsTrialFailure reports whether err is an isolated trial failure.
func IsTrialFailure(err error) bool {
	return errors.Is(err, ErrTrialFailure)
}

// IsNoSolution reports whether err is the no-solution outcome.
func IsNoSolution(err error) bool {
	return errors.Is(err, ErrNoSolution)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// ExitCode returns the process exit code for err: 0 for nil, 1 otherwise.
// Timeout is not an error in this taxonomy (the hierarchical driver returns
// its best-so-far result on timeout) so it never reaches here.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
