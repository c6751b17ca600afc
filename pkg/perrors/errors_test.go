package perrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			err:      New(CodeInput, "malformed cell count"),
			expected: "[INPUT_ERROR] malformed cell count",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeReference, "net references unknown cell", errors.New(`"z9" not declared`)),
			expected: `[REFERENCE_ERROR] net references unknown cell: "z9" not declared`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeTrialFailure, "trial panicked", underlying)

	unwrapped := err.Unwrap()
	assert.Equal(t, underlying, unwrapped)
}

func TestAppError_Is(t *testing.T) {
	err1 := New(CodeInput, "error 1")
	err2 := New(CodeInput, "error 2")
	err3 := New(CodeReference, "error 3")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestIsInputError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"input error", ErrInput, true},
		{"wrapped input error", Wrap(CodeInput, "bad header", errors.New("EOF")), true},
		{"other error", ErrReference, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsInputError(tt.err))
		})
	}
}

func TestIsReferenceError(t *testing.T) {
	assert.True(t, IsReferenceError(ErrReference))
	assert.False(t, IsReferenceError(ErrInput))
}

func TestIsTrialFailure(t *testing.T) {
	assert.True(t, IsTrialFailure(ErrTrialFailure))
	assert.False(t, IsTrialFailure(ErrInput))
}

func TestIsNoSolution(t *testing.T) {
	assert.True(t, IsNoSolution(ErrNoSolution))
	assert.False(t, IsNoSolution(ErrInput))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeInput, "bad input"),
			expected: CodeInput,
		},
		{
			name:     "wrapped app error",
			err:      Wrap(CodeReference, "dangling ref", errors.New("inner")),
			expected: CodeReference,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: CodeUnknown,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCode(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeInput, "cell count mismatch"),
			expected: "cell count mismatch",
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: "standard error",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorMessage(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(ErrNoSolution))
	assert.Equal(t, 1, ExitCode(errors.New("anything")))
}
