package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryRuntime  Category = "runtime"
	CategoryScenario Category = "scenario"
	CategoryProtocol Category = "protocol"
	CategoryCLI      Category = "cli"
)

// HermesError is a structured error with a code, explanation and hint.
type HermesError struct {
	// Code is a unique error identifier (e.g., "H001").
	Code string

	// Category is the error type (config, runtime, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HermesError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HermesError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a HermesError with the same code.
func (e *HermesError) Is(target error) bool {
	t, ok := target.(*HermesError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HermesError) WithSuggestion(s string) *HermesError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HermesError) WithDetail(d string) *HermesError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *HermesError) WithDetailf(format string, args ...any) *HermesError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *HermesError) Wrap(err error) *HermesError {
	e.Wrapped = err
	return e
}

// New creates a HermesError from a registered error code.
func New(code string) *HermesError {
	template, ok := registry[code]
	if !ok {
		return &HermesError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HermesError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}

// Newf creates a new HermesError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HermesError {
	return &HermesError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a HermesError.
func FromError(err error, code string) *HermesError {
	if err == nil {
		return nil
	}
	if he, ok := err.(*HermesError); ok {
		return he
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first HermesError in err's chain, or "".
func Code(err error) string {
	for err != nil {
		if he, ok := err.(*HermesError); ok {
			return he.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
