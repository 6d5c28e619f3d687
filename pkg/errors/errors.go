// Package errors provides structured error types for the PageGraph library.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Typed errors carrying the element, key or id that caused a failure
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - MALFORMED_*, DECODE_*, UNKNOWN_*, INVALID_*: input that cannot be read
//   - DUPLICATE_*, DANGLING_*: structural violations found while building a graph
//   - *_NOT_FOUND: lookups against a built graph or the file system
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidQuery, "unknown query %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidQuery) {
//	    // Handle lookup failure
//	}
//
//	// Typed errors from graph construction
//	var dangling *errors.DanglingEdgeError
//	if stderrors.As(err, &dangling) {
//	    fmt.Println(dangling.MissingID)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document errors
	ErrCodeMalformedDocument Code = "MALFORMED_DOCUMENT"
	ErrCodeDecode            Code = "DECODE_ERROR"
	ErrCodeUnknownKind       Code = "UNKNOWN_KIND"
	ErrCodeInvalidAttribute  Code = "INVALID_ATTRIBUTE"

	// Graph construction errors
	ErrCodeDuplicateNode Code = "DUPLICATE_NODE_ID"
	ErrCodeDuplicateEdge Code = "DUPLICATE_EDGE_ID"
	ErrCodeDanglingEdge  Code = "DANGLING_EDGE"

	// Lookup errors
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound Code = "EDGE_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeNotFound     Code = "NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidQuery  Code = "INVALID_QUERY"
	ErrCodeInvalidID     Code = "INVALID_ID"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by the typed errors in this package.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error with a
// matching code. The outermost coded error wins.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
