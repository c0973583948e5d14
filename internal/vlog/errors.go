package vlog

import (
	"errors"
	"fmt"
)

// Error is a failed precondition of a store operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context, e.g. the offending argument.
	Details map[string]string
}

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a malformed, missing or non-numeric
	// argument, or a wrong argument count.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeNotFound indicates a bucket, record or metadata blob is absent
	// where a lookup requires it.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInconsistent indicates the metadata claims a sequence number
	// whose record is missing from storage.
	ErrCodeInconsistent ErrorCode = "INCONSISTENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf returns an INVALID_ARGUMENT error.
func InvalidArgumentf(format string, args ...any) *Error {
	return newError(ErrCodeInvalidArgument, format, args...)
}

// NotFoundf returns a NOT_FOUND error.
func NotFoundf(format string, args ...any) *Error {
	return newError(ErrCodeNotFound, format, args...)
}

// Inconsistentf returns an INCONSISTENT error.
func Inconsistentf(format string, args ...any) *Error {
	return newError(ErrCodeInconsistent, format, args...)
}

// withDetail sets a detail entry and returns e.
func (e *Error) withDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidArgument returns true if err is an INVALID_ARGUMENT error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrCodeInvalidArgument
}

// IsNotFound returns true if err is a NOT_FOUND error.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsInconsistent returns true if err is an INCONSISTENT error.
func IsInconsistent(err error) bool {
	return CodeOf(err) == ErrCodeInconsistent
}
