// Package errors provides the simulator's error taxonomy and HTTP error responses.
package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents application-specific error codes.
type ErrorCode string

const (
	// General errors
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeServiceDown    ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCodeRateLimited    ErrorCode = "RATE_LIMITED"

	// Lookup errors
	ErrorCodeFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrorCodeComponentNotFound ErrorCode = "COMPONENT_NOT_FOUND"
)

// Error is a domain error carrying a code and optional cause
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.FromError classify the error.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.grpcCode(), e.Error())
}

func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case ErrorCodeInvalidRequest:
		return codes.InvalidArgument
	case ErrorCodeFileNotFound, ErrorCodeComponentNotFound:
		return codes.NotFound
	case ErrorCodeServiceDown:
		return codes.Unavailable
	case ErrorCodeRateLimited:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// WithDetail attaches a detail value and returns the error for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an Error with the given code
func New(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code around cause
func Wrap(code ErrorCode, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// FileNotFound reports a lookup for a file the cluster does not hold
func FileNotFound(name string) *Error {
	return New(ErrorCodeFileNotFound, "file %s not found", name)
}

// ComponentNotFound reports a component name that is not in the topology
func ComponentNotFound(name string) *Error {
	return New(ErrorCodeComponentNotFound, "component %s not found", name)
}

// Unavailable reports a simulated outage
func Unavailable(format string, args ...interface{}) *Error {
	return New(ErrorCodeServiceDown, format, args...)
}

// InvalidRequest reports a malformed request
func InvalidRequest(format string, args ...interface{}) *Error {
	return New(ErrorCodeInvalidRequest, format, args...)
}

// CodeOf extracts the ErrorCode from err. Errors outside the taxonomy are
// internal; a nil error has no code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrorCodeInternalError
}

// DetailOf returns a detail value attached anywhere in err's chain
func DetailOf(err error, key string) (interface{}, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Details == nil {
		return nil, false
	}
	v, ok := e.Details[key]
	return v, ok
}
