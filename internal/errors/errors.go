package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode wraps an error under a specific error code
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// Codef creates a coded error wrapping cause with a formatted message
func Codef(code string, cause error, format string, args ...interface{}) error {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost error code, or "UNKNOWN" if err carries none
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInputNotFound    = "INPUT_NOT_FOUND"
	CodeNameExhausted    = "NAME_EXHAUSTED"
	CodeSourceReadError  = "SOURCE_READ_ERROR"
	CodeOutputWriteError = "OUTPUT_WRITE_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InputNotFound(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeInputNotFound,
		Message: fmt.Sprintf("input file not found: %s", path),
		Cause:   cause,
	}
}

func SourceRead(table string, cause error) *AppError {
	return &AppError{
		Code:    CodeSourceReadError,
		Message: fmt.Sprintf("failed to read table %q", table),
		Cause:   cause,
	}
}

func OutputWrite(table string, cause error) *AppError {
	return &AppError{
		Code:    CodeOutputWriteError,
		Message: fmt.Sprintf("failed to write table %q", table),
		Cause:   cause,
	}
}
