// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown         = "UNKNOWN_ERROR"
	CodeInvalidShape    = "INVALID_SHAPE"
	CodeDegenerateShape = "DEGENERATE_SHAPE"
	CodeExtentMismatch  = "EXTENT_MISMATCH"
	CodeUnsetFlag       = "UNSET_FLAG"
	CodeQueueOverflow   = "QUEUE_OVERFLOW"
	CodeIoError         = "IO_ERROR"
	CodeBadPlan         = "BAD_PLAN"
	CodeConfigError     = "CONFIG_ERROR"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeUploadError     = "UPLOAD_ERROR"
	CodeDownloadError   = "DOWNLOAD_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

// AppError represents an application error with a code and message.
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

// Is checks if the error matches the target.
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

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
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
	ErrInvalidShape    = New(CodeInvalidShape, "invalid stencil shape")
	ErrDegenerateShape = New(CodeDegenerateShape, "degenerate stencil shape")
	ErrExtentMismatch  = New(CodeExtentMismatch, "registered arrays disagree on extents")
	ErrUnsetFlag       = New(CodeUnsetFlag, "engine not fully configured")
	ErrQueueOverflow   = New(CodeQueueOverflow, "scheduler staging queue overflowed")
	ErrIo              = New(CodeIoError, "plan file I/O error")
	ErrBadPlan         = New(CodeBadPlan, "malformed plan file")
	ErrConfig          = New(CodeConfigError, "configuration error")
	ErrDatabase        = New(CodeDatabaseError, "database error")
	ErrUpload          = New(CodeUploadError, "upload error")
	ErrDownload        = New(CodeDownloadError, "download error")
	ErrInvalidInput    = New(CodeInvalidInput, "invalid input")
)

// IsInvalidShape checks if the error is an invalid shape error.
func IsInvalidShape(err error) bool {
	return errors.Is(err, ErrInvalidShape)
}

// IsQueueOverflow checks if the error is a queue overflow error.
func IsQueueOverflow(err error) bool {
	return errors.Is(err, ErrQueueOverflow)
}

// IsBadPlan checks if the error is a malformed plan error.
func IsBadPlan(err error) bool {
	return errors.Is(err, ErrBadPlan)
}

// IsUnsetFlag checks if the error is an unset configuration error.
func IsUnsetFlag(err error) bool {
	return errors.Is(err, ErrUnsetFlag)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}
