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

// Is matches any AppError carrying the same code, so callers can compare
// against the exported sentinels with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an
// AppError cause.
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

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return err != nil && GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeArchiveDisabled = "ARCHIVE_DISABLED"

	// Analysis conditions
	CodeNoDataAvailable        = "NO_DATA_AVAILABLE"
	CodeInsufficientSampleSize = "INSUFFICIENT_SAMPLE_SIZE"
	CodeDegenerateVariance     = "DEGENERATE_VARIANCE"
	CodeInvalidParameter       = "INVALID_PARAMETER"
)

// Sentinels for errors.Is comparisons
var (
	ErrNoDataAvailable        = &AppError{Code: CodeNoDataAvailable}
	ErrInsufficientSampleSize = &AppError{Code: CodeInsufficientSampleSize}
	ErrDegenerateVariance     = &AppError{Code: CodeDegenerateVariance}
	ErrInvalidParameter       = &AppError{Code: CodeInvalidParameter}
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// NoDataAvailable is returned when analysis is requested on an empty dataset store
func NoDataAvailable() *AppError {
	return New(CodeNoDataAvailable, "no dataset available; run a simulation first")
}

// InsufficientSampleSize reports a group too small for the named procedure
func InsufficientSampleSize(procedure string, group string, n, minimum int) *AppError {
	return New(CodeInsufficientSampleSize,
		fmt.Sprintf("%s requires at least %d observations, group %q has %d", procedure, minimum, group, n))
}

// DegenerateVariance reports a zero-variance input that makes a statistic singular
func DegenerateVariance(message string) *AppError {
	return New(CodeDegenerateVariance, message)
}

// InvalidParameter rejects an ingest parameter before anything is stored
func InvalidParameter(message string) *AppError {
	return New(CodeInvalidParameter, message)
}

// ArchiveDisabled is returned by history queries when no database is configured
func ArchiveDisabled() *AppError {
	return New(CodeArchiveDisabled, "dataset archive is not configured; set DATABASE_URL")
}
