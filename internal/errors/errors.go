// Package errors defines the structured error taxonomy shared by every
// archlens component. Each AppError carries an ErrorType that the read
// surface maps directly onto an HTTP status code, so internal layers never
// need to know about transport concerns.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType is the closed taxonomy from spec §7.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeQuota       ErrorType = "quota"
	ErrorTypeDependency  ErrorType = "dependency"
	ErrorTypeProgramming ErrorType = "programming"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:  http.StatusBadRequest,
	ErrorTypeAuth:        http.StatusUnauthorized,
	ErrorTypeQuota:       http.StatusTooManyRequests,
	ErrorTypeDependency:  http.StatusServiceUnavailable,
	ErrorTypeProgramming: http.StatusInternalServerError,
}

// AppError is the single error type every archlens component returns.
type AppError struct {
	Type       ErrorType
	Message    string
	Details    string
	StatusCode int
	Cause      error
}

// New creates an AppError of the given type with no wrapped cause.
func New(t ErrorType, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: statusByType[t],
	}
}

// Newf creates an AppError with a formatted message.
func Newf(t ErrorType, format string, args ...interface{}) *AppError {
	return New(t, fmt.Sprintf(format, args...))
}

// Wrap creates an AppError that preserves an underlying cause.
func Wrap(cause error, t ErrorType, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: statusByType[t],
		Cause:      cause,
	}
}

// Wrapf creates a wrapped AppError with a formatted message.
func Wrapf(cause error, t ErrorType, format string, args ...interface{}) *AppError {
	return Wrap(cause, t, fmt.Sprintf(format, args...))
}

// WithDetails attaches additional, non-sensitive detail in place and returns
// the same error for chaining.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithDetailsf attaches formatted detail.
func (e *AppError) WithDetailsf(format string, args ...interface{}) *AppError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	return msg
}

// Unwrap exposes the wrapped cause so errors.Is/As work across layers.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Predefined constructors mirroring the component-level failures named in
// spec §7.

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewAuthError(message string) *AppError {
	return New(ErrorTypeAuth, message)
}

func NewQuotaError(message string) *AppError {
	return New(ErrorTypeQuota, message)
}

func NewDependencyError(operation string, cause error) *AppError {
	return Wrapf(cause, ErrorTypeDependency, "dependency operation failed: %s", operation)
}

func NewProgrammingError(message string) *AppError {
	return New(ErrorTypeProgramming, message)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Type == t
}

// GetType returns the ErrorType of err, or ErrorTypeProgramming if err is not
// an AppError — an un-typed error reaching the read surface is itself a
// should-never-happen condition.
func GetType(err error) ErrorType {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type
	}
	return ErrorTypeProgramming
}

// GetStatusCode maps err to its HTTP status, defaulting to 500.
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// safeMessages are the messages returned to callers for error types whose
// Message field may contain internal detail.
var safeMessages = map[ErrorType]string{
	ErrorTypeAuth:        "authentication failed",
	ErrorTypeQuota:       "request rejected: tenant quota exceeded",
	ErrorTypeDependency:  "an internal error occurred",
	ErrorTypeProgramming: "an internal error occurred",
}

// SafeErrorMessage returns a caller-safe detail string. Validation errors are
// passed through verbatim since they describe the caller's own input; every
// other type is replaced with a generic message so internal detail (table
// names, connection strings, stack state) never leaks across the boundary.
func SafeErrorMessage(err error) string {
	appErr, ok := err.(*AppError)
	if !ok {
		return "an unexpected error occurred"
	}
	if appErr.Type == ErrorTypeValidation {
		return appErr.Message
	}
	if msg, ok := safeMessages[appErr.Type]; ok {
		return msg
	}
	return "an unexpected error occurred"
}

// LogFields returns a structured field map suitable for logrus.WithFields,
// carrying internal detail that SafeErrorMessage deliberately withholds from
// callers.
func LogFields(err error) map[string]interface{} {
	fields := map[string]interface{}{"error": err.Error()}
	appErr, ok := err.(*AppError)
	if !ok {
		return fields
	}
	fields["error_type"] = string(appErr.Type)
	fields["status_code"] = appErr.StatusCode
	if appErr.Details != "" {
		fields["error_details"] = appErr.Details
	}
	if appErr.Cause != nil {
		fields["underlying_error"] = appErr.Cause.Error()
	}
	return fields
}

// Chain combines independent failures into a single error, filtering nils.
// Used by components (e.g. batch ingest, parallel rule evaluation) where
// several independent operations may each fail without one short-circuiting
// the others.
func Chain(errs ...error) error {
	var present []error
	for _, err := range errs {
		if err != nil {
			present = append(present, err)
		}
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	default:
		msg := present[0].Error()
		for _, err := range present[1:] {
			msg += " -> " + err.Error()
		}
		return fmt.Errorf("%s", msg)
	}
}
