// Package errors provides structured error handling for the fetch SDK.
// It defines the error taxonomy surfaced by transports (not found, service
// unavailable, generic transport failure) and carries enough context for
// callers to tell the authoritative failure apart from secondary causes.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category represents the type/category of an error for classification and handling
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryNotFound    Category = "not_found"
	CategoryUnavailable Category = "unavailable"
	CategoryTransport   Category = "transport"
	CategoryProvider    Category = "provider"
	CategoryInternal    Category = "internal"
	CategoryTimeout     Category = "timeout"
	CategoryCancelled   Category = "cancelled"
)

// Severity indicates how critical an error is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Context provides additional context about where and when an error occurred
type Context struct {
	RequestID string    `json:"request_id,omitempty"`
	Location  string    `json:"location,omitempty"`
	Transport string    `json:"transport,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Component string    `json:"component,omitempty"`
	Operation string    `json:"operation,omitempty"`
}

// FetchError defines the interface for all fetch SDK errors
type FetchError interface {
	error

	// Code returns the numeric error code
	Code() int

	// Message returns a human-readable error message
	Message() string

	// Details returns detailed technical description for debugging
	Details() string

	// Data returns structured error data for programmatic handling
	Data() interface{}

	// Category returns the error category for classification
	Category() Category

	// Severity returns the error severity level
	Severity() Severity

	// Context returns the error context information
	Context() *Context

	// Suppressed returns causes recorded alongside the authoritative one,
	// such as the failure of a fallback path.
	Suppressed() []error

	// WithContext returns a new error with the provided context
	WithContext(ctx *Context) FetchError

	// WithDetail returns a new error with additional detail
	WithDetail(detail string) FetchError

	// WithData returns a new error with structured data
	WithData(data interface{}) FetchError

	// WithSuppressed returns a new error with err recorded as a suppressed cause
	WithSuppressed(err error) FetchError

	// Unwrap returns the underlying error for error chain traversal
	Unwrap() error

	// ToJSON returns the error as a JSON-serializable map
	ToJSON() map[string]interface{}
}

// baseError implements the FetchError interface
type baseError struct {
	code       int
	message    string
	details    string
	data       interface{}
	category   Category
	severity   Severity
	context    *Context
	cause      error
	suppressed []error
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if e.details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.details)
	}
	if len(e.suppressed) > 0 {
		parts := make([]string, len(e.suppressed))
		for i, s := range e.suppressed {
			parts[i] = s.Error()
		}
		msg = fmt.Sprintf("%s (suppressed: %s)", msg, strings.Join(parts, "; "))
	}
	return msg
}

func (e *baseError) Code() int          { return e.code }
func (e *baseError) Message() string    { return e.message }
func (e *baseError) Details() string    { return e.details }
func (e *baseError) Data() interface{}  { return e.data }
func (e *baseError) Category() Category { return e.category }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) Context() *Context  { return e.context }

// Suppressed returns a copy of the suppressed causes
func (e *baseError) Suppressed() []error {
	if len(e.suppressed) == 0 {
		return nil
	}
	out := make([]error, len(e.suppressed))
	copy(out, e.suppressed)
	return out
}

// WithContext returns a new error with the provided context
func (e *baseError) WithContext(ctx *Context) FetchError {
	newErr := *e
	newErr.context = ctx
	return &newErr
}

// WithDetail returns a new error with additional detail
func (e *baseError) WithDetail(detail string) FetchError {
	newErr := *e
	if newErr.details != "" {
		newErr.details = fmt.Sprintf("%s; %s", newErr.details, detail)
	} else {
		newErr.details = detail
	}
	return &newErr
}

// WithData returns a new error with structured data
func (e *baseError) WithData(data interface{}) FetchError {
	newErr := *e
	newErr.data = data
	return &newErr
}

// WithSuppressed returns a new error carrying err as a suppressed cause.
// The receiver is left untouched.
func (e *baseError) WithSuppressed(err error) FetchError {
	if err == nil {
		return e
	}
	newErr := *e
	newErr.suppressed = append(append([]error(nil), e.suppressed...), err)
	return &newErr
}

// Unwrap returns the underlying error
func (e *baseError) Unwrap() error {
	return e.cause
}

// ToJSON returns the error as a JSON-serializable map
func (e *baseError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":     e.code,
		"message":  e.message,
		"category": string(e.category),
		"severity": string(e.severity),
	}

	if e.details != "" {
		result["details"] = e.details
	}
	if e.data != nil {
		result["data"] = e.data
	}
	if e.context != nil {
		result["context"] = e.context
	}
	if e.cause != nil {
		result["cause"] = e.cause.Error()
	}
	if len(e.suppressed) > 0 {
		suppressed := make([]string, len(e.suppressed))
		for i, s := range e.suppressed {
			suppressed[i] = s.Error()
		}
		result["suppressed"] = suppressed
	}

	return result
}

// MarshalJSON implements json.Marshaler for baseError
func (e *baseError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToJSON())
}

// NewError creates a new FetchError with the specified parameters
func NewError(code int, message string, category Category, severity Severity) FetchError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
		context:  &Context{Timestamp: time.Now()},
	}
}

// NewErrorf creates a new FetchError with formatted message
func NewErrorf(code int, category Category, severity Severity, format string, args ...interface{}) FetchError {
	return NewError(code, fmt.Sprintf(format, args...), category, severity)
}

// WrapError wraps an existing error as a FetchError
func WrapError(err error, code int, message string, category Category, severity Severity) FetchError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
		cause:    err,
		context:  &Context{Timestamp: time.Now()},
	}
}

// AsFetchError extracts a FetchError from err's chain
func AsFetchError(err error) (FetchError, bool) {
	for err != nil {
		if fe, ok := err.(FetchError); ok {
			return fe, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// IsFetchError checks if an error is a FetchError
func IsFetchError(err error) bool {
	_, ok := AsFetchError(err)
	return ok
}

// IsCategory checks if an error is of a specific category
func IsCategory(err error, category Category) bool {
	if fe, ok := AsFetchError(err); ok {
		return fe.Category() == category
	}
	return false
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code int) bool {
	if fe, ok := AsFetchError(err); ok {
		return fe.Code() == code
	}
	return false
}
