package engine

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of a chart computation error.
type ErrorClass string

const (
	// ErrorClassInput indicates the caller supplied data the engine cannot use.
	// Examples: negative degrees, out-of-range coordinates.
	ErrorClassInput ErrorClass = "input"

	// ErrorClassSearch indicates the imprint search could not bracket or refine
	// the design instant.
	ErrorClassSearch ErrorClass = "search"

	// ErrorClassProvider indicates the ephemeris provider failed.
	ErrorClassProvider ErrorClass = "provider"

	// ErrorClassRecoverable marks provider conditions the engine handles locally
	// (ambiguous civil time, unknown timezone). They never reach the caller.
	ErrorClassRecoverable ErrorClass = "recoverable"

	// ErrorClassTransient indicates a failure that may succeed on retry,
	// such as a computation deadline.
	ErrorClassTransient ErrorClass = "transient"

	// ErrorClassPermanent indicates a non-recoverable error outside the other classes.
	ErrorClassPermanent ErrorClass = "permanent"
)

// Common error codes.
const (
	ErrCodeOutOfRangeDegree         = "OUT_OF_RANGE_DEGREE"
	ErrCodeImprintNotFound          = "IMPRINT_NOT_FOUND"
	ErrCodeImprintPrecisionNotFound = "IMPRINT_PRECISION_NOT_FOUND"
	ErrCodeAmbiguousLocalTime       = "AMBIGUOUS_LOCAL_TIME"
	ErrCodeUnknownTimezone          = "UNKNOWN_TIMEZONE"
	ErrCodeProviderFailed           = "PROVIDER_FAILED"
	ErrCodeValidation               = "VALIDATION_ERROR"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeTimeout                  = "TIMEOUT"
	ErrCodeInternal                 = "INTERNAL_ERROR"
)

// ChartError represents a classified error with context.
type ChartError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Code is the machine-readable error code.
	Code string `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Operation is the pipeline step that failed, if known.
	Operation string `json:"operation,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`

	// Details carries the offending values (degree, search window, planet).
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ChartError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Operation != "" {
		msg = fmt.Sprintf("%s (operation=%s)", msg, e.Operation)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ChartError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *ChartError) Is(target error) bool {
	t, ok := target.(*ChartError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// WithOperation adds operation context to an error.
func (e *ChartError) WithOperation(operation string) *ChartError {
	e.Operation = operation
	return e
}

// WithDetail adds a detail field to the error context.
func (e *ChartError) WithDetail(key string, value interface{}) *ChartError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Sentinels for errors.Is. Only Class and Code take part in the comparison.
var (
	ErrOutOfRangeDegree         = &ChartError{Class: ErrorClassInput, Code: ErrCodeOutOfRangeDegree}
	ErrImprintNotFound          = &ChartError{Class: ErrorClassSearch, Code: ErrCodeImprintNotFound}
	ErrImprintPrecisionNotFound = &ChartError{Class: ErrorClassSearch, Code: ErrCodeImprintPrecisionNotFound}
	ErrAmbiguousLocalTime       = &ChartError{Class: ErrorClassRecoverable, Code: ErrCodeAmbiguousLocalTime}
	ErrUnknownTimezone          = &ChartError{Class: ErrorClassRecoverable, Code: ErrCodeUnknownTimezone}
	ErrProviderFailed           = &ChartError{Class: ErrorClassProvider, Code: ErrCodeProviderFailed}
	ErrValidation               = &ChartError{Class: ErrorClassInput, Code: ErrCodeValidation}
	ErrNotFound                 = &ChartError{Class: ErrorClassPermanent, Code: ErrCodeNotFound}
	ErrTimeout                  = &ChartError{Class: ErrorClassTransient, Code: ErrCodeTimeout}
)

func newError(class ErrorClass, code, message string, err error) *ChartError {
	return &ChartError{
		Class:   class,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewOutOfRangeDegreeError reports a degree the coordinate mapper cannot place.
func NewOutOfRangeDegreeError(degree float64) *ChartError {
	return newError(ErrorClassInput, ErrCodeOutOfRangeDegree,
		fmt.Sprintf("degree %v out of mapped gate range", degree), nil).
		WithDetail("degree", degree)
}

// NewAmbiguousLocalTimeError reports a civil clock reading that occurs twice in a zone.
func NewAmbiguousLocalTimeError(local string, zone string) *ChartError {
	return newError(ErrorClassRecoverable, ErrCodeAmbiguousLocalTime,
		fmt.Sprintf("ambiguous local time %s in %s", local, zone), nil).
		WithDetail("local_time", local).
		WithDetail("timezone", zone)
}

// NewUnknownTimezoneError reports a timezone name that is not a known zone identifier.
func NewUnknownTimezoneError(zone string, err error) *ChartError {
	return newError(ErrorClassRecoverable, ErrCodeUnknownTimezone,
		fmt.Sprintf("unknown timezone %q", zone), err).
		WithDetail("timezone", zone)
}

// NewProviderError wraps an ephemeris provider failure.
func NewProviderError(message string, err error) *ChartError {
	return newError(ErrorClassProvider, ErrCodeProviderFailed, message, err)
}

// NewValidationError reports invalid caller input.
func NewValidationError(message string, err error) *ChartError {
	return newError(ErrorClassInput, ErrCodeValidation, message, err)
}

// NewNotFoundError reports a missing stored record.
func NewNotFoundError(message string) *ChartError {
	return newError(ErrorClassPermanent, ErrCodeNotFound, message, nil)
}

// NewTimeoutError reports a computation that ran past its deadline.
func NewTimeoutError(message string, err error) *ChartError {
	return newError(ErrorClassTransient, ErrCodeTimeout, message, err)
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message string, err error) *ChartError {
	return newError(ErrorClassPermanent, ErrCodeInternal, message, err)
}

// IsRecoverable returns true for conditions the engine handles locally.
func IsRecoverable(err error) bool {
	var e *ChartError
	if errors.As(err, &e) {
		return e.Class == ErrorClassRecoverable
	}
	return false
}

// IsInputError returns true if the error was caused by caller input.
func IsInputError(err error) bool {
	var e *ChartError
	if errors.As(err, &e) {
		return e.Class == ErrorClassInput
	}
	return false
}

// IsSearchError returns true if the imprint search failed.
func IsSearchError(err error) bool {
	var e *ChartError
	if errors.As(err, &e) {
		return e.Class == ErrorClassSearch
	}
	return false
}

// ErrorCode returns the code of a classified error, or ErrCodeInternal.
func ErrorCode(err error) string {
	var e *ChartError
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// ClassOf returns the class of a classified error, or ErrorClassPermanent.
func ClassOf(err error) ErrorClass {
	var e *ChartError
	if errors.As(err, &e) {
		return e.Class
	}
	return ErrorClassPermanent
}
