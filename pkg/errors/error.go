// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, missing data, type mismatches
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable resources
//   - Indicator errors (300-399): Indicator catalog and calculation errors
//   - Consolidation errors (400-499): Consolidator registry and binding lifecycle errors
//   - Market data errors (700-799): Market data fetching, parsing and persistence errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeInvalidPeriod, "unsupported period %q", raw)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeHistoricalDataFailed, "warm-up fetch failed", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeLateData) { ... }
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an *Error, *LateDataError or
// *InsufficientDataError in err's chain. Returns ErrCodeUnknown otherwise.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var short *InsufficientDataError
	if errors.As(err, &short) {
		return ErrCodeInsufficientData
	}

	var late *LateDataError
	if errors.As(err, &late) {
		return late.Code()
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError reports a warm-up that found fewer completed bars than
// requested. It describes a shortfall, not a failure.
type InsufficientDataError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Symbol   string // Optional: symbol context
	Message  string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, symbol, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
// It uses errors.As to check the error chain.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}

// LateDataError is returned when a sample's timestamp precedes the open period of a
// consolidator. The sample is dropped and the consolidator is left untouched.
type LateDataError struct {
	Instrument  string
	Period      string
	SampleTime  time.Time
	PeriodStart time.Time
}

// NewLateDataError creates a new LateDataError.
func NewLateDataError(instrument, period string, sampleTime, periodStart time.Time) *LateDataError {
	return &LateDataError{
		Instrument:  instrument,
		Period:      period,
		SampleTime:  sampleTime,
		PeriodStart: periodStart,
	}
}

// Error implements the error interface.
func (e *LateDataError) Error() string {
	return fmt.Sprintf("[%d] late sample for %s/%s: %s is before period start %s",
		ErrCodeLateData, e.Instrument, e.Period,
		e.SampleTime.Format(time.RFC3339Nano), e.PeriodStart.Format(time.RFC3339Nano))
}

// Code returns ErrCodeLateData so that callers can treat it like any other coded error.
func (e *LateDataError) Code() ErrorCode {
	return ErrCodeLateData
}

// IsLateDataError checks if an error is a LateDataError.
func IsLateDataError(err error) bool {
	var lateErr *LateDataError

	return errors.As(err, &lateErr)
}
