// Package errors defines the typed application errors shared by the
// pipeline. Only two error types are fatal to a run: NOT_FOUND (the input
// source does not exist) and STRUCTURAL (the source exists but cannot be
// read as a table). Everything else is either a startup problem (CONFIG,
// VALIDATION), a sink problem (STORAGE), or degrades to missing data
// (CONVERSION) and never crosses the pipeline boundary as an error.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStructural ErrorType = "STRUCTURAL"
	ErrTypeConversion ErrorType = "CONVERSION"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewNotFoundError creates a not found error for a missing source
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewStructuralError creates a structural failure error
func NewStructuralError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStructural, message, cause)
}

// NewConversionError creates a field conversion error
func NewConversionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConversion, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of err if it is (or wraps) an AppError,
// and an empty type otherwise.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsNotFound reports whether err is a missing-source error.
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrTypeNotFound
}

// IsStructural reports whether err is a structural failure.
func IsStructural(err error) bool {
	return TypeOf(err) == ErrTypeStructural
}

// IsFatal reports whether err must abort the run. Only missing sources
// and structural failures cross the pipeline boundary.
func IsFatal(err error) bool {
	t := TypeOf(err)
	return t == ErrTypeNotFound || t == ErrTypeStructural
}
