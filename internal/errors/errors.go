// Package errors provides custom error types for journal-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotFound          = errors.New("not found")
	ErrInputValidation   = errors.New("input validation failed")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDatabaseError     = errors.New("database error")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrDuplicateCheckin  = errors.New("check-in already recorded for this date")
	ErrStoreUnavailable  = errors.New("store not initialized")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFeatureLocked     = errors.New("feature locked")
)

// ValidationError represents a validation error on a single field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets errors.Is match ErrInputValidation.
func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents a failed store operation.
type StoreError struct {
	Operation string
	Entity    string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("store error [%s] %s: %v", e.Operation, e.Entity, e.Err)
	}
	return fmt.Sprintf("store error [%s]: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, entity string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Entity:    entity,
		Err:       err,
	}
}

// InstrumentError reports a lookup against the instrument catalog.
type InstrumentError struct {
	Symbol string
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("unknown instrument %q", e.Symbol)
}

func (e *InstrumentError) Unwrap() error {
	return ErrUnknownInstrument
}

// NewInstrumentError creates a new InstrumentError.
func NewInstrumentError(symbol string) *InstrumentError {
	return &InstrumentError{Symbol: symbol}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
