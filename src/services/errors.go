package services

import (
	"fmt"
	"strings"
)

// ValidationCode discriminates field-level validation failures so callers
// can render the right message without parsing error text.
type ValidationCode string

const (
	ValidationMissingFields ValidationCode = "missing_fields"
	ValidationInvalidDates  ValidationCode = "invalid_dates"
	ValidationInvalidPrice  ValidationCode = "invalid_price"
	ValidationInvalidForm   ValidationCode = "invalid_form"
)

// FieldError is a single field-level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError accumulates field-level problems. It is never fatal:
// the caller keeps the user's input and surfaces the messages.
type ValidationError struct {
	Code   ValidationCode `json:"code"`
	Fields []FieldError   `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Code, strings.Join(parts, "; "))
}

// newValidationError builds a ValidationError from field/message pairs
func newValidationError(code ValidationCode, fields ...FieldError) *ValidationError {
	return &ValidationError{Code: code, Fields: fields}
}

// NotFoundError reports a referenced entity or id that does not exist
type NotFoundError struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConflictReason discriminates conflict errors
type ConflictReason string

const (
	ConflictApartmentUnavailable ConflictReason = "apartment_unavailable"
	ConflictOverlappingDates     ConflictReason = "overlapping_dates"
	ConflictDuplicatePayment     ConflictReason = "duplicate_payment"
)

// ConflictError reports a rejected write that collides with an existing
// resource. ResourceID names the conflicting rental or payment so the
// user can resolve it explicitly (for payments, via the override path).
type ConflictError struct {
	Reason     ConflictReason `json:"reason"`
	ResourceID string         `json:"resource_id,omitempty"`
	Message    string         `json:"message"`
}

func (e *ConflictError) Error() string {
	if e.ResourceID != "" {
		return fmt.Sprintf("%s: %s (conflicts with %s)", e.Reason, e.Message, e.ResourceID)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// PersistenceError reports an unreachable or failing store. The engine
// recovers through the optimistic fallback cache and surfaces this as a
// warning, not a failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
