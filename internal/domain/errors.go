package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel error kinds. Callers match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("invalid reference")
	ErrVerification     = errors.New("verification failed")
	ErrStorage          = errors.New("storage failure")
)

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first message per field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field was rejected.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError is returned when a decision targets a report that is no
// longer pending.
type ConflictError struct {
	ReportID string
	Current  Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("report %s is %s, not pending", e.ReportID, e.Current)
}

// Is matches ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StorageError wraps err so that it matches ErrStorage while keeping the
// driver detail in the message.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
