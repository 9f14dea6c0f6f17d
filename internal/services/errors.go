package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/shopops/internal/repository"
)

var (
	// ErrInvalidTransition is returned when the requested status move is not in the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned when the actor may not act on the order.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries field-level messages keyed by json field name.
type ValidationError struct {
	Fields map[string]string
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

func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// DuplicateError reports a unique field already used by another record.
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string { return "duplicate " + e.Field }

func (e *DuplicateError) Unwrap() error { return repository.ErrDuplicateKey }
