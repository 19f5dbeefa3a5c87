package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownForm       = errors.New("unknown form")
	ErrNoRecordSelected  = errors.New("no record selected")
	ErrValidationFailed  = errors.New("validation failed")
	ErrStoreOperation    = errors.New("store operation failed")
	ErrUnsavedChanges    = errors.New("active form has unsaved changes")
	ErrFormClosed        = errors.New("form is closed")
	ErrInvalidDefinition = errors.New("invalid form definition")
)

// FieldError is a single per-field validation message.
type FieldError struct {
	Key     string
	Message string
}

// ValidationError lists the violated fields of a save attempt, in form order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Key+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// Keys returns the violated field keys.
func (e *ValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// StoreError reports a rejected record store call.
type StoreError struct {
	Op     string
	FormID string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.FormID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreOperation }
