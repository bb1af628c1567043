package task

import (
	"errors"
	"strings"
)

var (
	// ErrTaskNotFound is returned when no task matches the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidFilter is returned when a list filter expression does not parse
	// or cannot be evaluated against task fields.
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// FieldError describes one rejected input field. Field is a JSON path such
// as "$.title"; "$" refers to the document itself.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a task input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
