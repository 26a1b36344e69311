// Package forms holds the field-level validation result shared by the note
// and signup forms.
package forms

import (
	"sort"
	"strings"
)

// Common field messages.
const (
	MsgRequired     = "This field is required."
	MsgInvalidEmail = "Enter a valid email address."
)

// ValidationError collects messages per form field. A form is valid when no
// field has a message.
type ValidationError struct {
	Fields map[string][]string
}

func New() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field already carries a message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// For returns the messages for field. Templates call it as
// {{range .Errors.For "title"}}.
func (e *ValidationError) For(field string) []string {
	if e == nil {
		return nil
	}
	return e.Fields[field]
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
