package engine

import "fmt"

// ValidationError rejects an incoming event before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field}
}
