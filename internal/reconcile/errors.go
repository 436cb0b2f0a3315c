package reconcile

import (
	"fmt"
	"strings"

	"camtrap/internal/services"
)

// FieldProblem is one rejected value in a label row.
type FieldProblem struct {
	Field  string
	Value  string
	Reason string
}

// ValidationError rejects every staged edit of one label row. It unwraps to
// services.ErrValidation.
type ValidationError struct {
	ObservationID string
	Problems      []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s=%q: %s", p.Field, p.Value, p.Reason))
	}
	return fmt.Sprintf("observation %s: %s", e.ObservationID, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return services.ErrValidation
}
