// Package schema structurally validates untyped snapshot input (parsed JSON)
// and converts it into typed entities with defaults applied. It must run
// before any integrity check: the quality validator assumes well-formed input.
package schema

import (
	"fmt"
	"strings"
)

// FieldError describes one violated constraint.
type FieldError struct {
	Path       string `json:"path"`       // e.g. companies[2].name
	Constraint string `json:"constraint"` // e.g. required, max=100, oneof=a b, identifier, type=string
	Value      any    `json:"value,omitempty"`
}

func (f FieldError) String() string {
	if f.Value == nil {
		return fmt.Sprintf("%s: %s", f.Path, f.Constraint)
	}
	return fmt.Sprintf("%s: %s (got %v)", f.Path, f.Constraint, f.Value)
}

// SchemaViolation is the aggregate structural error. It lists every violated
// field, not only the first one.
type SchemaViolation struct {
	Fields []FieldError `json:"fields"`
}

func (e *SchemaViolation) Error() string {
	if len(e.Fields) == 1 {
		return "schema: " + e.Fields[0].String()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("schema: %d violations: %s", len(e.Fields), strings.Join(parts, "; "))
}

// Has reports whether a violation was recorded for path.
func (e *SchemaViolation) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}
