package scribe

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// InputError reports caller input rejected before any collaborator call.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CollaboratorError reports a failure of the completion service: a failed call, a timeout,
// a dropped stream or an unusable response.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: completion service: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// FieldViolation is one failed invariant. Path uses JSON field names, e.g.
// "assessment.primary_diagnoses[0].condition"; an empty Path refers to the whole record.
type FieldViolation struct {
	Path  string `json:"path"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (v FieldViolation) String() string {
	path := v.Path
	if path == "" {
		path = "(record)"
	}
	if v.Param != "" {
		return fmt.Sprintf("%s (%s=%s)", path, v.Rule, v.Param)
	}
	return fmt.Sprintf("%s (%s)", path, v.Rule)
}

// ValidationError reports a record that fails the schema invariants.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Path returns the path of the first violation.
func (e *ValidationError) Path() string {
	if len(e.Violations) == 0 {
		return ""
	}
	return e.Violations[0].Path
}

// Has reports whether any violation is at path.
func (e *ValidationError) Has(path string) bool {
	for _, v := range e.Violations {
		if v.Path == path {
			return true
		}
	}
	return false
}

// RenderError reports an attempt to render a record that never passed validation.
// Seeing one means a caller skipped Validate.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func checkInput(field, text string, maxChars int) error {
	if strings.TrimSpace(text) == "" {
		return &InputError{Field: field, Reason: "must not be empty"}
	}
	if maxChars > 0 {
		if n := utf8.RuneCountInString(text); n > maxChars {
			return &InputError{Field: field, Reason: fmt.Sprintf("%d characters exceeds limit of %d", n, maxChars)}
		}
	}
	return nil
}
