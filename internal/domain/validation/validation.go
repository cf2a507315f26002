// Package validation carries field-level validation failures from the domain to the API boundary.
package validation

import "strings"

// FieldError describes one offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the set of field failures collected while validating one payload.
// A nil or empty Errors means the payload is valid.
type Errors []FieldError

// Add records a failure for field.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Required records a failure when value is blank.
// POST: returns true when value is present
func (e *Errors) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		e.Add(field, field+" is required")
		return false
	}
	return true
}

// MaxLength records a failure when value exceeds max bytes.
func (e *Errors) MaxLength(field, value string, max int) {
	if len(value) > max {
		e.Add(field, field+" is too long")
	}
}

// Has reports whether field has at least one failure.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Err returns e as an error, or nil when there are no failures.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Error implements error.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Prefix returns a copy of e with every field name prefixed, used for nested list items.
func (e Errors) Prefix(prefix string) Errors {
	out := make(Errors, 0, len(e))
	for _, fe := range e {
		out = append(out, FieldError{Field: prefix + fe.Field, Message: fe.Message})
	}
	return out
}
