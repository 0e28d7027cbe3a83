// Package validation collects per-field errors for the portal's typed forms.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating a form. The zero value is valid.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// Valid reports whether no field was rejected.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Add records an error for field.
func (r *Result) Add(field, format string, args ...any) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Has reports whether field has at least one error.
func (r Result) Has(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Fields returns the names of the rejected fields in order, without repeats.
func (r Result) Fields() []string {
	seen := make(map[string]bool, len(r.Errors))
	var out []string
	for _, e := range r.Errors {
		if !seen[e.Field] {
			seen[e.Field] = true
			out = append(out, e.Field)
		}
	}
	return out
}

// Error renders the result as a single sentence for toasts and logs.
func (r Result) Error() string {
	if r.Valid() {
		return ""
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Required rejects blank values.
func (r *Result) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		r.Add(field, "is required")
		return false
	}
	return true
}

// Email rejects values that are not a bare address. Blank values are left
// to Required.
func (r *Result) Email(field, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		r.Add(field, "must be a valid email address")
		return false
	}
	return true
}

// MinLength rejects values shorter than n characters.
func (r *Result) MinLength(field, value string, n int) bool {
	if len([]rune(value)) < n {
		r.Add(field, "must be at least %d characters", n)
		return false
	}
	return true
}

// NonNegative rejects negative numbers.
func (r *Result) NonNegative(field string, value float64) bool {
	if value < 0 {
		r.Add(field, "must not be negative")
		return false
	}
	return true
}

// OneOf rejects values outside allowed.
func (r *Result) OneOf(field, value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	r.Add(field, "must be one of %s", strings.Join(allowed, ", "))
	return false
}
