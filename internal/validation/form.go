// Package validation implements the constraint validation a browser applies
// to a form before submission (required fields and the type=email format
// check), plus URL and origin checks used by the server and configuration.
package validation

import (
	"regexp"
	"sort"
	"strings"
)

// InputType mirrors the HTML input types used by the contact form.
type InputType string

const (
	InputText     InputType = "text"
	InputEmail    InputType = "email"
	InputTel      InputType = "tel"
	InputTextarea InputType = "textarea"
)

// Input is one control of a form as seen by constraint validation.
// A nil Value means the control was never given a value.
type Input struct {
	Name     string
	Type     InputType
	Required bool
	Value    *string
}

// ValidityState is the subset of the HTML ValidityState the form relies on.
type ValidityState struct {
	ValueMissing bool `json:"valueMissing,omitempty"`
	TypeMismatch bool `json:"typeMismatch,omitempty"`
}

// Valid reports whether no constraint is violated.
func (v ValidityState) Valid() bool {
	return !v.ValueMissing && !v.TypeMismatch
}

// Message returns the browser-style message for the first violated constraint.
func (v ValidityState) Message(t InputType) string {
	switch {
	case v.ValueMissing:
		return "Please fill out this field."
	case v.TypeMismatch && t == InputEmail:
		return "Please enter an email address."
	case v.TypeMismatch:
		return "Please match the requested format."
	default:
		return ""
	}
}

// Result is the outcome of checking a whole form.
type Result struct {
	Valid bool
	// Fields holds the state of every invalid control, keyed by name.
	Fields map[string]ValidityState
}

// Invalid reports whether the named control failed validation.
func (r Result) Invalid(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// InvalidNames returns the names of the invalid controls in sorted order.
func (r Result) InvalidNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckValidity runs constraint validation over inputs, like
// HTMLFormElement.checkValidity.
func CheckValidity(inputs []Input) Result {
	result := Result{Valid: true, Fields: map[string]ValidityState{}}
	for _, in := range inputs {
		state := Check(in)
		if !state.Valid() {
			result.Valid = false
			result.Fields[in.Name] = state
		}
	}
	return result
}

// Check validates a single control.
func Check(in Input) ValidityState {
	var value string
	if in.Value != nil {
		value = *in.Value
	}
	if in.Type == InputEmail {
		value = SanitizeEmail(value)
	}

	var state ValidityState
	if in.Required && value == "" {
		state.ValueMissing = true
	}
	if in.Type == InputEmail && value != "" && !IsValidEmail(value) {
		state.TypeMismatch = true
	}
	return state
}

// emailPattern is the WHATWG "valid e-mail address" production.
var emailPattern = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$",
)

// IsValidEmail reports whether s is a valid e-mail address as accepted by
// <input type="email">.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// SanitizeEmail applies the type=email value sanitization algorithm: strip
// newlines, then leading and trailing ASCII whitespace. It is only used for
// validity checks; submitted values are never rewritten.
func SanitizeEmail(s string) string {
	s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	return strings.Trim(s, " \t\f")
}
