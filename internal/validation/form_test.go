package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ana@x.com", true},
		{"example@example.com", true},
		{"first.last+tag@sub.domain.org", true},
		{"ana@x", true},
		{"ana", false},
		{"ana@", false},
		{"@x.com", false},
		{"ana@-x.com", false},
		{"ana@x..com", false},
		{"ana lee@x.com", false},
		{"ana@x.com ", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidEmail(tt.email))
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "ana@x.com", SanitizeEmail("  ana@x.com\n"))
	assert.Equal(t, "ana@x.com", SanitizeEmail("ana@\r\nx.com"))
	assert.Equal(t, "", SanitizeEmail("   "))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		expected ValidityState
	}{
		{
			name:     "required text unset",
			input:    Input{Name: "firstName", Type: InputText, Required: true},
			expected: ValidityState{ValueMissing: true},
		},
		{
			name:     "required text empty",
			input:    Input{Name: "firstName", Type: InputText, Required: true, Value: ptr("")},
			expected: ValidityState{ValueMissing: true},
		},
		{
			name:  "required text whitespace is present",
			input: Input{Name: "firstName", Type: InputText, Required: true, Value: ptr(" ")},
		},
		{
			name:  "optional text unset",
			input: Input{Name: "company", Type: InputText},
		},
		{
			name:     "required email whitespace",
			input:    Input{Name: "email", Type: InputEmail, Required: true, Value: ptr("  ")},
			expected: ValidityState{ValueMissing: true},
		},
		{
			name:     "email bad format",
			input:    Input{Name: "email", Type: InputEmail, Required: true, Value: ptr("ana")},
			expected: ValidityState{TypeMismatch: true},
		},
		{
			name:  "email padded",
			input: Input{Name: "email", Type: InputEmail, Required: true, Value: ptr(" ana@x.com ")},
		},
		{
			name:  "free-form phone",
			input: Input{Name: "phoneNumber", Type: InputTel, Value: ptr("call me maybe")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Check(tt.input)
			assert.Equal(t, tt.expected, state)
			assert.Equal(t, tt.expected.Valid(), state.Valid())
		})
	}
}

func TestCheckValidity(t *testing.T) {
	inputs := []Input{
		{Name: "firstName", Type: InputText, Required: true},
		{Name: "lastName", Type: InputText, Value: ptr("Lee")},
		{Name: "email", Type: InputEmail, Required: true, Value: ptr("nope")},
	}

	result := CheckValidity(inputs)
	assert.False(t, result.Valid)
	assert.True(t, result.Invalid("firstName"))
	assert.True(t, result.Invalid("email"))
	assert.False(t, result.Invalid("lastName"))
	assert.Equal(t, []string{"email", "firstName"}, result.InvalidNames())

	assert.Equal(t, "Please fill out this field.", result.Fields["firstName"].Message(InputText))
	assert.Equal(t, "Please enter an email address.", result.Fields["email"].Message(InputEmail))

	inputs[0].Value = ptr("Ana")
	inputs[2].Value = ptr("ana@x.com")
	result = CheckValidity(inputs)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Fields)
}
