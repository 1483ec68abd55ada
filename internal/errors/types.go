package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// ContactError is a structured error type with context.
type ContactError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Field       string
	Recoverable bool
}

// Error implements the error interface.
func (e *ContactError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Field != "" {
		parts = append(parts, "field:"+e.Field)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ContactError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ContactError) Is(target error) bool {
	var t *ContactError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ContactError) WithContext(key string, value interface{}) *ContactError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithField records which form field the error concerns.
func (e *ContactError) WithField(field string) *ContactError {
	e.Field = field

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *ContactError {
	return &ContactError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *ContactError {
	return &ContactError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ContactError {
	return &ContactError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ContactError {
	return &ContactError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// HasErrorType reports whether any ContactError in the chain has the given type.
func HasErrorType(err error, errType ErrorType) bool {
	var ce *ContactError
	if errors.As(err, &ce) {
		return ce.Type == errType
	}

	return false
}

// HasErrorCode reports whether any ContactError in the chain has the given code.
func HasErrorCode(err error, code string) bool {
	for err != nil {
		var ce *ContactError
		if !errors.As(err, &ce) {
			return false
		}
		if ce.Code == code {
			return true
		}
		err = ce.Cause
	}

	return false
}

// Common error codes.
const (
	ErrCodeUnknownField     = "ERR_UNKNOWN_FIELD"
	ErrCodeValueMissing     = "ERR_VALUE_MISSING"
	ErrCodeTypeMismatch     = "ERR_TYPE_MISMATCH"
	ErrCodeCreateContact    = "ERR_CREATE_CONTACT"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeInvalidURL       = "ERR_INVALID_URL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// ErrUnknownField creates the error returned for a field name outside the form.
func ErrUnknownField(name string) *ContactError {
	return NewValidationError(ErrCodeUnknownField, "unknown form field").
		WithField(name)
}

// ErrCreateContact wraps a rejected create contact mutation.
func ErrCreateContact(cause error) *ContactError {
	return NewNetworkError(ErrCodeCreateContact, "create contact mutation failed", cause)
}
