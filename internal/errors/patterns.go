package errors

import (
	"fmt"
)

// ServiceError creates a standardized service error. cause may be nil.
func ServiceError(service, operation, message string, cause error) *ContactError {
	code := fmt.Sprintf("ERR_%s_%s", service, operation)
	msg := fmt.Sprintf("%s service %s failed: %s", service, operation, message)
	ce := WrapInternal(cause, code, msg)
	if ce == nil {
		ce = NewInternalError(code, msg, nil)
	}
	return ce.WithContext("service", service)
}

// ServeServiceError creates serve command errors
func ServeServiceError(operation, message string, cause error) *ContactError {
	return ServiceError("SERVE", operation, message, cause)
}

// ConfigurationError creates configuration-related errors
func ConfigurationError(setting, message string, value interface{}) *ContactError {
	return NewConfigError(
		ErrCodeConfigInvalid,
		fmt.Sprintf("invalid configuration for %s: %s", setting, message),
	).WithContext("setting", setting).WithContext("value", value)
}

// WebSocketError creates live session errors
func WebSocketError(operation, sessionID, message string, cause error) *ContactError {
	return NewNetworkError("ERR_WEBSOCKET_"+operation,
		fmt.Sprintf("live session %s failed: %s", operation, message), cause).
		WithContext("session_id", sessionID)
}

// FieldError creates a validation error bound to one form field.
func FieldError(field, code, message string) *ContactError {
	return NewValidationError(code, message).WithField(field)
}
