package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context, creating a ContactError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *ContactError {
	if err == nil {
		return nil
	}

	// Keep the field and context of an existing ContactError
	var ce *ContactError
	if errors.As(err, &ce) {
		return &ContactError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       ce,
			Context:     ce.Context,
			Field:       ce.Field,
			Recoverable: ce.Recoverable,
		}
	}

	return &ContactError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeNetwork,
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(err error, code, message string) *ContactError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *ContactError {
	ce := Wrap(err, ErrorTypeConfig, code, message)
	if ce != nil {
		ce.Recoverable = false
	}
	return ce
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, code, message string) *ContactError {
	ce := Wrap(err, ErrorTypeInternal, code, message)
	if ce != nil {
		ce.Recoverable = false
	}
	return ce
}

// CombineErrors joins several errors into one, dropping nils.
func CombineErrors(errs ...error) error {
	var messages []string
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
			messages = append(messages, err.Error())
		}
	}

	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}

	return &ContactError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("%d errors: %s", len(kept), strings.Join(messages, "; ")),
		Cause:   errors.Join(kept...),
	}
}
