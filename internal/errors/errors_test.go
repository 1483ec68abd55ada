package errors

import (
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactErrorError(t *testing.T) {
	testCases := []struct {
		name     string
		err      *ContactError
		expected string
	}{
		{
			name:     "code and message",
			err:      NewValidationError(ErrCodeValueMissing, "value missing"),
			expected: "[ERR_VALUE_MISSING] value missing",
		},
		{
			name:     "with field",
			err:      FieldError("email", ErrCodeTypeMismatch, "not an email"),
			expected: "[ERR_TYPE_MISMATCH] field:email not an email",
		},
		{
			name:     "with cause",
			err:      ErrCreateContact(fmt.Errorf("connection refused")),
			expected: "[ERR_CREATE_CONTACT] create contact mutation failed: connection refused",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestContactErrorIs(t *testing.T) {
	err := fmt.Errorf("submit: %w", ErrCreateContact(fmt.Errorf("boom")))

	assert.True(t, stderrors.Is(err, ErrCreateContact(nil)))
	assert.False(t, stderrors.Is(err, ErrUnknownField("x")))
	assert.True(t, HasErrorType(err, ErrorTypeNetwork))
	assert.False(t, HasErrorType(err, ErrorTypeValidation))
}

func TestWrapPreservesField(t *testing.T) {
	inner := ErrUnknownField("middleName")
	wrapped := WrapValidation(inner, ErrCodeValidationFailed, "rejecting change")

	require.NotNil(t, wrapped)
	assert.Equal(t, "middleName", wrapped.Field)
	assert.True(t, HasErrorCode(wrapped, ErrCodeUnknownField))
	assert.True(t, HasErrorCode(wrapped, ErrCodeValidationFailed))
	assert.Equal(t, inner, stderrors.Unwrap(wrapped))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, ErrCodeValidationFailed, "nothing"))
	assert.Nil(t, WrapInternal(nil, ErrCodeValidationFailed, "nothing"))
	assert.Nil(t, WrapConfig(nil, ErrCodeConfigInvalid, "nothing"))
}

func TestWrapConfigIsNotRecoverable(t *testing.T) {
	err := WrapConfig(fmt.Errorf("bad port"), ErrCodeConfigInvalid, "server.port")
	assert.False(t, err.Recoverable)
	assert.True(t, HasErrorType(err, ErrorTypeConfig))
}

func TestCombineErrors(t *testing.T) {
	assert.Nil(t, CombineErrors(nil, nil))

	single := fmt.Errorf("one")
	assert.Equal(t, single, CombineErrors(nil, single))

	combined := CombineErrors(fmt.Errorf("one"), nil, fmt.Errorf("two"))
	require.Error(t, combined)
	assert.Contains(t, combined.Error(), "2 errors")
	assert.Contains(t, combined.Error(), "one; two")
}

func TestErrorCollector(t *testing.T) {
	collector := NewErrorCollector()
	assert.False(t, collector.HasErrors())
	assert.NoError(t, collector.Err())

	collector.AddError(nil)
	assert.False(t, collector.HasErrors())

	collector.AddError(ConfigurationError("server.port", "out of range", 70000))
	collector.AddError(FieldError("email", ErrCodeValueMissing, "required"))

	assert.True(t, collector.HasErrors())
	assert.Len(t, collector.GetAllErrors(), 2)

	err := collector.Err()
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeValidationFailed))
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "field:email")
}

func TestErrorCollectorConcurrentAdd(t *testing.T) {
	collector := NewErrorCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				collector.AddError(fmt.Errorf("error %d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, collector.GetAllErrors(), 100)
}
