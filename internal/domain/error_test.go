package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Code: EINVALID, Message: "invalid input"},
			expected: "invalid input",
		},
		{
			name:     "with operation",
			err:      &Error{Code: EINVALID, Op: "billing_details.save", Message: "invalid input"},
			expected: "billing_details.save: invalid input",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EINTERNAL,
				Op:      "billing_details.save",
				Message: "failed to save",
				Err:     errors.New("connection refused"),
			},
			expected: "billing_details.save: failed to save: connection refused",
		},
		{
			name:     "wrapped error without op",
			err:      &Error{Code: EINTERNAL, Message: "failed to save", Err: errors.New("connection refused")},
			expected: "failed to save: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Internal(underlying, "billing_details.get", "failed to load")

	assert.ErrorIs(t, err, underlying)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "domain error", err: &Error{Code: EINVALID}, expected: EINVALID},
		{name: "wrapped domain error", err: fmt.Errorf("wrapped: %w", &Error{Code: ENOTFOUND}), expected: ENOTFOUND},
		{name: "validation error", err: NewValidationError("op", "city", "City is required"), expected: EINVALID},
		{name: "too large", err: Errorf(ETOOLARGE, "", "body too large"), expected: ETOOLARGE},
		{name: "non-domain error", err: errors.New("some error"), expected: EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "domain error with message", err: &Error{Code: EINVALID, Message: "unsupported field"}, expected: "unsupported field"},
		{name: "internal error hides message", err: &Error{Code: EINTERNAL, Message: "dsn leaked"}, expected: internalMessage},
		{name: "validation error", err: NewValidationError("op", "city", "City is required"), expected: "Please correct the highlighted fields."},
		{name: "non-domain error", err: errors.New("some internal detail"), expected: internalMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorMessage(tt.err))
		})
	}
}

func TestErrorOp(t *testing.T) {
	assert.Equal(t, "", ErrorOp(nil))
	assert.Equal(t, "billing_details.get", ErrorOp(NotFound("billing_details.get", "billing details", "1")))
	assert.Equal(t, "billing_details.save", ErrorOp(NewValidationError("billing_details.save", "city", "x")))
	assert.Equal(t, "", ErrorOp(errors.New("test")))
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "address.format", "unsupported field %q", "email")

	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, EINVALID, domainErr.Code)
	assert.Equal(t, "address.format", domainErr.Op)
	assert.Equal(t, `unsupported field "email"`, domainErr.Message)
}

func TestWrapError(t *testing.T) {
	underlying := errors.New("db error")
	err := WrapError(underlying, EINTERNAL, "billing_details.save", "failed to save billing details")

	assert.True(t, IsCode(err, EINTERNAL))
	assert.ErrorIs(t, err, underlying)
	assert.NoError(t, WrapError(nil, EINTERNAL, "op", "msg"))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(&Error{Code: ENOTFOUND}, ENOTFOUND))
	assert.False(t, IsCode(&Error{Code: EINVALID}, ENOTFOUND))
	assert.True(t, IsCode(errors.New("test"), EINTERNAL), "unknown errors are internal")
}

func TestValidationError(t *testing.T) {
	t.Run("single field", func(t *testing.T) {
		err := NewValidationError("billing_details.save", "postalCode", "Please enter a valid postal code")

		assert.Equal(t, "billing_details.save: postalCode: Please enter a valid postal code", err.Error())
		assert.Equal(t, map[string]string{"postalCode": "Please enter a valid postal code"}, GetValidationFields(err))
	})

	t.Run("multiple fields", func(t *testing.T) {
		err := NewValidationError("billing_details.save", "city", "City is required")
		err = AddFieldError(err, "state", "State is required")

		assert.Len(t, GetValidationFields(err), 2)
		assert.Equal(t, "billing_details.save: validation failed for 2 fields", err.Error())
	})

	t.Run("add field to nil", func(t *testing.T) {
		err := AddFieldError(nil, "city", "City is required")
		assert.True(t, IsValidationError(err))
	})

	t.Run("from map copies", func(t *testing.T) {
		fields := map[string]string{"city": "City is required"}
		err := FieldErrors("billing_details.save", fields)
		fields["state"] = "changed later"

		assert.Len(t, GetValidationFields(err), 1)
	})
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("op", "field", "msg")))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", NewValidationError("op", "field", "msg"))))
	assert.False(t, IsValidationError(Invalid("op", "msg")))
	assert.False(t, IsValidationError(errors.New("test")))
	assert.False(t, IsValidationError(nil))
	assert.Nil(t, GetValidationFields(errors.New("test")))
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{NotFound("billing_details.get", "billing details", "abc"), ENOTFOUND},
		{Unauthorized("auth.check", "missing token"), EUNAUTHORIZED},
		{Forbidden("billing_details.save", "not your account"), EFORBIDDEN},
		{Invalid("address.format", "unknown field"), EINVALID},
		{Conflict("billing_details.save", "stale update"), ECONFLICT},
		{Internal(nil, "billing_details.save", "failed"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}
}
