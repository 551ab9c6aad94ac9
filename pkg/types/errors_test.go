package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClinicError(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := NewTransactionError(ErrCodeRegistrationFailed, "Registration failed", cause)

	assert.Equal(t, "REGISTRATION_FAILED: Registration failed (caused by: pq: deadlock detected)", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("register: %w", err)
	ce, ok := AsClinicError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrorTypeTransaction, ce.Type)
	assert.True(t, HasCode(wrapped, ErrCodeRegistrationFailed))
	assert.False(t, HasCode(cause, ErrCodeRegistrationFailed))
}

func TestClinicError_IsMatchesCode(t *testing.T) {
	conflict := NewConflictError(ErrCodeDuplicateEmail, "Email already registered")

	assert.ErrorIs(t, conflict, &ClinicError{Code: ErrCodeDuplicateEmail})
	assert.NotErrorIs(t, conflict, &ClinicError{Code: ErrCodeDuplicateMatricNumber})
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", ErrInvalidCredentials), ErrInvalidCredentials)
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Doctor not found or not verified")
	assert.Equal(t, ErrorTypeNotFound, err.Type)
	assert.Equal(t, ErrCodeNotFound, err.Code)
	assert.NotEmpty(t, err.Details)
}
