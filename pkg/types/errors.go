package types

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeConfiguration  ErrorType = "configuration"
	ErrorTypeTransaction    ErrorType = "transaction"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeInternal       ErrorType = "internal"
)

// Error codes
const (
	ErrCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrCodeAccountSuspended        = "ACCOUNT_SUSPENDED"
	ErrCodeInvalidToken            = "INVALID_TOKEN"
	ErrCodeInvalidRefreshToken     = "INVALID_REFRESH_TOKEN"
	ErrCodeDuplicateEmail          = "DUPLICATE_EMAIL"
	ErrCodeDuplicateMatricNumber   = "DUPLICATE_MATRIC_NUMBER"
	ErrCodeDuplicateLicenseNumber  = "DUPLICATE_LICENSE_NUMBER"
	ErrCodeConfigurationMissing    = "CONFIGURATION_MISSING"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeRegistrationFailed      = "REGISTRATION_FAILED"
	ErrCodeTransactionFailed       = "TRANSACTION_FAILED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeUnauthorized            = "UNAUTHORIZED"
	ErrCodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// ClinicError is the structured error returned by every service in the system.
// Details carries one human readable line per problem so the HTTP layer can
// render it as an error list without further interpretation.
type ClinicError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *ClinicError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *ClinicError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so sentinel-style comparisons work with errors.Is.
func (e *ClinicError) Is(target error) bool {
	t, ok := target.(*ClinicError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AsClinicError extracts a *ClinicError from an error chain.
func AsClinicError(err error) (*ClinicError, bool) {
	var ce *ClinicError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code string) bool {
	ce, ok := AsClinicError(err)
	return ok && ce.Code == code
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: message,
		Details: details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(code, message string, details ...string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeAuthentication,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewForbiddenError creates a new authorization error
func NewForbiddenError(message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeAuthorization,
		Code:    ErrCodeForbidden,
		Message: message,
		Details: []string{"Insufficient permissions"},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeNotFound,
		Message: message,
		Details: []string{"Resource not found"},
	}
}

// NewConflictError creates a new conflict error for duplicate resources
func NewConflictError(code, message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
		Details: []string{message},
	}
}

// NewConfigurationError reports missing reference data such as unseeded roles
func NewConfigurationError(message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeConfiguration,
		Code:    ErrCodeConfigurationMissing,
		Message: message,
		Details: []string{"The system has not been seeded"},
	}
}

// NewTransactionError creates a new error for a rolled back unit of work
func NewTransactionError(code, message string, cause error) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeTransaction,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(message string) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeRateLimit,
		Code:    ErrCodeRateLimitExceeded,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *ClinicError {
	return &ClinicError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// Common credential errors. Unknown email and wrong password share one value
// so callers cannot tell the two apart.
var (
	ErrInvalidCredentials = NewAuthenticationError(ErrCodeInvalidCredentials,
		"Invalid email or password", "Invalid credentials")
	ErrAccountSuspended = NewAuthenticationError(ErrCodeAccountSuspended,
		"Account is suspended", "Contact the clinic administrator")
	ErrInvalidToken = NewAuthenticationError(ErrCodeInvalidToken,
		"Invalid token", "Unauthorized access")
	ErrInvalidRefreshToken = NewAuthenticationError(ErrCodeInvalidRefreshToken,
		"Invalid refresh token", "Unauthorized access")
)
