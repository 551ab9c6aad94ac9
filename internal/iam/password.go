package iam

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input
	maxPasswordBytes = 72
)

// PasswordManager implements password hashing and verification
type PasswordManager struct {
	cost int
}

// NewPasswordManager creates a new password manager
func NewPasswordManager() *PasswordManager {
	return &PasswordManager{
		cost: bcrypt.DefaultCost,
	}
}

// NewPasswordManagerWithCost creates a password manager with an explicit
// bcrypt cost, used by tests to keep hashing fast
func NewPasswordManagerWithCost(cost int) *PasswordManager {
	return &PasswordManager{cost: cost}
}

// HashPassword hashes a password using bcrypt
func (pm *PasswordManager) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against its hash. A mismatch is not an
// error; a malformed hash is.
func (pm *PasswordManager) VerifyPassword(hashedPassword, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return true, nil
}

// PasswordPolicy lists the character classes a password must contain
type PasswordPolicy struct {
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

var (
	// StudentPasswordPolicy applies to self-registered students
	StudentPasswordPolicy = PasswordPolicy{RequireUpper: true, RequireLower: true, RequireDigit: true, RequireSpecial: true}
	// DoctorPasswordPolicy applies to admin-created doctor accounts
	DoctorPasswordPolicy = PasswordPolicy{RequireUpper: true, RequireDigit: true, RequireSpecial: true}
)

// Validate returns one message per failed rule, or nil. Character classes are
// ASCII only: any rune outside A-Z, a-z and 0-9 counts as special.
func (p PasswordPolicy) Validate(password string) []string {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}

	var problems []string
	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("Password must not exceed %d bytes", maxPasswordBytes))
	}
	if p.RequireUpper && !upper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if p.RequireLower && !lower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !digit {
		problems = append(problems, "Password must contain at least one number")
	}
	if p.RequireSpecial && !special {
		problems = append(problems, "Password must contain at least one special character")
	}
	return problems
}

// ValidatePasswordPolicy checks a password against the student policy
func ValidatePasswordPolicy(password string) []string {
	return StudentPasswordPolicy.Validate(password)
}
