package database

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Unique constraint names referenced when mapping duplicate key errors
const (
	ConstraintUsersEmail           = "users_email_key"
	ConstraintStudentsMatricNumber = "students_matric_number_key"
	ConstraintStudentsUserID       = "students_user_id_key"
	ConstraintDoctorsLicenseNumber = "doctors_license_number_key"
	ConstraintDoctorsUserID        = "doctors_user_id_key"
	ConstraintUserRolesUserRole    = "user_roles_user_id_role_id_key"
)

// UniqueViolation reports whether err is a PostgreSQL unique violation and
// returns the name of the violated constraint
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
