package interfaces

import (
	"context"
	"time"

	"github.com/futa-medical/clinic-booking/pkg/types"
)

// AuthService defines the public authentication operations
type AuthService interface {
	Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error)
	RegisterStudent(ctx context.Context, req *types.RegisterStudentRequest) (*types.AuthResponse, error)
	RefreshToken(ctx context.Context, req *types.RefreshTokenRequest) (*types.AuthResponse, error)
}

// AdminService defines account management operations reserved for admins
type AdminService interface {
	CreateDoctor(ctx context.Context, req *types.CreateDoctorRequest) (string, error)
	SetDoctorActive(ctx context.Context, doctorID string, active bool) error
	SetStudentActive(ctx context.Context, studentID string, active bool) error
	ListDoctors(ctx context.Context) ([]*types.DoctorDetail, error)
	ListStudents(ctx context.Context) ([]*types.StudentDetail, error)
}

// UserRepository defines persistence for users, their roles and the account
// aggregates created at registration. Lookups return nil, nil when nothing
// matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	GetByID(ctx context.Context, id string) (*types.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	MatricNumberExists(ctx context.Context, matricNumber string) (bool, error)
	LicenseNumberExists(ctx context.Context, licenseNumber string) (bool, error)

	// SaveRefreshToken overwrites the stored token and its expiry
	SaveRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error
	// RotateRefreshToken replaces the stored token and leaves the expiry as is
	RotateRefreshToken(ctx context.Context, userID, token string) error

	CreateStudentAccount(ctx context.Context, user *types.User, roleID string, student *types.Student, refreshToken string, refreshExpiry time.Time) error
	CreateDoctorAccount(ctx context.Context, user *types.User, roleID string, doctor *types.Doctor) error
	CreateAdminAccount(ctx context.Context, user *types.User, roleID string) error
}

// RoleRepository defines persistence for roles
type RoleRepository interface {
	GetByName(ctx context.Context, name types.RoleName) (*types.Role, error)
	EnsureRole(ctx context.Context, name types.RoleName, description string) error
}

// AccountRepository defines the admin view over doctor and student accounts
type AccountRepository interface {
	ListDoctors(ctx context.Context) ([]*types.DoctorDetail, error)
	ListStudents(ctx context.Context) ([]*types.StudentDetail, error)
	// SetDoctorActive returns false when no doctor has the id
	SetDoctorActive(ctx context.Context, doctorID string, active bool) (bool, error)
	// SetStudentActive returns false when no student has the id
	SetStudentActive(ctx context.Context, studentID string, active bool) (bool, error)
}

// PasswordManager defines the interface for password operations
type PasswordManager interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) (bool, error)
}
