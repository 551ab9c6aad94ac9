package iam

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Mock implementations for testing

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) MatricNumberExists(ctx context.Context, matricNumber string) (bool, error) {
	args := m.Called(ctx, matricNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) LicenseNumberExists(ctx context.Context, licenseNumber string) (bool, error) {
	args := m.Called(ctx, licenseNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SaveRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error {
	args := m.Called(ctx, userID, token, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) RotateRefreshToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockUserRepository) CreateStudentAccount(ctx context.Context, user *types.User, roleID string, student *types.Student, refreshToken string, refreshExpiry time.Time) error {
	args := m.Called(ctx, user, roleID, student, refreshToken, refreshExpiry)
	return args.Error(0)
}

func (m *MockUserRepository) CreateDoctorAccount(ctx context.Context, user *types.User, roleID string, doctor *types.Doctor) error {
	args := m.Called(ctx, user, roleID, doctor)
	return args.Error(0)
}

func (m *MockUserRepository) CreateAdminAccount(ctx context.Context, user *types.User, roleID string) error {
	args := m.Called(ctx, user, roleID)
	return args.Error(0)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name types.RoleName) (*types.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Role), args.Error(1)
}

func (m *MockRoleRepository) EnsureRole(ctx context.Context, name types.RoleName, description string) error {
	args := m.Called(ctx, name, description)
	return args.Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) ListDoctors(ctx context.Context) ([]*types.DoctorDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.DoctorDetail), args.Error(1)
}

func (m *MockAccountRepository) ListStudents(ctx context.Context) ([]*types.StudentDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.StudentDetail), args.Error(1)
}

func (m *MockAccountRepository) SetDoctorActive(ctx context.Context, doctorID string, active bool) (bool, error) {
	args := m.Called(ctx, doctorID, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SetStudentActive(ctx context.Context, studentID string, active bool) (bool, error) {
	args := m.Called(ctx, studentID, active)
	return args.Bool(0), args.Error(1)
}

type MockDepartmentRepository struct {
	mock.Mock
}

func (m *MockDepartmentRepository) ListActive(ctx context.Context) ([]*types.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Department), args.Error(1)
}

func (m *MockDepartmentRepository) GetByID(ctx context.Context, id string) (*types.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Department), args.Error(1)
}

func (m *MockDepartmentRepository) GetByName(ctx context.Context, name string) (*types.Department, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Department), args.Error(1)
}

func (m *MockDepartmentRepository) EnsureDepartment(ctx context.Context, name, description string) error {
	args := m.Called(ctx, name, description)
	return args.Error(0)
}

type MockPasswordManager struct {
	mock.Mock
}

func (m *MockPasswordManager) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordManager) VerifyPassword(hashedPassword, password string) (bool, error) {
	args := m.Called(hashedPassword, password)
	return args.Bool(0), args.Error(1)
}
