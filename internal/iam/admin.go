package iam

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
	"github.com/futa-medical/clinic-booking/pkg/validation"
)

// AdminService implements doctor provisioning and account management
type AdminService struct {
	logger      *logger.Logger
	users       interfaces.UserRepository
	roles       interfaces.RoleRepository
	accounts    interfaces.AccountRepository
	departments interfaces.DepartmentRepository
	passwords   interfaces.PasswordManager
	now         func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(
	log *logger.Logger,
	users interfaces.UserRepository,
	roles interfaces.RoleRepository,
	accounts interfaces.AccountRepository,
	departments interfaces.DepartmentRepository,
	passwords interfaces.PasswordManager,
) *AdminService {
	return &AdminService{
		logger:      log,
		users:       users,
		roles:       roles,
		accounts:    accounts,
		departments: departments,
		passwords:   passwords,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateDoctor provisions a verified doctor account and returns the doctor id
func (s *AdminService) CreateDoctor(ctx context.Context, req *types.CreateDoctorRequest) (string, error) {
	problems := validation.Struct(req)
	problems = append(problems, DoctorPasswordPolicy.Validate(req.Password)...)
	if len(problems) > 0 {
		return "", types.NewValidationError("Validation failed", problems...)
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return "", types.NewInternalError("Failed to check email", err)
	}
	if exists {
		return "", types.NewConflictError(types.ErrCodeDuplicateEmail, "Email already registered")
	}

	exists, err = s.users.LicenseNumberExists(ctx, req.LicenseNumber)
	if err != nil {
		return "", types.NewInternalError("Failed to check license number", err)
	}
	if exists {
		return "", types.NewConflictError(types.ErrCodeDuplicateLicenseNumber, "License number already registered")
	}

	department, err := s.departments.GetByID(ctx, req.DepartmentID)
	if err != nil {
		return "", types.NewInternalError("Failed to load department", err)
	}
	if department == nil || !department.IsActive {
		return "", types.NewNotFoundError("Department not found")
	}

	role, err := s.roles.GetByName(ctx, types.RoleDoctor)
	if err != nil {
		return "", types.NewInternalError("Failed to load role", err)
	}
	if role == nil {
		return "", types.NewConfigurationError("Doctor role not found")
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return "", types.NewInternalError("Failed to hash password", err)
	}

	now := s.now()
	phone := req.PhoneNumber
	user := &types.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  &phone,
		IsActive:     true,
		CreatedAt:    now,
	}
	doctor := &types.Doctor{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		DepartmentID:      department.ID,
		Specialization:    req.Specialization,
		LicenseNumber:     req.LicenseNumber,
		Qualifications:    req.Qualifications,
		YearsOfExperience: req.YearsOfExperience,
		IsVerified:        true,
		CreatedAt:         now,
	}

	if err := s.users.CreateDoctorAccount(ctx, user, role.ID, doctor); err != nil {
		if ce, ok := types.AsClinicError(err); ok && ce.Type == types.ErrorTypeConflict {
			return "", ce
		}
		return "", types.NewTransactionError(types.ErrCodeTransactionFailed, "Failed to create doctor", err)
	}

	s.logger.WithComponent("admin").WithFields(logrus.Fields{
		"doctor_id":     doctor.ID,
		"user_id":       user.ID,
		"department_id": department.ID,
	}).Info("Doctor account created")
	return doctor.ID, nil
}

// SetDoctorActive activates or deactivates a doctor's user account
func (s *AdminService) SetDoctorActive(ctx context.Context, doctorID string, active bool) error {
	found, err := s.accounts.SetDoctorActive(ctx, doctorID, active)
	if err != nil {
		return types.NewInternalError("Failed to update doctor status", err)
	}
	if !found {
		return types.NewNotFoundError("Doctor not found")
	}
	return nil
}

// SetStudentActive activates or deactivates a student's user account
func (s *AdminService) SetStudentActive(ctx context.Context, studentID string, active bool) error {
	found, err := s.accounts.SetStudentActive(ctx, studentID, active)
	if err != nil {
		return types.NewInternalError("Failed to update student status", err)
	}
	if !found {
		return types.NewNotFoundError("Student not found")
	}
	return nil
}

// ListDoctors returns all doctors, newest first
func (s *AdminService) ListDoctors(ctx context.Context) ([]*types.DoctorDetail, error) {
	doctors, err := s.accounts.ListDoctors(ctx)
	if err != nil {
		return nil, types.NewInternalError("Failed to list doctors", err)
	}
	return doctors, nil
}

// ListStudents returns all students, newest first
func (s *AdminService) ListStudents(ctx context.Context) ([]*types.StudentDetail, error) {
	students, err := s.accounts.ListStudents(ctx)
	if err != nil {
		return nil, types.NewInternalError("Failed to list students", err)
	}
	return students, nil
}
