package iam

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/futa-medical/clinic-booking/pkg/config"
	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

const (
	DefaultAdminEmail    = "admin@futa.edu.ng"
	defaultAdminPassword = "Admin123!"

	SampleDoctorEmail    = "doctor@futa.edu.ng"
	sampleDoctorPassword = "Doctor123!"

	SampleStudentEmail    = "student@futa.edu.ng"
	sampleStudentPassword = "Student123!"

	sampleDepartment = "General Medicine"
)

var seedRoles = []struct {
	name        types.RoleName
	description string
}{
	{types.RoleAdmin, "System administrator"},
	{types.RoleDoctor, "Medical doctor"},
	{types.RoleStudent, "University student"},
}

var seedDepartments = []struct {
	name        string
	description string
}{
	{"General Medicine", "General medical consultations"},
	{"Dentistry", "Dental care and oral health"},
	{"Gynecology", "Women's health services"},
	{"Pediatrics", "Child healthcare"},
	{"Orthopedics", "Bone and joint care"},
}

// Seeder inserts the reference data and bootstrap accounts the clinic
// needs to operate. Every step is safe to repeat.
type Seeder struct {
	logger      *logger.Logger
	config      config.SeedConfig
	users       interfaces.UserRepository
	roles       interfaces.RoleRepository
	departments interfaces.DepartmentRepository
	passwords   interfaces.PasswordManager
	now         func() time.Time
}

// NewSeeder creates a new seeder
func NewSeeder(
	log *logger.Logger,
	cfg config.SeedConfig,
	users interfaces.UserRepository,
	roles interfaces.RoleRepository,
	departments interfaces.DepartmentRepository,
	passwords interfaces.PasswordManager,
) *Seeder {
	return &Seeder{
		logger:      log,
		config:      cfg,
		users:       users,
		roles:       roles,
		departments: departments,
		passwords:   passwords,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Seed ensures roles, departments and the default admin exist, plus the
// sample doctor and student when configured
func (s *Seeder) Seed(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	for _, r := range seedRoles {
		if err := s.roles.EnsureRole(ctx, r.name, r.description); err != nil {
			return err
		}
	}
	for _, d := range seedDepartments {
		if err := s.departments.EnsureDepartment(ctx, d.name, d.description); err != nil {
			return err
		}
	}

	if err := s.seedAdmin(ctx); err != nil {
		return err
	}

	if s.config.SampleAccounts {
		if err := s.seedSampleDoctor(ctx); err != nil {
			return err
		}
		if err := s.seedSampleStudent(ctx); err != nil {
			return err
		}
	}

	s.logger.WithComponent("seed").Info("Seed data ensured")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	user, roleID, err := s.newAccount(ctx, DefaultAdminEmail, defaultAdminPassword, "System", "Administrator", types.RoleAdmin)
	if err != nil || user == nil {
		return err
	}
	if err := s.users.CreateAdminAccount(ctx, user, roleID); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	s.logger.WithComponent("seed").WithField("email", user.Email).Info("Default admin created")
	return nil
}

func (s *Seeder) seedSampleDoctor(ctx context.Context) error {
	department, err := s.departments.GetByName(ctx, sampleDepartment)
	if err != nil {
		return fmt.Errorf("failed to load department: %w", err)
	}
	if department == nil {
		return fmt.Errorf("department %q is not seeded", sampleDepartment)
	}

	user, roleID, err := s.newAccount(ctx, SampleDoctorEmail, sampleDoctorPassword, "John", "Smith", types.RoleDoctor)
	if err != nil || user == nil {
		return err
	}

	qualifications := "MBBS, FMCP"
	doctor := &types.Doctor{
		ID:                uuid.New().String(),
		DepartmentID:      department.ID,
		Specialization:    "General Practitioner",
		LicenseNumber:     "MD123456",
		Qualifications:    &qualifications,
		YearsOfExperience: 10,
		IsVerified:        true,
	}
	if err := s.users.CreateDoctorAccount(ctx, user, roleID, doctor); err != nil {
		return fmt.Errorf("failed to seed sample doctor: %w", err)
	}
	return nil
}

func (s *Seeder) seedSampleStudent(ctx context.Context) error {
	user, roleID, err := s.newAccount(ctx, SampleStudentEmail, sampleStudentPassword, "John", "Doe", types.RoleStudent)
	if err != nil || user == nil {
		return err
	}

	faculty := "School of Computing"
	department := "Computer Science"
	student := &types.Student{
		ID:           uuid.New().String(),
		MatricNumber: "CSC/2020/001",
		DateOfBirth:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:       "Male",
		Faculty:      &faculty,
		Department:   &department,
		YearOfStudy:  3,
		IsVerified:   true,
	}
	// the seeded refresh token is already expired, so the first session comes from login
	if err := s.users.CreateStudentAccount(ctx, user, roleID, student, "", user.CreatedAt); err != nil {
		return fmt.Errorf("failed to seed sample student: %w", err)
	}
	return nil
}

// newAccount returns nil when an account with email already exists
func (s *Seeder) newAccount(ctx context.Context, email, password, firstName, lastName string, roleName types.RoleName) (*types.User, string, error) {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check %s: %w", email, err)
	}
	if exists {
		return nil, "", nil
	}

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load role %s: %w", roleName, err)
	}
	if role == nil {
		return nil, "", types.NewConfigurationError(fmt.Sprintf("%s role not found", roleName))
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	return &types.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		Roles:        []types.RoleName{roleName},
		CreatedAt:    s.now(),
	}, role.ID, nil
}
