package iam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/futa-medical/clinic-booking/pkg/database"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Repository implements user, role and account persistence on PostgreSQL
type Repository struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewRepository creates a new IAM repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const selectUserColumns = `
		SELECT id, email, password_hash, first_name, last_name, phone_number,
			is_active, is_deleted, refresh_token, refresh_token_expiry_time,
			created_at, updated_at
		FROM users`

// GetByEmail retrieves a non-deleted user and their roles by exact email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.getUser(ctx, selectUserColumns+` WHERE email = $1 AND is_deleted = FALSE`, email)
}

// GetByID retrieves a non-deleted user and their roles by id
func (r *Repository) GetByID(ctx context.Context, id string) (*types.User, error) {
	return r.getUser(ctx, selectUserColumns+` WHERE id = $1 AND is_deleted = FALSE`, id)
}

func (r *Repository) getUser(ctx context.Context, query string, arg string) (*types.User, error) {
	var (
		user         types.User
		phone        sql.NullString
		refreshToken sql.NullString
		refreshExp   sql.NullTime
		updatedAt    sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&phone,
		&user.IsActive,
		&user.IsDeleted,
		&refreshToken,
		&refreshExp,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PhoneNumber = database.StringPtr(phone)
	user.RefreshToken = database.StringPtr(refreshToken)
	user.RefreshTokenExpiryTime = database.TimePtr(refreshExp)
	user.UpdatedAt = database.TimePtr(updatedAt)

	roles, err := r.rolesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return &user, nil
}

func (r *Repository) rolesForUser(ctx context.Context, userID string) ([]types.RoleName, error) {
	query := `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	defer rows.Close()

	var roles []types.RoleName
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan user role: %w", err)
		}
		roles = append(roles, types.RoleName(name))
	}
	return roles, rows.Err()
}

// EmailExists reports whether any user, deleted or not, holds the email
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// MatricNumberExists reports whether a student holds the matric number
func (r *Repository) MatricNumberExists(ctx context.Context, matricNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE matric_number = $1)`, matricNumber)
}

// LicenseNumberExists reports whether a doctor holds the license number
func (r *Repository) LicenseNumberExists(ctx context.Context, licenseNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM doctors WHERE license_number = $1)`, licenseNumber)
}

func (r *Repository) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return found, nil
}

// SaveRefreshToken overwrites the stored refresh token and its expiry
func (r *Repository) SaveRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry_time = $2, updated_at = $3
		WHERE id = $4`

	if _, err := r.db.ExecContext(ctx, query, token, expiry, r.now(), userID); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// RotateRefreshToken replaces the stored refresh token, keeping the expiry
func (r *Repository) RotateRefreshToken(ctx context.Context, userID, token string) error {
	query := `
		UPDATE users
		SET refresh_token = $1, updated_at = $2
		WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, token, r.now(), userID); err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return nil
}

// CreateStudentAccount inserts the user, the Student role link, the student
// profile and the initial refresh token in a single transaction
func (r *Repository) CreateStudentAccount(ctx context.Context, user *types.User, roleID string, student *types.Student, refreshToken string, refreshExpiry time.Time) error {
	return r.db.WithTx(ctx, "register_student", func(tx *sql.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return err
		}
		if err := r.insertUserRole(ctx, tx, user.ID, roleID); err != nil {
			return err
		}

		query := `
			INSERT INTO students (
				id, user_id, matric_number, date_of_birth, gender, address, faculty,
				department, year_of_study, blood_group, genotype, allergies,
				emergency_contact_name, emergency_contact_phone, is_verified, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

		if student.ID == "" {
			student.ID = uuid.New().String()
		}
		student.UserID = user.ID
		student.CreatedAt = user.CreatedAt

		_, err := tx.ExecContext(ctx, query,
			student.ID,
			student.UserID,
			student.MatricNumber,
			student.DateOfBirth,
			student.Gender,
			database.NullString(student.Address),
			database.NullString(student.Faculty),
			database.NullString(student.Department),
			student.YearOfStudy,
			database.NullString(student.BloodGroup),
			database.NullString(student.Genotype),
			database.NullString(student.Allergies),
			database.NullString(student.EmergencyContactName),
			database.NullString(student.EmergencyContactPhone),
			student.IsVerified,
			student.CreatedAt,
		)
		if err != nil {
			return mapWriteError(err, "failed to create student")
		}

		updateToken := `
			UPDATE users
			SET refresh_token = $1, refresh_token_expiry_time = $2
			WHERE id = $3`

		if _, err := tx.ExecContext(ctx, updateToken, refreshToken, refreshExpiry, user.ID); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}

		user.RefreshToken = &refreshToken
		user.RefreshTokenExpiryTime = &refreshExpiry
		return nil
	})
}

// CreateDoctorAccount inserts the user, the Doctor role link and the doctor
// profile in a single transaction
func (r *Repository) CreateDoctorAccount(ctx context.Context, user *types.User, roleID string, doctor *types.Doctor) error {
	return r.db.WithTx(ctx, "create_doctor", func(tx *sql.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return err
		}
		if err := r.insertUserRole(ctx, tx, user.ID, roleID); err != nil {
			return err
		}

		query := `
			INSERT INTO doctors (
				id, user_id, department_id, specialization, license_number,
				qualifications, years_of_experience, rating, total_reviews,
				is_verified, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		if doctor.ID == "" {
			doctor.ID = uuid.New().String()
		}
		doctor.UserID = user.ID
		doctor.CreatedAt = user.CreatedAt

		_, err := tx.ExecContext(ctx, query,
			doctor.ID,
			doctor.UserID,
			doctor.DepartmentID,
			doctor.Specialization,
			doctor.LicenseNumber,
			database.NullString(doctor.Qualifications),
			doctor.YearsOfExperience,
			doctor.Rating,
			doctor.TotalReviews,
			doctor.IsVerified,
			doctor.CreatedAt,
		)
		if err != nil {
			return mapWriteError(err, "failed to create doctor")
		}
		return nil
	})
}

// CreateAdminAccount inserts the user, the Admin role link and the admin row
// in a single transaction
func (r *Repository) CreateAdminAccount(ctx context.Context, user *types.User, roleID string) error {
	return r.db.WithTx(ctx, "create_admin", func(tx *sql.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return err
		}
		if err := r.insertUserRole(ctx, tx, user.ID, roleID); err != nil {
			return err
		}

		query := `INSERT INTO admins (id, user_id, created_at) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, query, uuid.New().String(), user.ID, user.CreatedAt); err != nil {
			return mapWriteError(err, "failed to create admin")
		}
		return nil
	})
}

func (r *Repository) insertUser(ctx context.Context, q database.Querier, user *types.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, phone_number,
			is_active, is_deleted, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}

	_, err := q.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		database.NullString(user.PhoneNumber),
		user.IsActive,
		false,
		user.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "failed to create user")
	}
	return nil
}

func (r *Repository) insertUserRole(ctx context.Context, q database.Querier, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (id, user_id, role_id, assigned_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := q.ExecContext(ctx, query, uuid.New().String(), userID, roleID, r.now()); err != nil {
		return mapWriteError(err, "failed to assign role")
	}
	return nil
}

// mapWriteError turns unique violations on identity columns into conflict
// errors and wraps everything else
func mapWriteError(err error, msg string) error {
	if constraint, ok := database.UniqueViolation(err); ok {
		switch constraint {
		case database.ConstraintUsersEmail:
			return types.NewConflictError(types.ErrCodeDuplicateEmail, "Email already registered")
		case database.ConstraintStudentsMatricNumber:
			return types.NewConflictError(types.ErrCodeDuplicateMatricNumber, "Matric number already registered")
		case database.ConstraintDoctorsLicenseNumber:
			return types.NewConflictError(types.ErrCodeDuplicateLicenseNumber, "License number already registered")
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// GetByName retrieves a role by name
func (r *Repository) GetByName(ctx context.Context, name types.RoleName) (*types.Role, error) {
	query := `SELECT id, name, description, created_at FROM roles WHERE name = $1`

	var role types.Role
	err := r.db.QueryRowContext(ctx, query, string(name)).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

// EnsureRole inserts the role unless one with the same name exists
func (r *Repository) EnsureRole(ctx context.Context, name types.RoleName, description string) error {
	query := `
		INSERT INTO roles (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, uuid.New().String(), string(name), description, r.now()); err != nil {
		return fmt.Errorf("failed to ensure role %s: %w", name, err)
	}
	return nil
}

// ListDoctors returns every non-deleted doctor, newest first
func (r *Repository) ListDoctors(ctx context.Context) ([]*types.DoctorDetail, error) {
	query := `
		SELECT d.id, d.user_id, u.email, u.first_name, u.last_name,
			COALESCE(u.phone_number, ''), d.department_id, dep.name,
			d.specialization, d.license_number, d.qualifications,
			d.years_of_experience, d.rating, d.is_verified, u.is_active, d.created_at
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		JOIN departments dep ON dep.id = d.department_id
		WHERE u.is_deleted = FALSE
		ORDER BY d.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	doctors := make([]*types.DoctorDetail, 0)
	for rows.Next() {
		var (
			d              types.DoctorDetail
			qualifications sql.NullString
		)
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Email,
			&d.FirstName,
			&d.LastName,
			&d.PhoneNumber,
			&d.DepartmentID,
			&d.DepartmentName,
			&d.Specialization,
			&d.LicenseNumber,
			&qualifications,
			&d.YearsOfExperience,
			&d.Rating,
			&d.IsVerified,
			&d.IsActive,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		d.Qualifications = database.StringPtr(qualifications)
		doctors = append(doctors, &d)
	}
	return doctors, rows.Err()
}

// ListStudents returns every non-deleted student, newest first
func (r *Repository) ListStudents(ctx context.Context) ([]*types.StudentDetail, error) {
	query := `
		SELECT s.id, s.user_id, u.email, u.first_name, u.last_name,
			COALESCE(u.phone_number, ''), s.matric_number, s.date_of_birth,
			s.gender, s.faculty, s.department, s.year_of_study, s.blood_group,
			s.genotype, s.allergies, s.is_verified, u.is_active, s.created_at
		FROM students s
		JOIN users u ON u.id = s.user_id
		WHERE u.is_deleted = FALSE
		ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := make([]*types.StudentDetail, 0)
	for rows.Next() {
		var (
			s                                               types.StudentDetail
			faculty, department, blood, genotype, allergies sql.NullString
		)
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Email,
			&s.FirstName,
			&s.LastName,
			&s.PhoneNumber,
			&s.MatricNumber,
			&s.DateOfBirth,
			&s.Gender,
			&faculty,
			&department,
			&s.YearOfStudy,
			&blood,
			&genotype,
			&allergies,
			&s.IsVerified,
			&s.IsActive,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		s.Faculty = database.StringPtr(faculty)
		s.Department = database.StringPtr(department)
		s.BloodGroup = database.StringPtr(blood)
		s.Genotype = database.StringPtr(genotype)
		s.Allergies = database.StringPtr(allergies)
		students = append(students, &s)
	}
	return students, rows.Err()
}

// SetDoctorActive toggles the doctor's user account
func (r *Repository) SetDoctorActive(ctx context.Context, doctorID string, active bool) (bool, error) {
	return r.setProfileActive(ctx, "set_doctor_active", `UPDATE doctors SET updated_at = $1 WHERE id = $2 RETURNING user_id`, doctorID, active)
}

// SetStudentActive toggles the student's user account
func (r *Repository) SetStudentActive(ctx context.Context, studentID string, active bool) (bool, error) {
	return r.setProfileActive(ctx, "set_student_active", `UPDATE students SET updated_at = $1 WHERE id = $2 RETURNING user_id`, studentID, active)
}

func (r *Repository) setProfileActive(ctx context.Context, name, touchProfile, profileID string, active bool) (bool, error) {
	found := false
	err := r.db.WithTx(ctx, name, func(tx *sql.Tx) error {
		now := r.now()

		var userID string
		if err := tx.QueryRowContext(ctx, touchProfile, now, profileID).Scan(&userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to update profile: %w", err)
		}
		found = true

		query := `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, active, now, userID); err != nil {
			return fmt.Errorf("failed to update user status: %w", err)
		}
		return nil
	})
	return found, err
}
