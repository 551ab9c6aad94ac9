package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futa-medical/clinic-booking/pkg/database"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Repository implements interfaces.StudentRepository on PostgreSQL
type Repository struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewRepository creates a new student repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const selectProfile = `
	SELECT s.id, s.user_id, s.matric_number, u.first_name, u.last_name, u.email, u.phone_number,
	       s.date_of_birth, s.gender, s.address, s.faculty, s.department, s.year_of_study,
	       s.blood_group, s.genotype, s.allergies, s.emergency_contact_name, s.emergency_contact_phone,
	       s.is_verified, s.created_at
	FROM students s
	JOIN users u ON u.id = s.user_id`

// GetProfileByUserID retrieves the profile of the student owning userID
func (r *Repository) GetProfileByUserID(ctx context.Context, userID string) (*types.StudentProfile, error) {
	var (
		p                                           types.StudentProfile
		phone, address, faculty, department         sql.NullString
		bloodGroup, genotype, allergies             sql.NullString
		emergencyContactName, emergencyContactPhone sql.NullString
	)

	err := r.db.QueryRowContext(ctx, selectProfile+` WHERE s.user_id = $1 AND u.is_deleted = FALSE`, userID).Scan(
		&p.ID, &p.UserID, &p.MatricNumber, &p.FirstName, &p.LastName, &p.Email, &phone,
		&p.DateOfBirth, &p.Gender, &address, &faculty, &department, &p.YearOfStudy,
		&bloodGroup, &genotype, &allergies, &emergencyContactName, &emergencyContactPhone,
		&p.IsVerified, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	p.PhoneNumber = database.StringPtr(phone)
	p.Address = database.StringPtr(address)
	p.Faculty = database.StringPtr(faculty)
	p.Department = database.StringPtr(department)
	p.BloodGroup = database.StringPtr(bloodGroup)
	p.Genotype = database.StringPtr(genotype)
	p.Allergies = database.StringPtr(allergies)
	p.EmergencyContactName = database.StringPtr(emergencyContactName)
	p.EmergencyContactPhone = database.StringPtr(emergencyContactPhone)
	return &p, nil
}

// UpdateProfile applies the non-nil fields of req. The phone number lives on
// the user row, everything else on the student row.
func (r *Repository) UpdateProfile(ctx context.Context, userID, studentID string, req *types.UpdateStudentProfileRequest) error {
	now := r.now()

	return r.db.WithTx(ctx, "update_student_profile", func(tx *sql.Tx) error {
		if req.PhoneNumber != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET phone_number = $1, updated_at = $2 WHERE id = $3`,
				*req.PhoneNumber, now, userID,
			); err != nil {
				return fmt.Errorf("failed to update phone number: %w", err)
			}
		}

		setParts := []string{}
		args := []interface{}{}
		argIndex := 1

		set := func(column string, value interface{}) {
			setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
			args = append(args, value)
			argIndex++
		}

		if req.Address != nil {
			set("address", *req.Address)
		}
		if req.Faculty != nil {
			set("faculty", *req.Faculty)
		}
		if req.Department != nil {
			set("department", *req.Department)
		}
		if req.YearOfStudy != nil {
			set("year_of_study", *req.YearOfStudy)
		}
		if req.BloodGroup != nil {
			set("blood_group", *req.BloodGroup)
		}
		if req.Genotype != nil {
			set("genotype", *req.Genotype)
		}
		if req.Allergies != nil {
			set("allergies", *req.Allergies)
		}
		if req.EmergencyContactName != nil {
			set("emergency_contact_name", *req.EmergencyContactName)
		}
		if req.EmergencyContactPhone != nil {
			set("emergency_contact_phone", *req.EmergencyContactPhone)
		}
		set("updated_at", now)

		args = append(args, studentID)
		query := fmt.Sprintf("UPDATE students SET %s WHERE id = $%d", strings.Join(setParts, ", "), argIndex)

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update student profile: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return types.NewNotFoundError("Student profile not found")
		}
		return nil
	})
}
