package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/futa-medical/clinic-booking/pkg/database"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Repository implements appointment persistence on PostgreSQL
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new scheduling repository
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

const selectStudent = `
		SELECT s.id, s.user_id, s.matric_number, s.is_verified,
			u.email, u.first_name, u.last_name, u.is_active
		FROM students s
		JOIN users u ON u.id = s.user_id`

// GetStudentByUserID retrieves the student profile owned by a user
func (r *Repository) GetStudentByUserID(ctx context.Context, userID string) (*types.Student, error) {
	return r.getStudent(ctx, selectStudent+` WHERE s.user_id = $1 AND u.is_deleted = FALSE`, userID)
}

// GetStudentByID retrieves a student profile by id
func (r *Repository) GetStudentByID(ctx context.Context, studentID string) (*types.Student, error) {
	return r.getStudent(ctx, selectStudent+` WHERE s.id = $1 AND u.is_deleted = FALSE`, studentID)
}

func (r *Repository) getStudent(ctx context.Context, query, arg string) (*types.Student, error) {
	student := &types.Student{User: &types.User{}}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&student.ID,
		&student.UserID,
		&student.MatricNumber,
		&student.IsVerified,
		&student.User.Email,
		&student.User.FirstName,
		&student.User.LastName,
		&student.User.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	student.User.ID = student.UserID
	return student, nil
}

const selectDoctor = `
		SELECT d.id, d.user_id, d.department_id, d.specialization,
			d.license_number, d.is_verified,
			u.email, u.first_name, u.last_name, u.is_active,
			dep.name
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		JOIN departments dep ON dep.id = d.department_id`

// GetDoctorByUserID retrieves the doctor profile owned by a user
func (r *Repository) GetDoctorByUserID(ctx context.Context, userID string) (*types.Doctor, error) {
	return r.getDoctor(ctx, selectDoctor+` WHERE d.user_id = $1 AND u.is_deleted = FALSE`, userID)
}

// GetDoctorByID retrieves a doctor profile by id, verified or not
func (r *Repository) GetDoctorByID(ctx context.Context, doctorID string) (*types.Doctor, error) {
	return r.getDoctor(ctx, selectDoctor+` WHERE d.id = $1 AND u.is_deleted = FALSE`, doctorID)
}

func (r *Repository) getDoctor(ctx context.Context, query, arg string) (*types.Doctor, error) {
	doctor := &types.Doctor{User: &types.User{}, Department: &types.Department{}}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&doctor.ID,
		&doctor.UserID,
		&doctor.DepartmentID,
		&doctor.Specialization,
		&doctor.LicenseNumber,
		&doctor.IsVerified,
		&doctor.User.Email,
		&doctor.User.FirstName,
		&doctor.User.LastName,
		&doctor.User.IsActive,
		&doctor.Department.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	doctor.User.ID = doctor.UserID
	doctor.Department.ID = doctor.DepartmentID
	return doctor, nil
}

// GetAppointmentByID retrieves an appointment by ID
func (r *Repository) GetAppointmentByID(ctx context.Context, id string) (*types.Appointment, error) {
	query := `
		SELECT id, student_id, doctor_id, appointment_date, start_time, end_time,
			status, reason_for_visit, cancellation_reason, rejection_reason, notes,
			completed_at, cancelled_at, created_at, updated_at
		FROM appointments
		WHERE id = $1`

	var (
		apt                                 types.Appointment
		cancellation, rejection, notes      sql.NullString
		completedAt, cancelledAt, updatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&apt.ID,
		&apt.StudentID,
		&apt.DoctorID,
		&apt.AppointmentDate,
		&apt.StartTime,
		&apt.EndTime,
		&apt.Status,
		&apt.ReasonForVisit,
		&cancellation,
		&rejection,
		&notes,
		&completedAt,
		&cancelledAt,
		&apt.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	apt.CancellationReason = database.StringPtr(cancellation)
	apt.RejectionReason = database.StringPtr(rejection)
	apt.Notes = database.StringPtr(notes)
	apt.CompletedAt = database.TimePtr(completedAt)
	apt.CancelledAt = database.TimePtr(cancelledAt)
	apt.UpdatedAt = database.TimePtr(updatedAt)
	return &apt, nil
}

// CreateAppointment writes a new appointment and the notification for its
// doctor in one transaction
func (r *Repository) CreateAppointment(ctx context.Context, apt *types.Appointment, notification *types.Notification) error {
	return r.db.WithTx(ctx, "create_appointment", func(tx *sql.Tx) error {
		query := `
			INSERT INTO appointments (
				id, student_id, doctor_id, appointment_date, start_time, end_time,
				status, reason_for_visit, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		_, err := tx.ExecContext(ctx, query,
			apt.ID,
			apt.StudentID,
			apt.DoctorID,
			apt.AppointmentDate,
			apt.StartTime,
			apt.EndTime,
			string(apt.Status),
			apt.ReasonForVisit,
			apt.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return insertNotification(ctx, tx, notification)
	})
}

// UpdateAppointmentStatus persists a transition and the notification for the
// counterpart in one transaction. The update only applies while the stored
// status still equals from.
func (r *Repository) UpdateAppointmentStatus(ctx context.Context, apt *types.Appointment, from types.AppointmentStatus, notification *types.Notification) error {
	return r.db.WithTx(ctx, "update_appointment_status", func(tx *sql.Tx) error {
		query := `
			UPDATE appointments
			SET status = $1, cancellation_reason = $2, rejection_reason = $3,
				completed_at = $4, cancelled_at = $5, updated_at = $6
			WHERE id = $7 AND status = $8`

		result, err := tx.ExecContext(ctx, query,
			string(apt.Status),
			database.NullString(apt.CancellationReason),
			database.NullString(apt.RejectionReason),
			database.NullTime(apt.CompletedAt),
			database.NullTime(apt.CancelledAt),
			database.NullTime(apt.UpdatedAt),
			apt.ID,
			string(from),
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment status: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return &types.ClinicError{
				Type:    types.ErrorTypeValidation,
				Code:    types.ErrCodeInvalidStatusTransition,
				Message: "Invalid status transition",
				Details: []string{"appointment status changed concurrently"},
			}
		}

		return insertNotification(ctx, tx, notification)
	})
}

func insertNotification(ctx context.Context, q database.Querier, n *types.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		string(n.Type),
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}
