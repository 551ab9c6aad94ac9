package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
	"github.com/futa-medical/clinic-booking/pkg/validation"
)

// Service implements appointment booking and the appointment lifecycle
type Service struct {
	logger       *logger.Logger
	tracing      *monitoring.TracingManager
	appointments interfaces.AppointmentRepository
	departments  interfaces.DepartmentRepository
	now          func() time.Time
}

// NewService creates a new scheduling service
func NewService(
	log *logger.Logger,
	tracing *monitoring.TracingManager,
	appointments interfaces.AppointmentRepository,
	departments interfaces.DepartmentRepository,
) *Service {
	return &Service{
		logger:       log,
		tracing:      tracing,
		appointments: appointments,
		departments:  departments,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateAppointment books a Pending consultation for the student owning
// userID and notifies the doctor. Double booking is not checked.
func (s *Service) CreateAppointment(ctx context.Context, userID string, req *types.CreateAppointmentRequest) (*types.AppointmentResponse, *types.AppointmentRequested, error) {
	ctx, span := s.tracing.StartSchedulingSpan(ctx, "create_appointment")
	defer span.End()

	if problems := validation.Struct(req); len(problems) > 0 {
		return nil, nil, types.NewValidationError("Validation failed", problems...)
	}

	student, err := s.appointments.GetStudentByUserID(ctx, userID)
	if err != nil {
		s.tracing.RecordError(span, err)
		return nil, nil, types.NewInternalError("Failed to load student", err)
	}
	if student == nil {
		return nil, nil, types.NewNotFoundError("Student profile not found")
	}

	doctor, err := s.appointments.GetDoctorByID(ctx, req.DoctorID)
	if err != nil {
		s.tracing.RecordError(span, err)
		return nil, nil, types.NewInternalError("Failed to load doctor", err)
	}
	if doctor == nil || !doctor.IsVerified {
		return nil, nil, types.NewNotFoundError("Doctor not found or not verified")
	}

	start, err := types.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, nil, types.NewValidationError("Validation failed", "startTime must be in HH:mm or HH:mm:ss format")
	}

	now := s.now()
	apt := &types.Appointment{
		ID:              uuid.New().String(),
		StudentID:       student.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: req.AppointmentDate.UTC(),
		StartTime:       start,
		EndTime:         start.Add(types.ConsultationDuration),
		Status:          types.StatusPending,
		ReasonForVisit:  req.ReasonForVisit,
		CreatedAt:       now,
	}
	notification := newAppointmentRequestNotification(doctor.UserID, student, now)

	if err := s.appointments.CreateAppointment(ctx, apt, notification); err != nil {
		s.tracing.RecordError(span, err)
		return nil, nil, types.NewTransactionError(types.ErrCodeTransactionFailed, "Failed to book appointment", err)
	}

	s.log(ctx).WithFields(logrus.Fields{
		"appointment_id": apt.ID,
		"student_id":     student.ID,
		"doctor_id":      doctor.ID,
	}).Info("Appointment booked")

	event := &types.AppointmentRequested{
		AppointmentID:   apt.ID,
		StudentID:       student.ID,
		DoctorID:        doctor.ID,
		DoctorUserID:    doctor.UserID,
		AppointmentDate: apt.AppointmentDate,
		StartTime:       apt.StartTime.String(),
		OccurredAt:      now,
	}
	return toResponse(apt, student, doctor), event, nil
}

// TransitionAppointment moves an appointment to a new status on behalf of
// actor. Students may only cancel their own appointments. Doctors may
// confirm, reject, complete or cancel their own.
func (s *Service) TransitionAppointment(ctx context.Context, actor *types.Principal, appointmentID string, req *types.TransitionAppointmentRequest) (*types.Appointment, *types.AppointmentStatusChanged, error) {
	ctx, span := s.tracing.StartSchedulingSpan(ctx, "transition_appointment")
	defer span.End()

	if problems := validation.Struct(req); len(problems) > 0 {
		return nil, nil, types.NewValidationError("Validation failed", problems...)
	}
	if !req.Status.IsValid() {
		return nil, nil, types.NewValidationError("Validation failed", "status must be one of: Pending, Confirmed, Completed, Cancelled, Rejected")
	}

	apt, err := s.appointments.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		s.tracing.RecordError(span, err)
		return nil, nil, types.NewInternalError("Failed to load appointment", err)
	}
	if apt == nil {
		return nil, nil, types.NewNotFoundError("Appointment not found")
	}

	recipient, err := s.authorizeTransition(ctx, actor, apt, req.Status)
	if err != nil {
		return nil, nil, err
	}

	from := apt.Status
	now := s.now()
	if err := apt.Transition(req.Status, req.Reason, now); err != nil {
		return nil, nil, err
	}

	notification := newStatusChangeNotification(recipient, apt, now)
	if err := s.appointments.UpdateAppointmentStatus(ctx, apt, from, notification); err != nil {
		s.tracing.RecordError(span, err)
		if ce, ok := types.AsClinicError(err); ok {
			return nil, nil, ce
		}
		return nil, nil, types.NewTransactionError(types.ErrCodeTransactionFailed, "Failed to update appointment", err)
	}

	s.log(ctx).WithFields(logrus.Fields{
		"appointment_id": apt.ID,
		"from":           from,
		"to":             apt.Status,
		"actor_id":       actor.UserID,
	}).Info("Appointment status changed")

	return apt, &types.AppointmentStatusChanged{
		AppointmentID: apt.ID,
		From:          from,
		To:            apt.Status,
		ActorUserID:   actor.UserID,
		OccurredAt:    now,
	}, nil
}

// authorizeTransition checks that actor owns apt and may move it to next,
// and returns the user id of the counterpart to notify
func (s *Service) authorizeTransition(ctx context.Context, actor *types.Principal, apt *types.Appointment, next types.AppointmentStatus) (string, error) {
	if actor.HasAnyRole(types.RoleDoctor) {
		doctor, err := s.appointments.GetDoctorByUserID(ctx, actor.UserID)
		if err != nil {
			return "", types.NewInternalError("Failed to load doctor", err)
		}
		if doctor != nil && doctor.ID == apt.DoctorID && doctorMayMoveTo(next) {
			student, err := s.appointments.GetStudentByID(ctx, apt.StudentID)
			if err != nil {
				return "", types.NewInternalError("Failed to load student", err)
			}
			if student == nil {
				return "", types.NewNotFoundError("Student profile not found")
			}
			return student.UserID, nil
		}
	}

	if actor.HasAnyRole(types.RoleStudent) && next == types.StatusCancelled {
		student, err := s.appointments.GetStudentByUserID(ctx, actor.UserID)
		if err != nil {
			return "", types.NewInternalError("Failed to load student", err)
		}
		if student != nil && student.ID == apt.StudentID {
			doctor, err := s.appointments.GetDoctorByID(ctx, apt.DoctorID)
			if err != nil {
				return "", types.NewInternalError("Failed to load doctor", err)
			}
			if doctor == nil {
				return "", types.NewNotFoundError("Doctor not found")
			}
			return doctor.UserID, nil
		}
	}

	s.logger.Security(ctx, "appointment_transition_denied", map[string]interface{}{
		"appointment_id": apt.ID,
		"user_id":        actor.UserID,
		"status":         string(next),
	})
	return "", types.NewForbiddenError("You are not allowed to change this appointment")
}

func doctorMayMoveTo(next types.AppointmentStatus) bool {
	switch next {
	case types.StatusConfirmed, types.StatusRejected, types.StatusCompleted, types.StatusCancelled:
		return true
	}
	return false
}

// ListActiveDepartments returns the departments students can book with
func (s *Service) ListActiveDepartments(ctx context.Context) ([]*types.Department, error) {
	departments, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, types.NewInternalError("Failed to list departments", err)
	}
	return departments, nil
}

func toResponse(apt *types.Appointment, student *types.Student, doctor *types.Doctor) *types.AppointmentResponse {
	resp := &types.AppointmentResponse{
		ID:              apt.ID,
		StudentID:       student.ID,
		MatricNumber:    student.MatricNumber,
		DoctorID:        doctor.ID,
		Specialization:  doctor.Specialization,
		AppointmentDate: apt.AppointmentDate,
		StartTime:       apt.StartTime.String(),
		EndTime:         apt.EndTime.String(),
		Status:          apt.Status,
		ReasonForVisit:  apt.ReasonForVisit,
		CreatedAt:       apt.CreatedAt,
	}
	if student.User != nil {
		resp.StudentName = student.User.FullName()
	}
	if doctor.User != nil {
		resp.DoctorName = "Dr. " + doctor.User.FullName()
	}
	if doctor.Department != nil {
		resp.DepartmentName = doctor.Department.Name
	}
	return resp
}

func (s *Service) log(ctx context.Context) *logrus.Entry {
	return s.logger.WithContext(ctx).WithField("component", "scheduling")
}
