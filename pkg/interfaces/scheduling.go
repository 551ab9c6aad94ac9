package interfaces

import (
	"context"

	"github.com/futa-medical/clinic-booking/pkg/types"
)

// SchedulingService defines appointment booking and lifecycle operations
type SchedulingService interface {
	CreateAppointment(ctx context.Context, userID string, req *types.CreateAppointmentRequest) (*types.AppointmentResponse, *types.AppointmentRequested, error)
	TransitionAppointment(ctx context.Context, actor *types.Principal, appointmentID string, req *types.TransitionAppointmentRequest) (*types.Appointment, *types.AppointmentStatusChanged, error)
	ListActiveDepartments(ctx context.Context) ([]*types.Department, error)
}

// AppointmentRepository defines persistence for appointments and the
// participants they reference. Lookups return nil, nil when nothing matches.
type AppointmentRepository interface {
	GetStudentByUserID(ctx context.Context, userID string) (*types.Student, error)
	GetStudentByID(ctx context.Context, studentID string) (*types.Student, error)
	GetDoctorByUserID(ctx context.Context, userID string) (*types.Doctor, error)
	GetDoctorByID(ctx context.Context, doctorID string) (*types.Doctor, error)
	GetAppointmentByID(ctx context.Context, id string) (*types.Appointment, error)

	// CreateAppointment writes the appointment and its notification atomically
	CreateAppointment(ctx context.Context, appointment *types.Appointment, notification *types.Notification) error
	// UpdateAppointmentStatus persists a transition from the given status and
	// its notification atomically. It fails when the stored status is no
	// longer from.
	UpdateAppointmentStatus(ctx context.Context, appointment *types.Appointment, from types.AppointmentStatus, notification *types.Notification) error
}

// DepartmentRepository defines persistence for clinic departments
type DepartmentRepository interface {
	ListActive(ctx context.Context) ([]*types.Department, error)
	GetByID(ctx context.Context, id string) (*types.Department, error)
	GetByName(ctx context.Context, name string) (*types.Department, error)
	EnsureDepartment(ctx context.Context, name, description string) error
}
