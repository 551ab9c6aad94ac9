package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ConsultationDuration is the fixed length of every appointment
const ConsultationDuration = 30 * time.Minute

// AppointmentStatus represents appointment status values
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusRejected  AppointmentStatus = "Rejected"
)

var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// IsValid reports whether s is a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s AppointmentStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TimeOfDay is a wall-clock time without a date, stored as an offset from
// midnight in [0, 24h).
type TimeOfDay time.Duration

// ParseTimeOfDay accepts "HH:mm" or "HH:mm:ss"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q: expected HH:mm or HH:mm:ss", s)
}

// NewTimeOfDay builds a TimeOfDay from clock components
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second
	return TimeOfDay(0).Add(d)
}

// Add returns t+d wrapped modulo 24h, so 23:45 + 30m is 00:15
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	const day = 24 * time.Hour
	v := (time.Duration(t) + d) % day
	if v < 0 {
		v += day
	}
	return TimeOfDay(v)
}

// Clock returns the hour, minute and second components
func (t TimeOfDay) Clock() (hour, minute, second int) {
	d := time.Duration(t)
	hour = int(d / time.Hour)
	minute = int(d % time.Hour / time.Minute)
	second = int(d % time.Minute / time.Second)
	return
}

// String formats as HH:mm
func (t TimeOfDay) String() string {
	h, m, _ := t.Clock()
	return fmt.Sprintf("%02d:%02d", h, m)
}

// MarshalJSON encodes the time as "HH:mm"
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts "HH:mm" or "HH:mm:ss"
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time of day %s", s)
	}
	parsed, err := ParseTimeOfDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores the time as HH:mm:ss for a Postgres time column
func (t TimeOfDay) Value() (driver.Value, error) {
	h, m, s := t.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
}

// Scan reads a Postgres time column
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute(), v.Second())
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	// drop fractional seconds
	if len(s) > 8 {
		s = s[:8]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Appointment represents a consultation booked by a student with a doctor
type Appointment struct {
	ID                 string            `json:"id" db:"id"`
	StudentID          string            `json:"studentId" db:"student_id"`
	DoctorID           string            `json:"doctorId" db:"doctor_id"`
	AppointmentDate    time.Time         `json:"appointmentDate" db:"appointment_date"`
	StartTime          TimeOfDay         `json:"startTime" db:"start_time"`
	EndTime            TimeOfDay         `json:"endTime" db:"end_time"`
	Status             AppointmentStatus `json:"status" db:"status"`
	ReasonForVisit     string            `json:"reasonForVisit" db:"reason_for_visit"`
	CancellationReason *string           `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	RejectionReason    *string           `json:"rejectionReason,omitempty" db:"rejection_reason"`
	Notes              *string           `json:"notes,omitempty" db:"notes"`
	CompletedAt        *time.Time        `json:"completedAt,omitempty" db:"completed_at"`
	CancelledAt        *time.Time        `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt          time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt          *time.Time        `json:"updatedAt,omitempty" db:"updated_at"`
}

// Transition moves the appointment to next, stamping the fields that go
// with the new state. The appointment is left untouched on error.
func (a *Appointment) Transition(next AppointmentStatus, reason string, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return &ClinicError{
			Type:    ErrorTypeValidation,
			Code:    ErrCodeInvalidStatusTransition,
			Message: "Invalid status transition",
			Details: []string{fmt.Sprintf("cannot move appointment from %s to %s", a.Status, next)},
		}
	}

	now = now.UTC()
	switch next {
	case StatusCancelled:
		if reason != "" {
			a.CancellationReason = &reason
		}
		a.CancelledAt = &now
	case StatusRejected:
		if reason != "" {
			a.RejectionReason = &reason
		}
	case StatusCompleted:
		a.CompletedAt = &now
	}
	a.Status = next
	a.UpdatedAt = &now
	return nil
}

// NotificationType categorizes notifications
type NotificationType string

const (
	NotificationTypeAppointment NotificationType = "Appointment"
	NotificationTypeSystem      NotificationType = "System"
)

// Notification is an in-app message persisted for a user
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"userId" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	ReadAt    *time.Time       `json:"readAt,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// CreateAppointmentRequest is the booking payload sent by a student
type CreateAppointmentRequest struct {
	DoctorID        string    `json:"doctorId" validate:"required,uuid"`
	AppointmentDate time.Time `json:"appointmentDate" validate:"required"`
	StartTime       string    `json:"startTime" validate:"required"`
	ReasonForVisit  string    `json:"reasonForVisit" validate:"required,max=1000"`
}

// TransitionAppointmentRequest moves an appointment to a new status
type TransitionAppointmentRequest struct {
	Status AppointmentStatus `json:"status" validate:"required"`
	Reason string            `json:"reason,omitempty" validate:"max=500"`
}

// AppointmentResponse is the booking view returned to clients
type AppointmentResponse struct {
	ID              string            `json:"id"`
	StudentID       string            `json:"studentId"`
	StudentName     string            `json:"studentName"`
	MatricNumber    string            `json:"matricNumber"`
	DoctorID        string            `json:"doctorId"`
	DoctorName      string            `json:"doctorName"`
	Specialization  string            `json:"specialization"`
	DepartmentName  string            `json:"departmentName"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Status          AppointmentStatus `json:"status"`
	ReasonForVisit  string            `json:"reasonForVisit"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// AppointmentRequested is emitted after a booking commits
type AppointmentRequested struct {
	AppointmentID   string    `json:"appointmentId"`
	StudentID       string    `json:"studentId"`
	DoctorID        string    `json:"doctorId"`
	DoctorUserID    string    `json:"doctorUserId"`
	AppointmentDate time.Time `json:"appointmentDate"`
	StartTime       string    `json:"startTime"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// AppointmentStatusChanged is emitted after a transition commits
type AppointmentStatusChanged struct {
	AppointmentID string            `json:"appointmentId"`
	From          AppointmentStatus `json:"from"`
	To            AppointmentStatus `json:"to"`
	ActorUserID   string            `json:"actorUserId"`
	OccurredAt    time.Time         `json:"occurredAt"`
}
