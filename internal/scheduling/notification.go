package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/futa-medical/clinic-booking/pkg/types"
)

const appointmentDateLayout = "2006-01-02"

// newAppointmentRequestNotification tells a doctor that a student booked them
func newAppointmentRequestNotification(doctorUserID string, student *types.Student, now time.Time) *types.Notification {
	return &types.Notification{
		ID:        uuid.New().String(),
		UserID:    doctorUserID,
		Title:     "New Appointment Request",
		Message:   fmt.Sprintf("New appointment request from %s", student.User.FullName()),
		Type:      types.NotificationTypeAppointment,
		CreatedAt: now,
	}
}

// newStatusChangeNotification tells the counterpart that an appointment
// moved to a new status
func newStatusChangeNotification(recipientUserID string, apt *types.Appointment, now time.Time) *types.Notification {
	status := strings.ToLower(string(apt.Status))
	message := fmt.Sprintf("The appointment on %s at %s has been %s",
		apt.AppointmentDate.Format(appointmentDateLayout), apt.StartTime, status)

	switch apt.Status {
	case types.StatusCancelled:
		if apt.CancellationReason != nil {
			message += ": " + *apt.CancellationReason
		}
	case types.StatusRejected:
		if apt.RejectionReason != nil {
			message += ": " + *apt.RejectionReason
		}
	}

	return &types.Notification{
		ID:        uuid.New().String(),
		UserID:    recipientUserID,
		Title:     "Appointment " + string(apt.Status),
		Message:   message,
		Type:      types.NotificationTypeAppointment,
		CreatedAt: now,
	}
}
