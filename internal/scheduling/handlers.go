package scheduling

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/futa-medical/clinic-booking/pkg/api"
	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Handlers exposes the booking and department endpoints
type Handlers struct {
	service interfaces.SchedulingService
	metrics *monitoring.MetricsCollector
	logger  *logger.Logger
}

// NewHandlers creates new scheduling HTTP handlers
func NewHandlers(service interfaces.SchedulingService, metrics *monitoring.MetricsCollector, log *logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		metrics: metrics,
		logger:  log,
	}
}

// CreateAppointment books an appointment for the calling student
func (h *Handlers) CreateAppointment(c *gin.Context) {
	principal, ok := api.Principal(c)
	if !ok {
		api.Error(c, h.logger, types.ErrInvalidToken)
		return
	}

	var req types.CreateAppointmentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	resp, event, err := h.service.CreateAppointment(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}

	h.metrics.RecordAppointmentBooked()
	h.logger.Audit(c.Request.Context(), principal.UserID, "appointment_requested", event.AppointmentID, true, map[string]interface{}{
		"doctor_id":        event.DoctorID,
		"appointment_date": event.AppointmentDate.Format(appointmentDateLayout),
		"start_time":       event.StartTime,
	})
	api.Success(c, http.StatusCreated, "Appointment booked successfully", resp)
}

// TransitionAppointment changes the status of an appointment
func (h *Handlers) TransitionAppointment(c *gin.Context) {
	principal, ok := api.Principal(c)
	if !ok {
		api.Error(c, h.logger, types.ErrInvalidToken)
		return
	}

	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid identifier", "id must be a valid identifier")
		return
	}

	var req types.TransitionAppointmentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	apt, event, err := h.service.TransitionAppointment(c.Request.Context(), principal, appointmentID, &req)
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}

	h.metrics.RecordAppointmentTransition(string(event.From), string(event.To))
	h.logger.Audit(c.Request.Context(), principal.UserID, "appointment_status_changed", event.AppointmentID, true, map[string]interface{}{
		"from": string(event.From),
		"to":   string(event.To),
	})
	api.Success(c, http.StatusOK, "Appointment status updated successfully", apt)
}

// ListDepartments returns the active departments
func (h *Handlers) ListDepartments(c *gin.Context) {
	departments, err := h.service.ListActiveDepartments(c.Request.Context())
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}
	api.Success(c, http.StatusOK, "Departments retrieved successfully", departments)
}
