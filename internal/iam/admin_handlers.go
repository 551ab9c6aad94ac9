package iam

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

// AdminHandlers exposes the admin account management endpoints
type AdminHandlers struct {
	service interfaces.AdminService
	metrics *monitoring.MetricsCollector
	logger  *logger.Logger
}

// NewAdminHandlers creates new admin HTTP handlers
func NewAdminHandlers(service interfaces.AdminService, metrics *monitoring.MetricsCollector, log *logger.Logger) *AdminHandlers {
	return &AdminHandlers{
		service: service,
		metrics: metrics,
		logger:  log,
	}
}

// RegisterRoutes mounts the admin routes on group behind middleware
func (h *AdminHandlers) RegisterRoutes(group *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	admin := group.Group("/admin", middleware...)
	{
		admin.GET("/doctors", h.ListDoctors)
		admin.POST("/doctors", h.CreateDoctor)
		admin.POST("/doctors/:id/activate", h.setDoctorActive(true))
		admin.POST("/doctors/:id/deactivate", h.setDoctorActive(false))

		admin.GET("/students", h.ListStudents)
		admin.POST("/students/:id/activate", h.setStudentActive(true))
		admin.POST("/students/:id/deactivate", h.setStudentActive(false))
	}
}

// CreateDoctor provisions a doctor account
func (h *AdminHandlers) CreateDoctor(c *gin.Context) {
	var req types.CreateDoctorRequest
	if !api.BindJSON(c, &req) {
		return
	}

	doctorID, err := h.service.CreateDoctor(c.Request.Context(), &req)
	h.metrics.RecordRegistration("doctor", outcome(err))
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}

	h.audit(c, "create_doctor", doctorID)
	api.Success(c, http.StatusCreated, "Doctor created successfully", gin.H{"doctorId": doctorID})
}

// ListDoctors returns every doctor
func (h *AdminHandlers) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}
	api.Success(c, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// ListStudents returns every student
func (h *AdminHandlers) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context())
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}
	api.Success(c, http.StatusOK, "Students retrieved successfully", students)
}

func (h *AdminHandlers) setDoctorActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c)
		if !ok {
			return
		}
		if err := h.service.SetDoctorActive(c.Request.Context(), id, active); err != nil {
			api.Error(c, h.logger, err)
			return
		}
		h.audit(c, activationAction("doctor", active), id)
		api.Success(c, http.StatusOK, "Doctor "+activationWord(active)+" successfully", nil)
	}
}

func (h *AdminHandlers) setStudentActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c)
		if !ok {
			return
		}
		if err := h.service.SetStudentActive(c.Request.Context(), id, active); err != nil {
			api.Error(c, h.logger, err)
			return
		}
		h.audit(c, activationAction("student", active), id)
		api.Success(c, http.StatusOK, "Student "+activationWord(active)+" successfully", nil)
	}
}

func (h *AdminHandlers) audit(c *gin.Context, action, resourceID string) {
	actor := ""
	if p, ok := api.Principal(c); ok {
		actor = p.UserID
	}
	h.logger.Audit(c.Request.Context(), actor, action, resourceID, true, nil)
}

func activationWord(active bool) string {
	if active {
		return "activated"
	}
	return "deactivated"
}

func activationAction(kind string, active bool) string {
	if active {
		return "activate_" + kind
	}
	return "deactivate_" + kind
}

// pathUUID reads the :id parameter, writing a 400 when it is not a UUID
func pathUUID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid identifier", "id must be a valid identifier")
		return "", false
	}
	return id, true
}
