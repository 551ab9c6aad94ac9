package students

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/futa-medical/clinic-booking/pkg/api"
	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Handlers exposes the student profile endpoints
type Handlers struct {
	service interfaces.StudentService
	logger  *logger.Logger
}

// NewHandlers creates new student profile HTTP handlers
func NewHandlers(service interfaces.StudentService, log *logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  log,
	}
}

// GetProfile returns the caller's profile
func (h *Handlers) GetProfile(c *gin.Context) {
	principal, ok := api.Principal(c)
	if !ok {
		api.Error(c, h.logger, types.ErrInvalidToken)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}
	api.Success(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateProfile patches the caller's profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	principal, ok := api.Principal(c)
	if !ok {
		api.Error(c, h.logger, types.ErrInvalidToken)
		return
	}

	var req types.UpdateStudentProfileRequest
	if !api.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}

	h.logger.Audit(c.Request.Context(), principal.UserID, "student_profile_updated", profile.ID, true, nil)
	api.Success(c, http.StatusOK, "Profile updated successfully", profile)
}
