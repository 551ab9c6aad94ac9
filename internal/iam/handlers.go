package iam

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/futa-medical/clinic-booking/pkg/api"
	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Handlers exposes the authentication endpoints
type Handlers struct {
	service interfaces.AuthService
	metrics *monitoring.MetricsCollector
	logger  *logger.Logger
}

// NewHandlers creates new auth HTTP handlers
func NewHandlers(service interfaces.AuthService, metrics *monitoring.MetricsCollector, log *logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		metrics: metrics,
		logger:  log,
	}
}

// RegisterRoutes mounts the public auth routes on group. Extra middleware,
// such as the rate limiter, runs before every route.
func (h *Handlers) RegisterRoutes(group *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	auth := group.Group("/auth", middleware...)
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh-token", h.RefreshToken)
	}
}

// Register handles student self-registration
func (h *Handlers) Register(c *gin.Context) {
	var req types.RegisterStudentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.RegisterStudent(c.Request.Context(), &req)
	h.metrics.RecordRegistration("student", outcome(err))
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}

	h.logger.Audit(c.Request.Context(), resp.User.ID, "register", "student", true, nil)
	api.Success(c, http.StatusCreated, "Registration successful", resp)
}

// Login handles user authentication
func (h *Handlers) Login(c *gin.Context) {
	var req types.LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	h.metrics.RecordAuthAttempt("login", outcome(err))
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}

	h.logger.Audit(c.Request.Context(), resp.User.ID, "login", "session", true, nil)
	api.Success(c, http.StatusOK, "Login successful", resp)
}

// RefreshToken handles access token renewal
func (h *Handlers) RefreshToken(c *gin.Context) {
	var req types.RefreshTokenRequest
	if !api.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), &req)
	h.metrics.RecordAuthAttempt("refresh", outcome(err))
	if err != nil {
		api.Error(c, h.logger, err)
		return
	}

	api.Success(c, http.StatusOK, "Token refreshed successfully", resp)
}

// outcome labels a result for metrics
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if ce, ok := types.AsClinicError(err); ok {
		return strings.ToLower(ce.Code)
	}
	return "error"
}
