// Package api holds the HTTP envelope shared by every handler and the gin
// context accessors for the authenticated caller.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

const internalErrorMessage = "An internal error occurred"

// Response is the envelope of every JSON reply
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Success writes a success envelope
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope with explicit status and details
func Fail(c *gin.Context, status int, message string, details ...string) {
	if len(details) == 0 {
		details = []string{message}
	}
	c.JSON(status, Response{Success: false, Message: message, Errors: details})
}

// Error maps err onto the failure envelope. Errors outside the taxonomy are
// logged and hidden behind a generic message.
func Error(c *gin.Context, log *logger.Logger, err error) {
	ce, ok := types.AsClinicError(err)
	if !ok {
		log.WithContext(c.Request.Context()).WithError(err).Error("Unhandled error")
		Fail(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	status := StatusForType(ce.Type)
	if status >= http.StatusInternalServerError {
		log.WithContext(c.Request.Context()).WithError(err).WithField("code", ce.Code).Error("Request failed")
	}

	details := ce.Details
	if len(details) == 0 {
		details = []string{ce.Message}
	}
	c.JSON(status, Response{Success: false, Message: ce.Message, Errors: details})
}

// StatusForType returns the HTTP status for an error category
func StatusForType(t types.ErrorType) int {
	switch t {
	case types.ErrorTypeValidation:
		return http.StatusBadRequest
	case types.ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case types.ErrorTypeAuthorization:
		return http.StatusForbidden
	case types.ErrorTypeNotFound:
		return http.StatusNotFound
	case types.ErrorTypeConflict:
		return http.StatusConflict
	case types.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// BindJSON decodes the request body, writing a 400 envelope on failure
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request format", err.Error())
		return false
	}
	return true
}
