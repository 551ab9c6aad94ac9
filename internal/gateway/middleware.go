package gateway

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

// SecurityHeaders adds the standard hardening headers to every response
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// Recovery turns a panic into the INTERNAL_ERROR envelope
func Recovery(metrics *monitoring.MetricsCollector, log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithContext(c.Request.Context()).WithField("panic", recovered).Error("Recovered from panic")
		metrics.RecordSystemError("panic", "http")
		api.Fail(c, http.StatusInternalServerError, "An internal error occurred")
		c.Abort()
	})
}

// AuthMiddleware validates the bearer token and stores the caller on the
// gin context and the user id on the request context
func AuthMiddleware(validator interfaces.TokenValidator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, log, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortWith(c, log, types.NewAuthenticationError(types.ErrCodeUnauthorized, "Invalid authorization header format"))
			return
		}

		principal, err := validator.Authenticate(parts[1])
		if err != nil {
			log.Security(c.Request.Context(), "invalid_access_token", map[string]interface{}{
				"client_ip": c.ClientIP(),
				"path":      c.FullPath(),
			})
			abortWith(c, log, types.ErrInvalidToken)
			return
		}

		api.SetPrincipal(c, principal)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), principal.UserID))
		c.Next()
	}
}

// RequireRoles rejects callers holding none of roles with 403
func RequireRoles(roles ...types.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := api.Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Response{
				Success: false,
				Message: types.ErrInvalidToken.Message,
				Errors:  []string{types.ErrInvalidToken.Message},
			})
			return
		}
		if !principal.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, api.Response{
				Success: false,
				Message: "Access denied",
				Errors:  []string{"Insufficient role for this operation"},
			})
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, log *logger.Logger, err error) {
	api.Error(c, log, err)
	c.Abort()
}
