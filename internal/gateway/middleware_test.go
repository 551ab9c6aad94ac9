package gateway

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/futa-medical/clinic-booking/pkg/api"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) Authenticate(token string) (*types.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Principal), args.Error(1)
}

func testLogger() *logger.Logger {
	return logger.NewWithOutput("error", io.Discard)
}

func protectedRouter(validator *MockTokenValidator, roles ...types.RoleName) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(validator, testLogger()), RequireRoles(roles...), func(c *gin.Context) {
		p, _ := api.Principal(c)
		c.JSON(http.StatusOK, gin.H{"userId": p.UserID, "ctxUser": logger.UserIDFromContext(c.Request.Context())})
	})
	return router
}

func get(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	student := &types.Principal{UserID: "user-1", Roles: []types.RoleName{types.RoleStudent}}

	t.Run("valid token", func(t *testing.T) {
		validator := new(MockTokenValidator)
		validator.On("Authenticate", "good-token").Return(student, nil)

		rec := get(protectedRouter(validator, types.RoleStudent), "Bearer good-token")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"userId":"user-1","ctxUser":"user-1"}`, rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		validator := new(MockTokenValidator)

		rec := get(protectedRouter(validator, types.RoleStudent), "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		validator.AssertNotCalled(t, "Authenticate", mock.Anything)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		validator := new(MockTokenValidator)

		rec := get(protectedRouter(validator, types.RoleStudent), "Basic dXNlcjpwYXNz")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		validator := new(MockTokenValidator)
		validator.On("Authenticate", "stale").Return(nil, errors.New("token is expired"))

		rec := get(protectedRouter(validator, types.RoleStudent), "Bearer stale")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid token")
	})

	t.Run("role mismatch", func(t *testing.T) {
		validator := new(MockTokenValidator)
		validator.On("Authenticate", "good-token").Return(student, nil)

		rec := get(protectedRouter(validator, types.RoleAdmin), "Bearer good-token")

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})

	t.Run("any listed role passes", func(t *testing.T) {
		validator := new(MockTokenValidator)
		validator.On("Authenticate", "good-token").Return(student, nil)

		rec := get(protectedRouter(validator, types.RoleDoctor, types.RoleStudent), "Bearer good-token")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(monitoring.NewMetricsCollector("gateway-test"), testLogger()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An internal error occurred")
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
