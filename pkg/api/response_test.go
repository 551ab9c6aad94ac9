package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

func TestStatusForType(t *testing.T) {
	cases := map[types.ErrorType]int{
		types.ErrorTypeValidation:     http.StatusBadRequest,
		types.ErrorTypeAuthentication: http.StatusUnauthorized,
		types.ErrorTypeAuthorization:  http.StatusForbidden,
		types.ErrorTypeNotFound:       http.StatusNotFound,
		types.ErrorTypeConflict:       http.StatusConflict,
		types.ErrorTypeConfiguration:  http.StatusInternalServerError,
		types.ErrorTypeTransaction:    http.StatusInternalServerError,
		types.ErrorTypeInternal:       http.StatusInternalServerError,
	}
	for errType, status := range cases {
		assert.Equal(t, status, StatusForType(errType), string(errType))
	}
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewWithOutput("error", io.Discard)

	render := func(err error) (*httptest.ResponseRecorder, Response) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		Error(c, log, err)

		var body Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}

	t.Run("clinic error", func(t *testing.T) {
		rec, body := render(types.ErrInvalidCredentials)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, body.Success)
		assert.Equal(t, "Invalid email or password", body.Message)
		assert.Equal(t, []string{"Invalid credentials"}, body.Errors)
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		rec, body := render(errors.New("pq: connection reset"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "An internal error occurred", body.Message)
		assert.NotContains(t, rec.Body.String(), "pq:")
	})

	t.Run("wrapped clinic error", func(t *testing.T) {
		wrapped := errors.Join(errors.New("context"), types.NewNotFoundError("Doctor not found"))
		rec, _ := render(wrapped)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPrincipalRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := Principal(c)
	assert.False(t, ok)

	SetPrincipal(c, &types.Principal{UserID: "user-1", Roles: []types.RoleName{types.RoleStudent}})

	p, ok := Principal(c)
	require.True(t, ok)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "user-1", logger.UserIDFromContext(c.Request.Context()))
}
