package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/futa-medical/clinic-booking/pkg/api"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

type MockSchedulingService struct {
	mock.Mock
}

func (m *MockSchedulingService) CreateAppointment(ctx context.Context, userID string, req *types.CreateAppointmentRequest) (*types.AppointmentResponse, *types.AppointmentRequested, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*types.AppointmentResponse), args.Get(1).(*types.AppointmentRequested), args.Error(2)
}

func (m *MockSchedulingService) TransitionAppointment(ctx context.Context, actor *types.Principal, appointmentID string, req *types.TransitionAppointmentRequest) (*types.Appointment, *types.AppointmentStatusChanged, error) {
	args := m.Called(ctx, actor, appointmentID, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*types.Appointment), args.Get(1).(*types.AppointmentStatusChanged), args.Error(2)
}

func (m *MockSchedulingService) ListActiveDepartments(ctx context.Context) ([]*types.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Department), args.Error(1)
}

func setupRouter(service *MockSchedulingService, principal *types.Principal) (*gin.Engine, *monitoring.MetricsCollector) {
	gin.SetMode(gin.TestMode)
	metrics := monitoring.NewMetricsCollector("clinic-api-test")
	h := NewHandlers(service, metrics, logger.NewWithOutput("error", io.Discard))

	router := gin.New()
	withPrincipal := func(c *gin.Context) {
		if principal != nil {
			api.SetPrincipal(c, principal)
		}
		c.Next()
	}
	router.GET("/api/departments", h.ListDepartments)
	router.POST("/api/appointments", withPrincipal, h.CreateAppointment)
	router.PATCH("/api/appointments/:id/status", withPrincipal, h.TransitionAppointment)
	return router, metrics
}

func perform(router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, api.Response) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp api.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestHandlers_CreateAppointment(t *testing.T) {
	body := `{"doctorId":"` + doctorID + `","appointmentDate":"2026-03-10T00:00:00Z","startTime":"09:00","reasonForVisit":"Headache"}`

	t.Run("books for the authenticated student", func(t *testing.T) {
		service := new(MockSchedulingService)
		router, metrics := setupRouter(service, studentPrincipal())

		service.On("CreateAppointment", mock.Anything, studentUserID, mock.MatchedBy(func(r *types.CreateAppointmentRequest) bool {
			return r.DoctorID == doctorID && r.StartTime == "09:00"
		})).Return(
			&types.AppointmentResponse{ID: appointmentID, StartTime: "09:00", EndTime: "09:30", Status: types.StatusPending},
			&types.AppointmentRequested{AppointmentID: appointmentID, DoctorID: doctorID, AppointmentDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), StartTime: "09:00"},
			nil,
		)

		rec, resp := perform(router, http.MethodPost, "/api/appointments", body)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, resp.Success)
		assert.Contains(t, rec.Body.String(), `"endTime":"09:30"`)
		assert.Equal(t, 1, testutil.CollectAndCount(metrics.Registry(), "clinic_appointments_booked_total"))
		service.AssertExpectations(t)
	})

	t.Run("doctor not found", func(t *testing.T) {
		service := new(MockSchedulingService)
		router, _ := setupRouter(service, studentPrincipal())
		service.On("CreateAppointment", mock.Anything, studentUserID, mock.Anything).
			Return(nil, nil, types.NewNotFoundError("Doctor not found or not verified"))

		rec, resp := perform(router, http.MethodPost, "/api/appointments", body)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Doctor not found or not verified", resp.Message)
	})

	t.Run("no principal", func(t *testing.T) {
		service := new(MockSchedulingService)
		router, _ := setupRouter(service, nil)

		rec, _ := perform(router, http.MethodPost, "/api/appointments", body)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		service.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandlers_TransitionAppointment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := new(MockSchedulingService)
		router, _ := setupRouter(service, doctorPrincipal())

		apt := pendingAppointment()
		require.NoError(t, apt.Transition(types.StatusConfirmed, "", fixedNow))
		service.On("TransitionAppointment", mock.Anything, doctorPrincipal(), appointmentID,
			&types.TransitionAppointmentRequest{Status: types.StatusConfirmed}).
			Return(apt, &types.AppointmentStatusChanged{AppointmentID: appointmentID, From: types.StatusPending, To: types.StatusConfirmed}, nil)

		rec, resp := perform(router, http.MethodPatch, "/api/appointments/"+appointmentID+"/status", `{"status":"Confirmed"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		assert.Contains(t, rec.Body.String(), `"startTime":"09:00"`)
	})

	t.Run("forbidden", func(t *testing.T) {
		service := new(MockSchedulingService)
		router, _ := setupRouter(service, studentPrincipal())
		service.On("TransitionAppointment", mock.Anything, mock.Anything, appointmentID, mock.Anything).
			Return(nil, nil, types.NewForbiddenError("You are not allowed to change this appointment"))

		rec, _ := perform(router, http.MethodPatch, "/api/appointments/"+appointmentID+"/status", `{"status":"Confirmed"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		service := new(MockSchedulingService)
		router, _ := setupRouter(service, doctorPrincipal())

		rec, _ := perform(router, http.MethodPatch, "/api/appointments/abc/status", `{"status":"Confirmed"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlers_ListDepartments(t *testing.T) {
	service := new(MockSchedulingService)
	router, _ := setupRouter(service, nil)
	service.On("ListActiveDepartments", mock.Anything).Return([]*types.Department{{ID: "d-1", Name: "Dentistry", IsActive: true}}, nil)

	rec, resp := perform(router, http.MethodGet, "/api/departments", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Contains(t, rec.Body.String(), "Dentistry")
}
