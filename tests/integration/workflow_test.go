//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futa-medical/clinic-booking/internal/iam"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

const studentPassword = "Passw0rd!"

func login(t *testing.T, email, password string) *types.AuthResponse {
	t.Helper()
	status, resp := call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, resp.Message)

	var auth types.AuthResponse
	decode(t, resp.Data, &auth)
	return &auth
}

func registration(suffix string) map[string]interface{} {
	return map[string]interface{}{
		"firstName":    "Ada",
		"lastName":     "Obi",
		"email":        fmt.Sprintf("ada.%s@futa.edu.ng", suffix),
		"password":     studentPassword,
		"matricNumber": fmt.Sprintf("CSC/2021/%s", suffix),
		"gender":       "Female",
		"yearOfStudy":  2,
	}
}

func TestSchemaIsIdempotentAndSeeded(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.CreateSchema(ctx))

	assert.Equal(t, 3, countRows(t, `SELECT COUNT(*) FROM roles`))
	assert.Equal(t, 5, countRows(t, `SELECT COUNT(*) FROM departments`))
	assert.Equal(t, 1, countRows(t, `SELECT COUNT(*) FROM users WHERE email = $1`, iam.DefaultAdminEmail))
	assert.Equal(t, 1, countRows(t, `SELECT COUNT(*) FROM doctors WHERE license_number = 'MD123456'`))
	assert.Equal(t, 1, countRows(t, `SELECT COUNT(*) FROM students WHERE matric_number = 'CSC/2020/001'`))

	status, resp := call(t, http.MethodGet, "/api/departments", "", nil)
	require.Equal(t, http.StatusOK, status)
	var departments []types.Department
	decode(t, resp.Data, &departments)
	require.Len(t, departments, 5)
	assert.Equal(t, "Dentistry", departments[0].Name)
}

func TestRegistrationAndLogin(t *testing.T) {
	suffix := uuid.NewString()[:8]
	body := registration(suffix)

	status, resp := call(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, status, resp.Errors)

	var auth types.AuthResponse
	decode(t, resp.Data, &auth)
	assert.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, []types.RoleName{types.RoleStudent}, auth.User.Roles)

	assert.Equal(t, 1, countRows(t, `SELECT COUNT(*) FROM students s JOIN users u ON u.id = s.user_id WHERE u.email = $1`, body["email"]))

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup := registration(uuid.NewString()[:8])
		dup["email"] = body["email"]
		status, resp := call(t, http.MethodPost, "/api/auth/register", "", dup)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "Email already registered", resp.Message)
	})

	t.Run("duplicate matric leaves no orphan user", func(t *testing.T) {
		dup := registration(uuid.NewString()[:8])
		dup["matricNumber"] = body["matricNumber"]
		status, _ := call(t, http.MethodPost, "/api/auth/register", "", dup)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, 0, countRows(t, `SELECT COUNT(*) FROM users WHERE email = $1`, dup["email"]))
	})

	t.Run("login with registered credentials", func(t *testing.T) {
		got := login(t, body["email"].(string), studentPassword)
		assert.Equal(t, auth.User.ID, got.User.ID)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		s1, r1 := call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": body["email"].(string), "password": "Wrong0ne!"})
		s2, r2 := call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@futa.edu.ng", "password": "Wrong0ne!"})
		assert.Equal(t, http.StatusUnauthorized, s1)
		assert.Equal(t, s1, s2)
		assert.Equal(t, r1, r2)
	})
}

func TestConcurrentRegistrationSameEmail(t *testing.T) {
	email := fmt.Sprintf("race.%s@futa.edu.ng", uuid.NewString()[:8])

	var wg sync.WaitGroup
	statuses := make([]int, 2)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := registration(uuid.NewString()[:8])
			body["email"] = email
			statuses[i], _ = call(t, http.MethodPost, "/api/auth/register", "", body)
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusConflict}, statuses)
	assert.Equal(t, 1, countRows(t, `SELECT COUNT(*) FROM users WHERE email = $1`, email))
}

func TestRefreshRotation(t *testing.T) {
	suffix := uuid.NewString()[:8]
	body := registration(suffix)
	status, _ := call(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, status)

	first := login(t, body["email"].(string), studentPassword)
	var expiryBefore time.Time
	require.NoError(t, testDB.QueryRowContext(context.Background(),
		`SELECT refresh_token_expiry_time FROM users WHERE id = $1`, first.User.ID).Scan(&expiryBefore))

	status, resp := call(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
		"accessToken":  first.AccessToken,
		"refreshToken": first.RefreshToken,
	})
	require.Equal(t, http.StatusOK, status, resp.Errors)
	var second types.AuthResponse
	decode(t, resp.Data, &second)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	var expiryAfter time.Time
	require.NoError(t, testDB.QueryRowContext(context.Background(),
		`SELECT refresh_token_expiry_time FROM users WHERE id = $1`, first.User.ID).Scan(&expiryAfter))
	assert.True(t, expiryBefore.Equal(expiryAfter), "rotation keeps the original expiry")

	status, _ = call(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{
		"accessToken":  first.AccessToken,
		"refreshToken": first.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, status, "a rotated token cannot be replayed")
}

func TestAppointmentLifecycle(t *testing.T) {
	student := login(t, iam.SampleStudentEmail, "Student123!")
	doctor := login(t, iam.SampleDoctorEmail, "Doctor123!")
	doctorID := lookupID(t, `SELECT d.id FROM doctors d JOIN users u ON u.id = d.user_id WHERE u.email = $1`, iam.SampleDoctorEmail)

	book := func(start string) types.AppointmentResponse {
		status, resp := call(t, http.MethodPost, "/api/appointments", student.AccessToken, map[string]interface{}{
			"doctorId":        doctorID,
			"appointmentDate": time.Now().UTC().AddDate(0, 0, 7).Format(time.RFC3339),
			"startTime":       start,
			"reasonForVisit":  "Recurring headaches",
		})
		require.Equal(t, http.StatusCreated, status, resp.Errors)
		var apt types.AppointmentResponse
		decode(t, resp.Data, &apt)
		return apt
	}

	t.Run("booking notifies the doctor", func(t *testing.T) {
		apt := book("23:45")
		assert.Equal(t, "00:15", apt.EndTime)
		assert.Equal(t, types.StatusPending, apt.Status)
		assert.Equal(t, "Dr. John Smith", apt.DoctorName)
		assert.GreaterOrEqual(t, countRows(t,
			`SELECT COUNT(*) FROM notifications n JOIN users u ON u.id = n.user_id WHERE u.email = $1 AND n.title = 'New Appointment Request'`,
			iam.SampleDoctorEmail), 1)
	})

	t.Run("doctor confirms then completes", func(t *testing.T) {
		apt := book("10:00")
		path := "/api/appointments/" + apt.ID + "/status"

		status, _ := call(t, http.MethodPatch, path, doctor.AccessToken, map[string]string{"status": "Confirmed"})
		require.Equal(t, http.StatusOK, status)

		status, _ = call(t, http.MethodPatch, path, student.AccessToken, map[string]string{"status": "Completed"})
		assert.Equal(t, http.StatusForbidden, status, "students may only cancel")

		status, _ = call(t, http.MethodPatch, path, doctor.AccessToken, map[string]string{"status": "Completed"})
		require.Equal(t, http.StatusOK, status)

		status, resp := call(t, http.MethodPatch, path, student.AccessToken, map[string]string{"status": "Cancelled"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid status transition", resp.Message)
		assert.Contains(t, resp.Errors, "cannot move appointment from Completed to Cancelled")

		assert.Equal(t, 1, countRows(t, `SELECT COUNT(*) FROM appointments WHERE id = $1 AND completed_at IS NOT NULL`, apt.ID))
	})

	t.Run("student cancels with reason", func(t *testing.T) {
		apt := book("11:30")
		status, _ := call(t, http.MethodPatch, "/api/appointments/"+apt.ID+"/status", student.AccessToken,
			map[string]string{"status": "Cancelled", "reason": "Feeling better"})
		require.Equal(t, http.StatusOK, status)

		assert.Equal(t, 1, countRows(t,
			`SELECT COUNT(*) FROM appointments WHERE id = $1 AND status = 'Cancelled' AND cancellation_reason = 'Feeling better' AND cancelled_at IS NOT NULL`,
			apt.ID))
	})

	t.Run("unknown doctor", func(t *testing.T) {
		status, resp := call(t, http.MethodPost, "/api/appointments", student.AccessToken, map[string]interface{}{
			"doctorId":        uuid.NewString(),
			"appointmentDate": time.Now().UTC().AddDate(0, 0, 7).Format(time.RFC3339),
			"startTime":       "09:00",
			"reasonForVisit":  "Checkup",
		})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Doctor not found or not verified", resp.Message)
	})
}

func TestStudentProfileAndAdmin(t *testing.T) {
	suffix := uuid.NewString()[:8]
	body := registration(suffix)
	status, _ := call(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, status)
	student := login(t, body["email"].(string), studentPassword)

	status, resp := call(t, http.MethodPatch, "/api/students/profile", student.AccessToken, map[string]interface{}{
		"phoneNumber": "+2348012345678",
		"genotype":    "AS",
		"yearOfStudy": 3,
	})
	require.Equal(t, http.StatusOK, status, resp.Errors)

	var profile types.StudentProfile
	decode(t, resp.Data, &profile)
	assert.Equal(t, "+2348012345678", *profile.PhoneNumber)
	assert.Equal(t, "AS", *profile.Genotype)
	assert.Equal(t, 3, profile.YearOfStudy)

	admin := login(t, iam.DefaultAdminEmail, "Admin123!")
	status, _ = call(t, http.MethodPost, "/api/admin/students/"+profile.ID+"/deactivate", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, resp = call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": body["email"].(string), "password": studentPassword})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Account is suspended", resp.Message)

	status, _ = call(t, http.MethodPost, "/api/admin/students/"+profile.ID+"/activate", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	login(t, body["email"].(string), studentPassword)
}
