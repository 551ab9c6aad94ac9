package students

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futa-medical/clinic-booking/pkg/database"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

func setupTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log := logger.NewWithOutput("error", io.Discard)
	repo := NewRepository(database.New(sqlDB, log), log)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

var profileColumns = []string{
	"id", "user_id", "matric_number", "first_name", "last_name", "email", "phone_number",
	"date_of_birth", "gender", "address", "faculty", "department", "year_of_study",
	"blood_group", "genotype", "allergies", "emergency_contact_name", "emergency_contact_phone",
	"is_verified", "created_at",
}

func TestRepository_GetProfileByUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock := setupTestRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE s.user_id = $1 AND u.is_deleted = FALSE")).
			WithArgs(studentUserID).
			WillReturnRows(sqlmock.NewRows(profileColumns).AddRow(
				studentID, studentUserID, "CSC/2020/001", "John", "Doe", "student@futa.edu.ng", "+2348012345678",
				time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), "Male", nil, "Computing", "Computer Science", 3,
				"O+", "AA", nil, nil, nil,
				false, fixedNow,
			))

		profile, err := repo.GetProfileByUserID(ctx, studentUserID)
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "John", profile.FirstName)
		assert.Equal(t, "+2348012345678", *profile.PhoneNumber)
		assert.Equal(t, "Computer Science", *profile.Department)
		assert.Equal(t, "O+", *profile.BloodGroup)
		assert.Nil(t, profile.Address)
		assert.Nil(t, profile.Allergies)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := setupTestRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM students s")).WillReturnRows(sqlmock.NewRows(profileColumns))

		profile, err := repo.GetProfileByUserID(ctx, studentUserID)
		assert.NoError(t, err)
		assert.Nil(t, profile)
	})
}

func TestRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	phone := "+2348012345678"
	genotype := "AS"
	year := 4

	t.Run("phone goes to users and the rest to students", func(t *testing.T) {
		repo, mock := setupTestRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET phone_number = $1, updated_at = $2 WHERE id = $3")).
			WithArgs(phone, fixedNow, studentUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET year_of_study = $1, genotype = $2, updated_at = $3 WHERE id = $4")).
			WithArgs(year, genotype, fixedNow, studentID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateProfile(ctx, studentUserID, studentID, &types.UpdateStudentProfileRequest{
			PhoneNumber: &phone,
			Genotype:    &genotype,
			YearOfStudy: &year,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("student write failure rolls back the phone", func(t *testing.T) {
		repo, mock := setupTestRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE students")).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.UpdateProfile(ctx, studentUserID, studentID, &types.UpdateStudentProfileRequest{
			PhoneNumber: &phone,
			Genotype:    &genotype,
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vanished student", func(t *testing.T) {
		repo, mock := setupTestRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET genotype = $1, updated_at = $2 WHERE id = $3")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.UpdateProfile(ctx, studentUserID, studentID, &types.UpdateStudentProfileRequest{Genotype: &genotype})
		assert.True(t, types.HasCode(err, types.ErrCodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
