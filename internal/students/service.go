package students

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
	"github.com/futa-medical/clinic-booking/pkg/validation"
)

// Service implements the student self-service profile operations
type Service struct {
	logger  *logger.Logger
	tracing *monitoring.TracingManager
	repo    interfaces.StudentRepository
}

// NewService creates a new student profile service
func NewService(log *logger.Logger, tracing *monitoring.TracingManager, repo interfaces.StudentRepository) *Service {
	return &Service{
		logger:  log,
		tracing: tracing,
		repo:    repo,
	}
}

// GetProfile returns the profile of the student owning userID
func (s *Service) GetProfile(ctx context.Context, userID string) (*types.StudentProfile, error) {
	ctx, span := s.tracing.StartSpan(ctx, "students.get_profile")
	defer span.End()

	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		s.tracing.RecordError(span, err)
		return nil, types.NewInternalError("Failed to load student profile", err)
	}
	if profile == nil {
		return nil, types.NewNotFoundError("Student profile not found")
	}
	return profile, nil
}

// UpdateProfile changes the mutable part of a student profile and returns
// the stored result. An empty request returns the profile unchanged.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req *types.UpdateStudentProfileRequest) (*types.StudentProfile, error) {
	ctx, span := s.tracing.StartSpan(ctx, "students.update_profile")
	defer span.End()

	if problems := validateUpdate(req); len(problems) > 0 {
		return nil, types.NewValidationError("Validation failed", problems...)
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return profile, nil
	}

	if err := s.repo.UpdateProfile(ctx, userID, profile.ID, req); err != nil {
		s.tracing.RecordError(span, err)
		if _, ok := types.AsClinicError(err); ok {
			return nil, err
		}
		return nil, types.NewTransactionError(types.ErrCodeTransactionFailed, "Failed to update profile", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"component":  "students",
		"student_id": profile.ID,
	}).Info("Student profile updated")

	return s.GetProfile(ctx, userID)
}

func validateUpdate(req *types.UpdateStudentProfileRequest) []string {
	problems := validation.Struct(req)
	if req.PhoneNumber != nil && !validation.Phone(*req.PhoneNumber) {
		problems = append(problems, "phoneNumber must be a valid phone number")
	}
	if req.EmergencyContactPhone != nil && !validation.Phone(*req.EmergencyContactPhone) {
		problems = append(problems, "emergencyContactPhone must be a valid phone number")
	}
	return problems
}
