package interfaces

import (
	"context"

	"github.com/futa-medical/clinic-booking/pkg/types"
)

// StudentService defines the self-service profile operations of a student
type StudentService interface {
	GetProfile(ctx context.Context, userID string) (*types.StudentProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *types.UpdateStudentProfileRequest) (*types.StudentProfile, error)
}

// StudentRepository defines persistence for student profiles
type StudentRepository interface {
	// GetProfileByUserID returns nil, nil when the user has no student profile
	GetProfileByUserID(ctx context.Context, userID string) (*types.StudentProfile, error)
	// UpdateProfile writes the phone number to the user and everything else
	// to the student in one transaction
	UpdateProfile(ctx context.Context, userID, studentID string, req *types.UpdateStudentProfileRequest) error
}
