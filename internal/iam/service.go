package iam

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
	"github.com/futa-medical/clinic-booking/pkg/validation"
)

// Service implements login, student self-registration and token refresh
type Service struct {
	logger    *logger.Logger
	tracing   *monitoring.TracingManager
	users     interfaces.UserRepository
	roles     interfaces.RoleRepository
	passwords interfaces.PasswordManager
	tokens    *TokenIssuer
	now       func() time.Time
}

// NewService creates a new auth service instance
func NewService(
	log *logger.Logger,
	tracing *monitoring.TracingManager,
	users interfaces.UserRepository,
	roles interfaces.RoleRepository,
	passwords interfaces.PasswordManager,
	tokens *TokenIssuer,
) *Service {
	return &Service{
		logger:    log,
		tracing:   tracing,
		users:     users,
		roles:     roles,
		passwords: passwords,
		tokens:    tokens,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates by email and password and issues a fresh token pair
func (s *Service) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error) {
	ctx, span := s.tracing.StartAuthSpan(ctx, "login")
	defer span.End()

	if problems := validation.Struct(req); len(problems) > 0 {
		return nil, types.NewValidationError("Validation failed", problems...)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		s.tracing.RecordError(span, err)
		return nil, types.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		s.logger.Security(ctx, "login_failed", map[string]interface{}{"reason": "unknown_email"})
		return nil, types.ErrInvalidCredentials
	}

	ok, err := s.passwords.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		s.log(ctx).WithError(err).WithField("user_id", user.ID).Error("Stored password hash could not be verified")
	}
	if !ok {
		s.logger.Security(ctx, "login_failed", map[string]interface{}{"reason": "wrong_password", "user_id": user.ID})
		return nil, types.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Security(ctx, "login_suspended", map[string]interface{}{"user_id": user.ID})
		return nil, types.ErrAccountSuspended
	}

	resp, refreshToken, err := s.issueTokens(user, user.Roles)
	if err != nil {
		return nil, err
	}

	if err := s.users.SaveRefreshToken(ctx, user.ID, refreshToken, s.now().Add(s.tokens.RefreshTTL())); err != nil {
		s.tracing.RecordError(span, err)
		return nil, types.NewInternalError("Failed to persist refresh token", err)
	}

	s.log(ctx).WithField("user_id", user.ID).Info("User logged in")
	return resp, nil
}

// RegisterStudent creates a student account and signs the student in
func (s *Service) RegisterStudent(ctx context.Context, req *types.RegisterStudentRequest) (*types.AuthResponse, error) {
	ctx, span := s.tracing.StartAuthSpan(ctx, "register_student")
	defer span.End()

	if problems := s.validateRegistration(req); len(problems) > 0 {
		return nil, types.NewValidationError("Validation failed", problems...)
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, types.NewInternalError("Failed to check email", err)
	}
	if exists {
		return nil, types.NewConflictError(types.ErrCodeDuplicateEmail, "Email already registered")
	}

	exists, err = s.users.MatricNumberExists(ctx, req.MatricNumber)
	if err != nil {
		return nil, types.NewInternalError("Failed to check matric number", err)
	}
	if exists {
		return nil, types.NewConflictError(types.ErrCodeDuplicateMatricNumber, "Matric number already registered")
	}

	role, err := s.roles.GetByName(ctx, types.RoleStudent)
	if err != nil {
		return nil, types.NewInternalError("Failed to load role", err)
	}
	if role == nil {
		return nil, types.NewConfigurationError("Student role not found")
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, types.NewInternalError("Failed to hash password", err)
	}

	now := s.now()
	user := &types.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		IsActive:     true,
		Roles:        []types.RoleName{types.RoleStudent},
		CreatedAt:    now,
	}
	student := &types.Student{
		ID:                    uuid.New().String(),
		UserID:                user.ID,
		MatricNumber:          req.MatricNumber,
		DateOfBirth:           req.DateOfBirth.UTC(),
		Gender:                req.Gender,
		Address:               req.Address,
		Faculty:               req.Faculty,
		Department:            req.Department,
		YearOfStudy:           req.YearOfStudy,
		BloodGroup:            req.BloodGroup,
		Genotype:              req.Genotype,
		Allergies:             req.Allergies,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		CreatedAt:             now,
	}

	resp, refreshToken, err := s.issueTokens(user, user.Roles)
	if err != nil {
		return nil, err
	}

	if err := s.users.CreateStudentAccount(ctx, user, role.ID, student, refreshToken, now.Add(s.tokens.RefreshTTL())); err != nil {
		s.tracing.RecordError(span, err)
		// a concurrent registration can still trip the unique indexes
		if ce, ok := types.AsClinicError(err); ok && ce.Type == types.ErrorTypeConflict {
			return nil, ce
		}
		s.log(ctx).WithError(err).Error("Student registration rolled back")
		return nil, types.NewTransactionError(types.ErrCodeRegistrationFailed, "Registration failed", err)
	}

	s.log(ctx).WithFields(logrus.Fields{
		"user_id":    user.ID,
		"student_id": student.ID,
	}).Info("Student registered")
	return resp, nil
}

// RefreshToken exchanges an expired access token and its refresh token for a
// new pair. The refresh token expiry is not extended.
func (s *Service) RefreshToken(ctx context.Context, req *types.RefreshTokenRequest) (*types.AuthResponse, error) {
	ctx, span := s.tracing.StartAuthSpan(ctx, "refresh")
	defer span.End()

	if problems := validation.Struct(req); len(problems) > 0 {
		return nil, types.NewValidationError("Validation failed", problems...)
	}

	claims, err := s.tokens.PrincipalFromExpiredToken(req.AccessToken)
	if err != nil {
		s.logger.Security(ctx, "refresh_invalid_token", map[string]interface{}{"error": err.Error()})
		return nil, types.ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, types.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		s.logger.Security(ctx, "refresh_unknown_user", nil)
		return nil, types.ErrInvalidRefreshToken
	}

	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(req.RefreshToken)) != 1 {
		s.logger.Security(ctx, "refresh_token_mismatch", map[string]interface{}{"user_id": user.ID})
		return nil, types.ErrInvalidRefreshToken
	}
	if user.RefreshTokenExpiryTime == nil || !user.RefreshTokenExpiryTime.After(s.now()) {
		s.logger.Security(ctx, "refresh_token_expired", map[string]interface{}{"user_id": user.ID})
		return nil, types.ErrInvalidRefreshToken
	}

	resp, refreshToken, err := s.issueTokens(user, user.Roles)
	if err != nil {
		return nil, err
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		s.tracing.RecordError(span, err)
		return nil, types.NewInternalError("Failed to persist refresh token", err)
	}

	s.log(ctx).WithField("user_id", user.ID).Info("Tokens refreshed")
	return resp, nil
}

func (s *Service) issueTokens(user *types.User, roles []types.RoleName) (*types.AuthResponse, string, error) {
	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, "", types.NewInternalError("Failed to issue access token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, "", types.NewInternalError("Failed to issue refresh token", err)
	}

	if roles == nil {
		roles = []types.RoleName{}
	}

	return &types.AuthResponse{
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		TokenType:            "Bearer",
		AccessTokenExpiresAt: expiresAt,
		User: types.UserSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Roles:     roles,
		},
	}, refreshToken, nil
}

func (s *Service) validateRegistration(req *types.RegisterStudentRequest) []string {
	problems := validation.Struct(req)
	problems = append(problems, ValidatePasswordPolicy(req.Password)...)
	if strings.TrimSpace(req.FirstName) == "" && req.FirstName != "" {
		problems = append(problems, "firstName is required")
	}
	if strings.TrimSpace(req.LastName) == "" && req.LastName != "" {
		problems = append(problems, "lastName is required")
	}
	return problems
}

func (s *Service) log(ctx context.Context) *logrus.Entry {
	return s.logger.WithContext(ctx).WithField("component", "auth")
}
