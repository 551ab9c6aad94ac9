package iam

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/futa-medical/clinic-booking/pkg/config"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

const refreshTokenBytes = 64

// Claims represents the access token payload
type Claims struct {
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Name       string   `json:"name"`
	Roles      []string `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into the caller identity
func (c *Claims) Principal() *types.Principal {
	roles := make([]types.RoleName, 0, len(c.Roles))
	for _, r := range c.Roles {
		roles = append(roles, types.RoleName(r))
	}
	return &types.Principal{
		UserID:    c.Subject,
		Email:     c.Email,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Roles:     roles,
	}
}

// TokenIssuer signs and validates HS256 access tokens and mints opaque
// refresh tokens
type TokenIssuer struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a new token issuer from the JWT configuration
func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(cfg.SecretKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
		now:        time.Now,
	}
}

// RefreshTTL returns how long a freshly issued refresh token stays valid
func (ti *TokenIssuer) RefreshTTL() time.Duration {
	return ti.refreshTTL
}

// GenerateAccessToken signs an access token for user carrying one role claim
// per role. It returns the token and its expiry.
func (ti *TokenIssuer) GenerateAccessToken(user *types.User, roles []types.RoleName) (string, time.Time, error) {
	now := ti.now()
	expiresAt := now.Add(ti.accessTTL)

	roleClaims := make([]string, 0, len(roles))
	for _, r := range roles {
		roleClaims = append(roleClaims, string(r))
	}

	claims := &Claims{
		Email:      user.Email,
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		Name:       user.FullName(),
		Roles:      roleClaims,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    ti.issuer,
			Audience:  jwt.ClaimStrings{ti.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// GenerateRefreshToken returns 64 random bytes, base64 encoded
func (ti *TokenIssuer) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ValidateAccessToken checks signature, signing method, issuer, audience and
// lifetime
func (ti *TokenIssuer) ValidateAccessToken(tokenString string) (*Claims, error) {
	return ti.parse(tokenString,
		jwt.WithIssuer(ti.issuer),
		jwt.WithAudience(ti.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
}

// PrincipalFromExpiredToken performs every check of ValidateAccessToken
// except lifetime, so a refresh can start from an expired access token
func (ti *TokenIssuer) PrincipalFromExpiredToken(tokenString string) (*Claims, error) {
	claims, err := ti.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}

	if claims.Issuer != ti.issuer {
		return nil, errors.New("token has invalid issuer")
	}
	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == ti.audience {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		return nil, errors.New("token has invalid audience")
	}
	return claims, nil
}

// Authenticate validates an access token and returns the caller identity
func (ti *TokenIssuer) Authenticate(tokenString string) (*types.Principal, error) {
	claims, err := ti.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Principal(), nil
}

func (ti *TokenIssuer) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
