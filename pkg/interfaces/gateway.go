package interfaces

import "github.com/futa-medical/clinic-booking/pkg/types"

// TokenValidator validates bearer tokens on protected routes
type TokenValidator interface {
	Authenticate(token string) (*types.Principal, error)
}

// RateLimiter decides whether a client key may make another request
type RateLimiter interface {
	Allow(key string) bool
}
