package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by TokenExpiry when the token is not a JWT or
// carries no exp claim.
var ErrOpaqueToken = errors.New("api: token has no readable expiry")

// TokenExpiry reads the exp claim without verifying the signature. The
// client never holds the signing key; the result is for display only and the
// server remains the authority on validity.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, ErrOpaqueToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrOpaqueToken
	}
	return claims.ExpiresAt.Time, nil
}
