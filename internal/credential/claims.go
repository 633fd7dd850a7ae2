package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of bearer token claims the client cares about.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token expired before now. Tokens without an
// expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes the token's claims without verifying its signature.
// The backend is the only party that can verify it.
func ParseClaims(token string) (Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("parse token claims: %w", err)
	}
	var claims Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
