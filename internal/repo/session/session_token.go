package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a JWT-shaped token without verifying
// its signature. Opaque tokens, or JWTs without exp, return false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

// TokenExpired reports whether token is a JWT whose exp lies before now.
func TokenExpired(token string, now time.Time) bool {
	expiry, ok := TokenExpiry(token)

	return ok && !now.Before(expiry)
}
