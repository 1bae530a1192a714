package authsvc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/mesto/internal/domain"
)

// IssueToken signs an HS256 JWT for userID, valid for ttl from now.
func IssueToken(userID domain.UserID, now time.Time, ttl time.Duration, key []byte) (string, domain.AuthToken, error) {
	token := domain.AuthToken{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	//nolint:exhaustruct
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Unix(token.IssuedAt, 0)),
		ExpiresAt: jwt.NewNumericDate(time.Unix(token.ExpiresAt, 0)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", domain.AuthToken{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, token, nil
}

// ValidateToken validates an authentication token by:
// - Verifying the HS256 signature
// - Requiring a subject and an expiry in the future
// Returns domain.ErrInvalidAuthToken for any validation failure.
func ValidateToken(tokenString string, key []byte) (domain.AuthToken, error) {
	claims := jwt.RegisteredClaims{} //nolint:exhaustruct

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.AuthToken{}, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("parse token: %w", err))
	}

	if claims.Subject == "" {
		return domain.AuthToken{}, domain.ErrInvalidAuthToken
	}

	token := domain.AuthToken{
		UserID:    domain.UserID(claims.Subject),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}

	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Unix()
	}

	return token, nil
}
