package domain

import "errors"

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token's signature is invalid or it has expired.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrUnauthorized is returned when the authenticated user lacks permission.
	ErrUnauthorized = errors.New("unauthorized")
)

// Credentials is the body of the signup and signin requests.
type Credentials struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

// AuthToken is the validated content of a bearer token.
type AuthToken struct {
	UserID    UserID // Subject of the token
	IssuedAt  int64  // Unix timestamp when the token was created
	ExpiresAt int64  // Unix timestamp when the token expires
}

// AuthTokenResponse is the body of a successful signin.
// Token may be empty if the backend answers 2xx without issuing one.
type AuthTokenResponse struct {
	Token string `json:"token"`
}
