package authclient

import (
	"context"

	"github.com/mkrupp/mesto/internal/domain"
)

// AuthClient wraps the signup and signin endpoints and the token validation call.
type AuthClient interface {
	// Register creates an account. No auth header is sent.
	Register(ctx context.Context, password, email string) (domain.User, error)

	// Login exchanges credentials for a token. No auth header is sent.
	// A 2xx answer may still carry an empty token; callers must check.
	Login(ctx context.Context, password, email string) (domain.AuthTokenResponse, error)

	// TokenValid fetches the current user with the given bearer token.
	TokenValid(ctx context.Context, token string) (domain.User, error)
}
