package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkrupp/mesto/internal/domain"
	context_ "github.com/mkrupp/mesto/internal/infra/context"
	"github.com/mkrupp/mesto/internal/infra/logging"
)

// TokenValidator resolves a bearer token to the user it was issued for.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (domain.AuthToken, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(AuthorizationHeader)

	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// AuthorizingMiddleware rejects requests without a valid bearer token with 401.
// On success the token's user ID is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	validator TokenValidator,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			log.WarnContext(r.Context(), "no token provided")
			WriteError(w, http.StatusUnauthorized)

			return
		}

		authToken, err := validator.ValidateToken(r.Context(), token)
		if err != nil {
			log.WarnContext(r.Context(), "validate token failed", "error", err)
			WriteError(w, http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUserID(r.Context(), authToken.UserID)))
	})
}
