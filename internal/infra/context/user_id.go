package context

import (
	"context"

	"github.com/mkrupp/mesto/internal/domain"
)

const contextKeyUserID = contextKey("userID")

// UserIDFromContext extracts the authenticated user's ID from the context.
func UserIDFromContext(ctx context.Context) (domain.UserID, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(domain.UserID)

	return userID, ok
}

// WithUserID creates a new context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}
