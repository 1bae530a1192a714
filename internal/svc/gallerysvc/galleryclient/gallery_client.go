package galleryclient

import (
	"context"

	"github.com/mkrupp/mesto/internal/domain"
)

// ResourceClient wraps the bearer-authenticated profile and card endpoints.
// Every call resolves the parsed JSON on 2xx and fails with a domain.APIError otherwise.
type ResourceClient interface {
	// GetUserInfo fetches the current user.
	GetUserInfo(ctx context.Context) (domain.User, error)

	// SetUserInfo updates name and about of the current user.
	SetUserInfo(ctx context.Context, info domain.UserInfo) (domain.User, error)

	// SetUserAvatar updates the avatar URL of the current user.
	SetUserAvatar(ctx context.Context, avatar domain.UserAvatar) (domain.User, error)

	// GetInitialCards lists the card feed, most recent first.
	GetInitialCards(ctx context.Context) ([]domain.Card, error)

	// CreateCard adds a card owned by the current user.
	CreateCard(ctx context.Context, card domain.NewCard) (domain.Card, error)

	// DeleteCard removes a card owned by the current user.
	DeleteCard(ctx context.Context, cardID domain.CardID) error

	// ChangeLikeCardStatus likes (like=true) or unlikes the card and returns it updated.
	ChangeLikeCardStatus(ctx context.Context, cardID domain.CardID, like bool) (domain.Card, error)
}
