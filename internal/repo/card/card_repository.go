package card

import (
	"context"

	"github.com/mkrupp/mesto/internal/domain"
)

// Repository defines the interface for card persistence.
type Repository interface {
	// CreateCard stores a new card. Likes of the given card are ignored.
	CreateCard(ctx context.Context, card domain.Card) error

	// ListCards returns all cards, most recently created first.
	ListCards(ctx context.Context) ([]domain.Card, error)

	// GetCard retrieves a card by its ID.
	// Returns ErrCardNotFound if the ID is unknown.
	GetCard(ctx context.Context, id domain.CardID) (domain.Card, bool, error)

	// DeleteCard removes a card together with its likes.
	// Returns ErrCardNotFound if the ID is unknown.
	DeleteCard(ctx context.Context, id domain.CardID) error

	// SetLike adds (like=true) or removes the like of userID and returns the updated card.
	// Both directions are idempotent.
	SetLike(ctx context.Context, id domain.CardID, userID domain.UserID, like bool) (domain.Card, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
