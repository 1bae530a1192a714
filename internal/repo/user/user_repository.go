package user

import (
	"context"

	"github.com/mkrupp/mesto/internal/domain"
)

// Repository defines the interface for user account persistence.
type Repository interface {
	// CreateUser adds a new account to the repository.
	// Returns ErrUserAlreadyExists if the email is already taken.
	CreateUser(ctx context.Context, account domain.UserAccount) error

	// GetUserByEmail retrieves an account by its email.
	// Returns ErrUserNotFound if no account uses the email.
	GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, bool, error)

	// GetUserByID retrieves an account by its ID.
	// Returns ErrUserNotFound if the ID is unknown.
	GetUserByID(ctx context.Context, id domain.UserID) (*domain.UserAccount, bool, error)

	// GetUsersByIDs resolves a set of IDs to profiles. Unknown IDs are skipped.
	GetUsersByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.User, error)

	// UpdateUserInfo sets name and about of a user and returns the updated profile.
	UpdateUserInfo(ctx context.Context, id domain.UserID, info domain.UserInfo) (domain.User, error)

	// UpdateUserAvatar sets the avatar of a user and returns the updated profile.
	UpdateUserAvatar(ctx context.Context, id domain.UserID, avatar domain.UserAvatar) (domain.User, error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
