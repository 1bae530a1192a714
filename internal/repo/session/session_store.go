package session

import (
	"context"
)

// DefaultKey is the well-known key the bearer token is stored under.
const DefaultKey = "token"

// Store persists the opaque bearer token of the current session.
type Store interface {
	// Get returns the stored token and true, or "" and false if none is stored.
	Get(ctx context.Context) (string, bool, error)

	// Set stores the token, replacing any previous one.
	Set(ctx context.Context, token string) error

	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreFactory is a function that creates a new Store instance.
type StoreFactory func() (Store, error)
