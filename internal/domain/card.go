package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrCardNotFound is returned when a card does not exist.
	ErrCardNotFound = errors.New("card not found")
	// ErrCardNotOwned is returned when a user tries to delete someone else's card.
	ErrCardNotOwned = errors.New("card not owned by user")
	// ErrNoCardID is returned when a card id is required but not provided.
	ErrNoCardID = errors.New("no card id")
)

// CardID is the backend identifier of a card.
type CardID string

// String returns the string representation of the CardID.
func (id CardID) String() string {
	return string(id)
}

// Card is a single image card of the gallery feed.
//
// Cards are values: code holding a card list replaces elements instead of
// mutating them, so Likes must not be appended to in place.
type Card struct {
	ID        CardID    `json:"_id"`
	Name      string    `json:"name"`
	Link      string    `json:"link"`
	Owner     UserID    `json:"owner"`
	Likes     []UserID  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsLikedBy reports whether the given user is among the card's likes.
func (c Card) IsLikedBy(id UserID) bool {
	return slices.Contains(c.Likes, id)
}

// IsOwnedBy reports whether the card belongs to the given user.
func (c Card) IsOwnedBy(id UserID) bool {
	return c.Owner == id
}

// UnmarshalJSON implements json.Unmarshaler. Owner and likes may be
// populated user objects or bare ids.
func (c *Card) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        CardID    `json:"_id"`
		Name      string    `json:"name"`
		Link      string    `json:"link"`
		Owner     UserRef   `json:"owner"`
		Likes     []UserRef `json:"likes"`
		CreatedAt time.Time `json:"createdAt"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshal card: %w", err)
	}

	likes := make([]UserID, 0, len(wire.Likes))
	for _, ref := range wire.Likes {
		likes = append(likes, UserID(ref))
	}

	*c = Card{
		ID:        wire.ID,
		Name:      wire.Name,
		Link:      wire.Link,
		Owner:     UserID(wire.Owner),
		Likes:     likes,
		CreatedAt: wire.CreatedAt,
	}

	return nil
}

// NewCard is the body of a card creation request.
type NewCard struct {
	Name string `json:"name"`
	Link string `json:"link"`
}
