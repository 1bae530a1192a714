package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUserAlreadyExists is returned when trying to register an already taken email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the email/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserID is the backend identifier of a user.
type UserID string

// String returns the string representation of the UserID.
func (id UserID) String() string {
	return string(id)
}

// User is a gallery profile as served by /users/me.
type User struct {
	ID     UserID `json:"_id"`    // Backend identifier
	Name   string `json:"name"`   // Display name
	About  string `json:"about"`  // Short bio
	Avatar string `json:"avatar"` // Avatar image URL
	Email  string `json:"email"`  // Login email
}

// IsZero reports whether no user has been loaded.
func (u User) IsZero() bool {
	return u.ID == ""
}

// UserAccount is a User together with the backend-only credential data.
type UserAccount struct {
	User

	PasswordHash []byte // bcrypt hash
	CreatedAt    int64  // Unix timestamp of registration
}

// UserInfo is the body of a profile update.
type UserInfo struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

// UserAvatar is the body of an avatar update.
type UserAvatar struct {
	Avatar string `json:"avatar"`
}

// UserRef decodes a user reference that is either a bare id string or a
// populated user object.
type UserRef UserID

// UnmarshalJSON implements json.Unmarshaler.
func (ref *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("unmarshal user id: %w", err)
		}

		*ref = UserRef(id)

		return nil
	}

	var user struct {
		ID string `json:"_id"`
	}

	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("unmarshal user object: %w", err)
	}

	*ref = UserRef(user.ID)

	return nil
}
