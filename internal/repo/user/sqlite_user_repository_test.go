package user_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/repo/user"
)

func newRepo(t *testing.T) *user.SQLiteUserRepository {
	t.Helper()

	repo, err := user.NewSQLiteUserRepository(user.SQLiteUserRepositoryConfig{
		DatabasePath: filepath.Join(t.TempDir(), "storage", "users.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func account(id, email string) domain.UserAccount {
	return domain.UserAccount{
		User: domain.User{
			ID:     domain.UserID(id),
			Name:   "Jacques",
			About:  "Explorer",
			Avatar: "https://example.com/avatar.png",
			Email:  email,
		},
		PasswordHash: []byte("hash"),
	}
}

func TestSQLiteUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, account("u1", "jacques@example.com")))

	got, ok, err := repo.GetUserByEmail(ctx, "jacques@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.UserID("u1"), got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
	assert.NotZero(t, got.CreatedAt)

	got, ok, err = repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jacques@example.com", got.Email)

	_, ok, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.False(t, ok)

	_, _, err = repo.GetUserByID(ctx, "u404")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSQLiteUserRepository_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, account("u1", "jacques@example.com")))

	err := repo.CreateUser(ctx, account("u2", "JACQUES@example.com"))
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	err = repo.CreateUser(ctx, account("u1", "other@example.com"))
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestSQLiteUserRepository_Update(t *testing.T) {
	t.Parallel()

	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, account("u1", "jacques@example.com")))

	updated, err := repo.UpdateUserInfo(ctx, "u1", domain.UserInfo{Name: "J-Y", About: "Diver"})
	require.NoError(t, err)
	assert.Equal(t, "J-Y", updated.Name)
	assert.Equal(t, "Diver", updated.About)
	assert.Equal(t, "https://example.com/avatar.png", updated.Avatar)

	updated, err = repo.UpdateUserAvatar(ctx, "u1", domain.UserAvatar{Avatar: "https://example.com/new.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new.png", updated.Avatar)
	assert.Equal(t, "J-Y", updated.Name)

	_, err = repo.UpdateUserInfo(ctx, "u404", domain.UserInfo{Name: "x", About: "y"})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSQLiteUserRepository_GetUsersByIDs(t *testing.T) {
	t.Parallel()

	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, account("u1", "a@example.com")))
	require.NoError(t, repo.CreateUser(ctx, account("u2", "b@example.com")))

	users, err := repo.GetUsersByIDs(ctx, []domain.UserID{"u1", "u2", "u404"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "b@example.com", users["u2"].Email)

	users, err = repo.GetUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
