package gallerysvc_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/repo/card"
	"github.com/mkrupp/mesto/internal/repo/user"
	"github.com/mkrupp/mesto/internal/svc/gallerysvc"
)

func newGalleryService(t *testing.T) (*gallerysvc.GalleryService, user.Repository) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "gallerysvc.db")

	users, err := user.NewSQLiteUserRepository(user.SQLiteUserRepositoryConfig{DatabasePath: dbPath})
	require.NoError(t, err)

	svc, err := gallerysvc.NewGalleryService(
		func() (user.Repository, error) { return users, nil },
		card.SQLiteCardRepositoryFactory(card.SQLiteCardRepositoryConfig{DatabasePath: dbPath}),
		gallerysvc.GalleryConfig{MinTextLength: 2, MaxTextLength: 30},
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = svc.Close() })

	for _, id := range []string{"u1", "u2"} {
		require.NoError(t, users.CreateUser(context.Background(), domain.UserAccount{
			User: domain.User{
				ID:    domain.UserID(id),
				Name:  "user " + id,
				About: "about " + id,
				Email: id + "@example.com",
			},
			PasswordHash: []byte("hash"),
		}))
	}

	return svc, users
}

func TestGalleryService_Cards(t *testing.T) {
	t.Parallel()

	svc, _ := newGalleryService(t)
	ctx := context.Background()

	first, err := svc.CreateCard(ctx, "u1", domain.NewCard{Name: "Baikal", Link: "https://example.com/b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "user u1", first.Owner.Name)
	assert.Empty(t, first.Owner.Email)
	assert.Empty(t, first.Likes)

	second, err := svc.CreateCard(ctx, "u2", domain.NewCard{Name: "Elbrus", Link: "https://example.com/e.jpg"})
	require.NoError(t, err)

	cards, err := svc.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, second.ID, cards[0].ID)
	assert.Equal(t, first.ID, cards[1].ID)

	liked, err := svc.SetLike(ctx, "u2", first.ID, true)
	require.NoError(t, err)
	require.Len(t, liked.Likes, 1)
	assert.Equal(t, "user u2", liked.Likes[0].Name)

	_, err = svc.DeleteCard(ctx, "u2", first.ID)
	require.ErrorIs(t, err, domain.ErrCardNotOwned)

	deleted, err := svc.DeleteCard(ctx, "u1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, deleted.ID)

	_, err = svc.DeleteCard(ctx, "u1", first.ID)
	require.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestGalleryService_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newGalleryService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{
			name: "card name too short",
			call: func() error {
				_, err := svc.CreateCard(ctx, "u1", domain.NewCard{Name: "B", Link: "https://example.com/b.jpg"})

				return err
			},
			want: gallerysvc.ErrInvalidLength,
		},
		{
			name: "card link not a url",
			call: func() error {
				_, err := svc.CreateCard(ctx, "u1", domain.NewCard{Name: "Baikal", Link: "b.jpg"})

				return err
			},
			want: gallerysvc.ErrInvalidURL,
		},
		{
			name: "card link with ftp scheme",
			call: func() error {
				_, err := svc.CreateCard(ctx, "u1", domain.NewCard{Name: "Baikal", Link: "ftp://example.com/b.jpg"})

				return err
			},
			want: gallerysvc.ErrInvalidURL,
		},
		{
			name: "about too long",
			call: func() error {
				_, err := svc.UpdateUserInfo(ctx, "u1", domain.UserInfo{
					Name:  "Jacques",
					About: "an explorer of the deep blue sea and beyond",
				})

				return err
			},
			want: gallerysvc.ErrInvalidLength,
		},
		{
			name: "avatar not a url",
			call: func() error {
				_, err := svc.UpdateUserAvatar(ctx, "u1", domain.UserAvatar{Avatar: "avatar.png"})

				return err
			},
			want: gallerysvc.ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.call()
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGalleryService_Profile(t *testing.T) {
	t.Parallel()

	svc, _ := newGalleryService(t)
	ctx := context.Background()

	updated, err := svc.UpdateUserInfo(ctx, "u1", domain.UserInfo{Name: "Жак-Ив", About: "Исследователь"})
	require.NoError(t, err)
	assert.Equal(t, "Жак-Ив", updated.Name)

	updated, err = svc.UpdateUserAvatar(ctx, "u1", domain.UserAvatar{Avatar: "https://example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", updated.Avatar)

	got, err := svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Equal(t, "u1@example.com", got.Email)

	_, err = svc.GetUser(ctx, "u404")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
