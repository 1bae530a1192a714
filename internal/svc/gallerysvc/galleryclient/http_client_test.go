package galleryclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/mesto/internal/domain"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
	"github.com/mkrupp/mesto/internal/repo/session"
	"github.com/mkrupp/mesto/internal/svc/gallerysvc/galleryclient"
)

const populatedCard = `{
	"_id": "c1",
	"name": "Baikal",
	"link": "https://example.com/baikal.jpg",
	"owner": {"_id": "u1", "name": "Jacques"},
	"likes": [{"_id": "u2"}, "u3"],
	"createdAt": "2024-05-01T10:00:00Z"
}`

func newClient(t *testing.T, token string, handler http.Handler) *galleryclient.HTTPClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return galleryclient.NewHTTPClient(galleryclient.HTTPClientConfig{
		JSONClientConfig: http_.JSONClientConfig{BaseURL: server.URL},
	}, session.NewMemoryStore(token), server.Client())
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()

	assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
}

func TestHTTPClient_NoTokenSkipsRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	client := newClient(t, "", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))

	_, err := client.GetInitialCards(context.Background())
	require.ErrorIs(t, err, domain.ErrNoAuthToken)
	assert.Zero(t, calls.Load())
}

func TestHTTPClient_Cards(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cards", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		_, _ = io.WriteString(w, "["+populatedCard+"]")
	})
	mux.HandleFunc("POST /cards", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)

		var in domain.NewCard
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		_ = http_.WriteJSON(w, http.StatusCreated, domain.Card{ID: "c9", Name: in.Name, Link: in.Link, Owner: "u1"})
	})
	mux.HandleFunc("DELETE /cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)

		if r.PathValue("id") != "c1" {
			http_.WriteError(w, http.StatusNotFound)

			return
		}

		_ = http_.WriteJSON(w, http.StatusOK, http_.ErrorResponse{Message: "deleted"})
	})

	client := newClient(t, "tok", mux)
	ctx := context.Background()

	cards, err := client.GetInitialCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, domain.UserID("u1"), cards[0].Owner)
	assert.Equal(t, []domain.UserID{"u2", "u3"}, cards[0].Likes)
	assert.True(t, cards[0].IsLikedBy("u3"))

	created, err := client.CreateCard(ctx, domain.NewCard{Name: "Elbrus", Link: "https://example.com/e.png"})
	require.NoError(t, err)
	assert.Equal(t, domain.CardID("c9"), created.ID)
	assert.Equal(t, "Elbrus", created.Name)

	require.NoError(t, client.DeleteCard(ctx, "c1"))

	err = client.DeleteCard(ctx, "missing")
	status, ok := domain.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)

	assert.ErrorIs(t, client.DeleteCard(ctx, ""), domain.ErrNoCardID)
}

func TestHTTPClient_ChangeLikeCardStatus(t *testing.T) {
	t.Parallel()

	var lastMethod atomic.Value

	mux := http.NewServeMux()
	likes := func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		lastMethod.Store(r.Method)

		card := domain.Card{ID: domain.CardID(r.PathValue("id"))}
		if r.Method == http.MethodPut {
			card.Likes = []domain.UserID{"u1"}
		}

		_ = http_.WriteJSON(w, http.StatusOK, card)
	}
	mux.HandleFunc("PUT /cards/{id}/likes", likes)
	mux.HandleFunc("DELETE /cards/{id}/likes", likes)

	client := newClient(t, "tok", mux)

	liked, err := client.ChangeLikeCardStatus(context.Background(), "c1", true)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, lastMethod.Load())
	assert.True(t, liked.IsLikedBy("u1"))

	unliked, err := client.ChangeLikeCardStatus(context.Background(), "c1", false)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, lastMethod.Load())
	assert.False(t, unliked.IsLikedBy("u1"))
}

func TestHTTPClient_Profile(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		_ = http_.WriteJSON(w, http.StatusOK, domain.User{ID: "u1", Name: "Jacques"})
	})
	mux.HandleFunc("PATCH /users/me", func(w http.ResponseWriter, r *http.Request) {
		var info domain.UserInfo
		require.NoError(t, json.NewDecoder(r.Body).Decode(&info))

		if info.Name == "" {
			http_.WriteError(w, http.StatusBadRequest)

			return
		}

		_ = http_.WriteJSON(w, http.StatusOK, domain.User{ID: "u1", Name: info.Name, About: info.About})
	})
	mux.HandleFunc("PATCH /users/me/avatar", func(w http.ResponseWriter, r *http.Request) {
		var avatar domain.UserAvatar
		require.NoError(t, json.NewDecoder(r.Body).Decode(&avatar))
		_ = http_.WriteJSON(w, http.StatusOK, domain.User{ID: "u1", Avatar: avatar.Avatar})
	})

	client := newClient(t, "tok", mux)
	ctx := context.Background()

	user, err := client.GetUserInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jacques", user.Name)

	user, err = client.SetUserInfo(ctx, domain.UserInfo{Name: "Jacques-Yves", About: "Explorer"})
	require.NoError(t, err)
	assert.Equal(t, "Explorer", user.About)

	_, err = client.SetUserInfo(ctx, domain.UserInfo{})
	assert.ErrorIs(t, err, domain.ErrHTTPStatus)

	user, err = client.SetUserAvatar(ctx, domain.UserAvatar{Avatar: "https://example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", user.Avatar)
}
