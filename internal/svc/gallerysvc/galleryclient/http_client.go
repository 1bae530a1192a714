package galleryclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
	"github.com/mkrupp/mesto/internal/repo/session"
)

const (
	MePath       = "/users/me"
	MeAvatarPath = "/users/me/avatar"
	CardsPath    = "/cards"
)

// HTTPClientConfig holds configuration for the HTTP resource client.
type HTTPClientConfig struct {
	http_.JSONClientConfig
}

// HTTPClient implements ResourceClient against the gallery REST API.
// The bearer token is read from the session store before each call.
type HTTPClient struct {
	api      *http_.JSONClient
	sessions session.Store
}

var _ ResourceClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, a client honoring the configured timeout is used.
func NewHTTPClient(cfg HTTPClientConfig, sessions session.Store, httpClient *http.Client) *HTTPClient {
	return &HTTPClient{
		api:      http_.NewJSONClient(cfg.JSONClientConfig, httpClient, logging.GetLogger("svc.gallerysvc.http_client")),
		sessions: sessions,
	}
}

func (hc *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	token, ok, err := hc.sessions.Get(ctx)
	if err != nil {
		return fmt.Errorf("get session token: %w", err)
	} else if !ok || token == "" {
		return domain.ErrNoAuthToken
	}

	//nolint:wrapcheck
	return hc.api.Do(ctx, http_.Request{
		Method: method,
		Path:   path,
		Token:  token,
		Body:   body,
	}, out)
}

func cardPath(cardID domain.CardID) string {
	return CardsPath + "/" + url.PathEscape(cardID.String())
}

// GetUserInfo implements ResourceClient.GetUserInfo with GET /users/me.
func (hc *HTTPClient) GetUserInfo(ctx context.Context) (domain.User, error) {
	var user domain.User

	if err := hc.do(ctx, http.MethodGet, MePath, nil, &user); err != nil {
		return domain.User{}, fmt.Errorf("get user info: %w", err)
	}

	return user, nil
}

// SetUserInfo implements ResourceClient.SetUserInfo with PATCH /users/me.
func (hc *HTTPClient) SetUserInfo(ctx context.Context, info domain.UserInfo) (domain.User, error) {
	var user domain.User

	if err := hc.do(ctx, http.MethodPatch, MePath, info, &user); err != nil {
		return domain.User{}, fmt.Errorf("set user info: %w", err)
	}

	return user, nil
}

// SetUserAvatar implements ResourceClient.SetUserAvatar with PATCH /users/me/avatar.
func (hc *HTTPClient) SetUserAvatar(ctx context.Context, avatar domain.UserAvatar) (domain.User, error) {
	var user domain.User

	if err := hc.do(ctx, http.MethodPatch, MeAvatarPath, avatar, &user); err != nil {
		return domain.User{}, fmt.Errorf("set user avatar: %w", err)
	}

	return user, nil
}

// GetInitialCards implements ResourceClient.GetInitialCards with GET /cards.
func (hc *HTTPClient) GetInitialCards(ctx context.Context) ([]domain.Card, error) {
	var cards []domain.Card

	if err := hc.do(ctx, http.MethodGet, CardsPath, nil, &cards); err != nil {
		return nil, fmt.Errorf("get initial cards: %w", err)
	}

	if cards == nil {
		cards = []domain.Card{}
	}

	return cards, nil
}

// CreateCard implements ResourceClient.CreateCard with POST /cards.
func (hc *HTTPClient) CreateCard(ctx context.Context, card domain.NewCard) (domain.Card, error) {
	var created domain.Card

	if err := hc.do(ctx, http.MethodPost, CardsPath, card, &created); err != nil {
		return domain.Card{}, fmt.Errorf("create card: %w", err)
	}

	return created, nil
}

// DeleteCard implements ResourceClient.DeleteCard with DELETE /cards/{id}.
func (hc *HTTPClient) DeleteCard(ctx context.Context, cardID domain.CardID) error {
	if cardID == "" {
		return domain.ErrNoCardID
	}

	if err := hc.do(ctx, http.MethodDelete, cardPath(cardID), nil, nil); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	return nil
}

// ChangeLikeCardStatus implements ResourceClient.ChangeLikeCardStatus with
// PUT (like) or DELETE (unlike) /cards/{id}/likes.
func (hc *HTTPClient) ChangeLikeCardStatus(
	ctx context.Context,
	cardID domain.CardID,
	like bool,
) (domain.Card, error) {
	if cardID == "" {
		return domain.Card{}, domain.ErrNoCardID
	}

	method := http.MethodDelete
	if like {
		method = http.MethodPut
	}

	var card domain.Card

	if err := hc.do(ctx, method, cardPath(cardID)+"/likes", nil, &card); err != nil {
		return domain.Card{}, fmt.Errorf("change like card status: %w", err)
	}

	return card, nil
}
