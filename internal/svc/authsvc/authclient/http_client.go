package authclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
)

const (
	SignupPath = "/signup"
	SigninPath = "/signin"
	MePath     = "/users/me"
)

// HTTPClientConfig holds configuration for the HTTP auth client.
type HTTPClientConfig struct {
	http_.JSONClientConfig
}

// HTTPClient implements AuthClient against the gallery REST API.
type HTTPClient struct {
	api *http_.JSONClient
}

var _ AuthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, a client honoring the configured timeout is used.
func NewHTTPClient(cfg HTTPClientConfig, httpClient *http.Client) *HTTPClient {
	return &HTTPClient{
		api: http_.NewJSONClient(cfg.JSONClientConfig, httpClient, logging.GetLogger("svc.authsvc.http_client")),
	}
}

// Register implements AuthClient.Register with POST /signup.
func (hc *HTTPClient) Register(ctx context.Context, password, email string) (domain.User, error) {
	var user domain.User

	if err := hc.api.Do(ctx, http_.Request{
		Method: http.MethodPost,
		Path:   SignupPath,
		Body:   domain.Credentials{Password: password, Email: email},
	}, &user); err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}

	return user, nil
}

// Login implements AuthClient.Login with POST /signin.
func (hc *HTTPClient) Login(ctx context.Context, password, email string) (domain.AuthTokenResponse, error) {
	var resp domain.AuthTokenResponse

	if err := hc.api.Do(ctx, http_.Request{
		Method: http.MethodPost,
		Path:   SigninPath,
		Body:   domain.Credentials{Password: password, Email: email},
	}, &resp); err != nil {
		return domain.AuthTokenResponse{}, fmt.Errorf("login: %w", err)
	}

	return resp, nil
}

// TokenValid implements AuthClient.TokenValid with GET /users/me.
func (hc *HTTPClient) TokenValid(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrNoAuthToken
	}

	var user domain.User

	if err := hc.api.Do(ctx, http_.Request{
		Method: http.MethodGet,
		Path:   MePath,
		Token:  token,
	}, &user); err != nil {
		return domain.User{}, fmt.Errorf("token valid: %w", err)
	}

	return user, nil
}
