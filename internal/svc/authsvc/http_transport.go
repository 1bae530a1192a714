package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// MaxBodySize limits the size of request bodies in bytes.
	MaxBodySize int64 `env:"MAX_BODY_SIZE" default:"65536"`
}

// HTTPTransport handles HTTP requests for the authentication service.
// It provides the signup and signin endpoints.
type HTTPTransport struct {
	authSvc *AuthService
	router  *mux.Router
	log     logging.Logger
	cfg     HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires an AuthService for handling authentication operations.
func NewHTTPTransport(
	authSvc *AuthService,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc: authSvc,
		router:  mux.NewRouter(),
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
	}
	ht.Routes(ht.router)

	return ht
}

// Routes registers the auth service endpoints on router:
// - POST /signup: Register a new user
// - POST /signin: Login and get an auth token.
func (ht *HTTPTransport) Routes(router *mux.Router) {
	router.HandleFunc("/signup", ht.HandleSignup).Methods(http.MethodPost)
	router.HandleFunc("/signin", ht.HandleSignin).Methods(http.MethodPost)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.router.ServeHTTP(w, r)
}

func (ht *HTTPTransport) decodeCredentials(w http.ResponseWriter, r *http.Request) (domain.Credentials, error) {
	var creds domain.Credentials

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, ht.cfg.MaxBodySize)).Decode(&creds); err != nil {
		http_.WriteError(w, http.StatusBadRequest)

		return domain.Credentials{}, fmt.Errorf("decode body: %w", err)
	}

	return creds, nil
}

// HandleSignup processes user registration requests.
// Expects a JSON body {password, email}; answers 201 with the new user.
func (ht *HTTPTransport) HandleSignup(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSignup(w, r)
}

func (ht *HTTPTransport) handleSignup(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	creds, err := ht.decodeCredentials(w, r)
	if err != nil {
		return err
	}

	log = log.With(logging.Group("user", "email", creds.Email))

	user, err := ht.authSvc.RegisterUser(r.Context(), creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			http_.WriteError(w, http.StatusBadRequest)
		case errors.Is(err, domain.ErrUserAlreadyExists):
			http_.WriteError(w, http.StatusConflict)
		default:
			http_.WriteError(w, http.StatusInternalServerError)
		}

		return fmt.Errorf("register user: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusCreated, user); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleSignin processes user login requests.
// Expects a JSON body {password, email}; answers with {token}.
func (ht *HTTPTransport) HandleSignin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSignin(w, r)
}

func (ht *HTTPTransport) handleSignin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	creds, err := ht.decodeCredentials(w, r)
	if err != nil {
		return err
	}

	log = log.With(logging.Group("user", "email", creds.Email))

	token, err := ht.authSvc.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			http_.WriteError(w, http.StatusBadRequest)
		case errors.Is(err, domain.ErrInvalidCredentials):
			http_.WriteError(w, http.StatusUnauthorized)
		default:
			http_.WriteError(w, http.StatusInternalServerError)
		}

		return fmt.Errorf("login user: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, domain.AuthTokenResponse{Token: token}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
