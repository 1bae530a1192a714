package gallerysvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrupp/mesto/internal/domain"
	context_ "github.com/mkrupp/mesto/internal/infra/context"
	"github.com/mkrupp/mesto/internal/infra/logging"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// URLCardIDParam is the URL parameter name for card IDs.
	// Default is "card_id".
	URLCardIDParam string `env:"URL_CARD_ID_PARAM" default:"card_id"`

	// MaxBodySize limits the size of request bodies in bytes.
	MaxBodySize int64 `env:"MAX_BODY_SIZE" default:"65536"`
}

// HTTPTransport handles HTTP requests for the gallery service.
// Every endpoint requires a valid bearer token.
type HTTPTransport struct {
	gallerySvc *GalleryService
	validator  http_.TokenValidator
	router     *mux.Router
	log        logging.Logger
	cfg        HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires a GalleryService for the business logic and a TokenValidator for authentication.
func NewHTTPTransport(
	gallerySvc *GalleryService,
	validator http_.TokenValidator,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		gallerySvc: gallerySvc,
		validator:  validator,
		router:     mux.NewRouter(),
		log:        logging.GetLogger("svc.gallerysvc.http_transport"),
		cfg:        cfg,
	}
	ht.Routes(ht.router)

	return ht
}

// Routes registers the gallery endpoints on router:
// - GET /users/me, PATCH /users/me, PATCH /users/me/avatar: profile
// - GET /cards, POST /cards, DELETE /cards/{id}: cards
// - PUT /cards/{id}/likes, DELETE /cards/{id}/likes: likes
// Routes are protected by authentication middleware.
func (ht *HTTPTransport) Routes(router *mux.Router) {
	cardPath := fmt.Sprintf("/cards/{%s}", ht.cfg.URLCardIDParam)

	protected := router.NewRoute().Subrouter()
	protected.Use(func(next http.Handler) http.Handler {
		return http_.AuthorizingMiddleware(next, ht.validator, ht.log)
	})

	protected.HandleFunc("/users/me", ht.serve("get user", ht.handleGetUser)).Methods(http.MethodGet)
	protected.HandleFunc("/users/me", ht.serve("update user info", ht.handleUpdateUserInfo)).Methods(http.MethodPatch)
	protected.HandleFunc("/users/me/avatar", ht.serve("update user avatar", ht.handleUpdateUserAvatar)).
		Methods(http.MethodPatch)
	protected.HandleFunc("/cards", ht.serve("list cards", ht.handleListCards)).Methods(http.MethodGet)
	protected.HandleFunc("/cards", ht.serve("create card", ht.handleCreateCard)).Methods(http.MethodPost)
	protected.HandleFunc(cardPath, ht.serve("delete card", ht.handleDeleteCard)).Methods(http.MethodDelete)
	protected.HandleFunc(cardPath+"/likes", ht.serve("like card", ht.handleLike(true))).Methods(http.MethodPut)
	protected.HandleFunc(cardPath+"/likes", ht.serve("unlike card", ht.handleLike(false))).Methods(http.MethodDelete)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.router.ServeHTTP(w, r)
}

// handlerFunc answers a request of an authenticated user with a status and a JSON body.
type handlerFunc func(r *http.Request, userID domain.UserID) (int, any, error)

func (ht *HTTPTransport) serve(action string, handler handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = ht.handle(w, r, action, handler)
	}
}

func (ht *HTTPTransport) handle(w http.ResponseWriter, r *http.Request, action string, handler handlerFunc) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, action+" failed", "error", err)
		} else {
			log.DebugContext(ctx, action+" done")
		}
	}(r.Context())

	userID, ok := context_.UserIDFromContext(r.Context())
	if !ok {
		http_.WriteError(w, http.StatusUnauthorized)

		return domain.ErrUnauthorized
	}

	status, body, err := handler(r, userID)
	if err != nil {
		http_.WriteError(w, statusFor(err))

		return fmt.Errorf("%s: %w", action, err)
	}

	if err := http_.WriteJSON(w, status, body); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCardNotOwned):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCardNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (ht *HTTPTransport) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, ht.cfg.MaxBodySize)).Decode(v); err != nil {
		return errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode body: %w", err))
	}

	return nil
}

func (ht *HTTPTransport) cardID(r *http.Request) (domain.CardID, error) {
	cardID := mux.Vars(r)[ht.cfg.URLCardIDParam]
	if cardID == "" {
		return "", errors.Join(domain.ErrInvalidInput, domain.ErrNoCardID)
	}

	return domain.CardID(cardID), nil
}

func (ht *HTTPTransport) handleGetUser(r *http.Request, userID domain.UserID) (int, any, error) {
	user, err := ht.gallerySvc.GetUser(r.Context(), userID)

	return http.StatusOK, user, err
}

func (ht *HTTPTransport) handleUpdateUserInfo(r *http.Request, userID domain.UserID) (int, any, error) {
	var info domain.UserInfo
	if err := ht.decode(r, &info); err != nil {
		return 0, nil, err
	}

	user, err := ht.gallerySvc.UpdateUserInfo(r.Context(), userID, info)

	return http.StatusOK, user, err
}

func (ht *HTTPTransport) handleUpdateUserAvatar(r *http.Request, userID domain.UserID) (int, any, error) {
	var avatar domain.UserAvatar
	if err := ht.decode(r, &avatar); err != nil {
		return 0, nil, err
	}

	user, err := ht.gallerySvc.UpdateUserAvatar(r.Context(), userID, avatar)

	return http.StatusOK, user, err
}

func (ht *HTTPTransport) handleListCards(r *http.Request, _ domain.UserID) (int, any, error) {
	cards, err := ht.gallerySvc.ListCards(r.Context())

	return http.StatusOK, cards, err
}

func (ht *HTTPTransport) handleCreateCard(r *http.Request, userID domain.UserID) (int, any, error) {
	var newCard domain.NewCard
	if err := ht.decode(r, &newCard); err != nil {
		return 0, nil, err
	}

	created, err := ht.gallerySvc.CreateCard(r.Context(), userID, newCard)

	return http.StatusCreated, created, err
}

func (ht *HTTPTransport) handleDeleteCard(r *http.Request, userID domain.UserID) (int, any, error) {
	cardID, err := ht.cardID(r)
	if err != nil {
		return 0, nil, err
	}

	deleted, err := ht.gallerySvc.DeleteCard(r.Context(), userID, cardID)

	return http.StatusOK, deleted, err
}

func (ht *HTTPTransport) handleLike(like bool) handlerFunc {
	return func(r *http.Request, userID domain.UserID) (int, any, error) {
		cardID, err := ht.cardID(r)
		if err != nil {
			return 0, nil, err
		}

		updated, err := ht.gallerySvc.SetLike(r.Context(), userID, cardID, like)

		return http.StatusOK, updated, err
	}
}
