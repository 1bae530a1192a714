package appsvc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkrupp/mesto/internal/domain"
	context_ "github.com/mkrupp/mesto/internal/infra/context"
	"github.com/mkrupp/mesto/internal/infra/logging"
	"github.com/mkrupp/mesto/internal/repo/session"
	"github.com/mkrupp/mesto/internal/svc/authsvc/authclient"
	"github.com/mkrupp/mesto/internal/svc/gallerysvc/galleryclient"
	"github.com/mkrupp/mesto/internal/svc/imagesvc"
)

// ErrInitialLoad is returned by Login when the token was accepted but the
// profile or the card feed could not be loaded.
var ErrInitialLoad = errors.New("initial load failed")

// Listener receives a snapshot after every state change.
type Listener func(State)

// AppController owns the session state machine and the view state.
// Handlers block on at most one round of network calls and never hold the
// state lock across them, so overlapping calls resolve in arrival order.
type AppController struct {
	auth      authclient.AuthClient
	resources galleryclient.ResourceClient
	sessions  session.Store
	images    imagesvc.ImageService
	cfg       AppConfig
	log       logging.Logger
	now       func() time.Time

	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewAppController creates a new AppController in the unauthenticated state.
// images may be nil, in which case card links are never probed.
func NewAppController(
	cfg AppConfig,
	auth authclient.AuthClient,
	resources galleryclient.ResourceClient,
	sessions session.Store,
	images imagesvc.ImageService,
) *AppController {
	return &AppController{
		auth:      auth,
		resources: resources,
		sessions:  sessions,
		images:    images,
		cfg:       cfg,
		log:       logging.GetLogger("svc.appsvc.app_controller"),
		now:       time.Now,
		state:     State{Route: RouteSignIn}, //nolint:exhaustruct
		listeners: map[int]Listener{},
	}
}

// State returns a snapshot of the current view state.
func (c *AppController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.clone()
}

// Subscribe registers a listener and returns a function removing it.
func (c *AppController) Subscribe(listener Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.listeners, id)
	}
}

func (c *AppController) update(mutate func(*State)) {
	c.mu.Lock()
	mutate(&c.state)

	snapshot := c.state.clone()
	listeners := make([]Listener, 0, len(c.listeners))

	for _, listener := range c.listeners {
		listeners = append(listeners, listener)
	}
	c.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

// Init restores a persisted session. Without a stored token no network call is made.
// A stored token is trusted until TokenValid disproves it.
func (c *AppController) Init(ctx context.Context) (err error) {
	ctx, _ = context_.EnsureTraceID(ctx)
	log := c.log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "session restore failed", "error", err)
		} else {
			log.DebugContext(ctx, "session restored", logging.Group("session", "logged_in", c.State().LoggedIn))
		}
	}()

	token, ok, err := c.sessions.Get(ctx)
	if err != nil {
		c.update(resetSession)

		return fmt.Errorf("get session token: %w", err)
	}

	if !ok {
		c.update(resetSession)

		return nil
	}

	if session.TokenExpired(token, c.now()) {
		log.InfoContext(ctx, "stored token expired")

		return c.invalidateSession(ctx)
	}

	c.update(func(s *State) {
		s.LoggedIn = true
		s.Session = SessionAuthenticating
		s.Route = RouteMain
	})

	user, err := c.auth.TokenValid(ctx, token)
	if err != nil {
		if domain.IsUnauthorized(err) {
			if clearErr := c.invalidateSession(ctx); clearErr != nil {
				return fmt.Errorf("token valid: %w", clearErr)
			}

			return fmt.Errorf("token valid: %w", err)
		}

		c.update(resetSession)

		return fmt.Errorf("token valid: %w", err)
	}

	c.update(func(s *State) {
		s.CurrentUser = user
		s.Email = user.Email
		s.Session = SessionAuthenticated
	})

	return c.loadData(ctx, false)
}

// loadData fetches the card feed, together with the current user when
// withUser is set. Results are applied only if the session is still
// authenticated. The recorded email is never touched.
func (c *AppController) loadData(ctx context.Context, withUser bool) (err error) {
	log := c.log.With(logging.Group("load", "user", withUser))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "initial load failed", "error", err)
		} else {
			log.DebugContext(ctx, "initial load done")
		}
	}()

	var (
		user  domain.User
		cards []domain.Card
	)

	group, groupCtx := errgroup.WithContext(ctx)

	if withUser {
		group.Go(func() (err error) {
			user, err = c.resources.GetUserInfo(groupCtx)

			return err //nolint:wrapcheck
		})
	}

	group.Go(func() (err error) {
		cards, err = c.resources.GetInitialCards(groupCtx)

		return err //nolint:wrapcheck
	})

	if err := group.Wait(); err != nil {
		if domain.IsUnauthorized(err) {
			_ = c.invalidateSession(ctx)
		}

		return fmt.Errorf("load data: %w", err)
	}

	c.update(func(s *State) {
		if !s.LoggedIn {
			return
		}

		if withUser {
			s.CurrentUser = user
		}

		s.Cards = cards
	})

	return nil
}

// invalidateSession drops a disproven token and returns to the sign-in route.
func (c *AppController) invalidateSession(ctx context.Context) error {
	c.update(resetSession)

	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}

	return nil
}

func resetSession(s *State) {
	s.LoggedIn = false
	s.Session = SessionUnauthenticated
	s.Email = ""
	s.CurrentUser = domain.User{}
	s.Cards = nil
	s.SelectedCard = nil
	s.Route = s.Route.resolve(false)
}

// Navigate moves to route, applying the session guards, and returns the
// route actually shown.
func (c *AppController) Navigate(route Route) Route {
	var resolved Route

	c.update(func(s *State) {
		s.Route = route.resolve(s.LoggedIn)
		resolved = s.Route
	})

	return resolved
}

// Register creates an account. The info tooltip always opens afterwards,
// reporting success (and moving to sign-in) or failure.
func (c *AppController) Register(ctx context.Context, password, email string) (err error) {
	ctx, _ = context_.EnsureTraceID(ctx)
	log := c.log.With(logging.Group("user", "email", email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "registration failed", "error", err)
		} else {
			log.DebugContext(ctx, "registered")
		}
	}()

	_, err = c.auth.Register(ctx, password, email)

	c.update(func(s *State) {
		if err != nil {
			s.Status = domain.FailureMessage(domain.MessageSomethingWent)
		} else {
			s.Status = domain.SuccessMessage(domain.MessageRegistered)
			s.Route = RouteSignIn.resolve(s.LoggedIn)
		}

		s.Popups.InfoTooltip = true
	})

	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	return nil
}

// Login exchanges credentials for a token, persists it and loads the feed.
// A failed exchange leaves the session untouched. Either failure opens the
// info tooltip. A failed load after a successful exchange is reported as
// ErrInitialLoad and keeps the session unless the backend rejected the token.
func (c *AppController) Login(ctx context.Context, password, email string) error {
	ctx, _ = context_.EnsureTraceID(ctx)

	if err := c.login(ctx, password, email); err != nil {
		return err
	}

	if err := c.loadData(ctx, true); err != nil {
		c.fail()

		return fmt.Errorf("%w: %w", ErrInitialLoad, err)
	}

	return nil
}

func (c *AppController) login(ctx context.Context, password, email string) (err error) {
	log := c.log.With(logging.Group("user", "email", email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "logged in")
		}
	}()

	c.update(func(s *State) {
		if s.Session == SessionUnauthenticated {
			s.Session = SessionAuthenticating
		}
	})

	resp, err := c.auth.Login(ctx, password, email)
	if err == nil && resp.Token == "" {
		err = domain.NewLogicalError("login", domain.ErrNoAuthToken)
	}

	if err == nil {
		if setErr := c.sessions.Set(ctx, resp.Token); setErr != nil {
			err = fmt.Errorf("set session token: %w", setErr)
		}
	}

	if err != nil {
		c.update(func(s *State) {
			if !s.LoggedIn {
				s.Session = SessionUnauthenticated
			}
		})
		c.fail()

		return fmt.Errorf("login: %w", err)
	}

	c.update(func(s *State) {
		s.LoggedIn = true
		s.Session = SessionAuthenticated
		s.Email = email
		s.Route = RouteMain
	})

	return nil
}

// SignOut ends the session. Calling it while signed out is a no-op apart
// from clearing the (absent) token again.
func (c *AppController) SignOut(ctx context.Context) (err error) {
	ctx, _ = context_.EnsureTraceID(ctx)
	log := c.log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "sign out failed", "error", err)
		} else {
			log.DebugContext(ctx, "signed out")
		}
	}()

	c.update(func(s *State) {
		resetSession(s)
		s.Popups = Popups{}
		s.Route = RouteSignIn
	})

	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}

	return nil
}

// UpdateUser changes name and about of the current user.
func (c *AppController) UpdateUser(ctx context.Context, info domain.UserInfo) error {
	ctx, _ = context_.EnsureTraceID(ctx)

	return c.updateProfile(ctx, "profile", func(ctx context.Context) (domain.User, error) {
		return c.resources.SetUserInfo(ctx, info) //nolint:wrapcheck
	})
}

// UpdateAvatar changes the avatar of the current user.
func (c *AppController) UpdateAvatar(ctx context.Context, avatar domain.UserAvatar) error {
	ctx, _ = context_.EnsureTraceID(ctx)

	return c.updateProfile(ctx, "avatar", func(ctx context.Context) (domain.User, error) {
		return c.resources.SetUserAvatar(ctx, avatar) //nolint:wrapcheck
	})
}

func (c *AppController) updateProfile(
	ctx context.Context,
	what string,
	call func(context.Context) (domain.User, error),
) (err error) {
	log := c.log.With(logging.Group("update", "target", what))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "user update failed", "error", err)
		} else {
			log.DebugContext(ctx, "user updated")
		}
	}()

	if c.cfg.OptimisticClose {
		c.CloseAll()
	}

	user, err := call(ctx)
	if err != nil {
		c.fail()

		return fmt.Errorf("update %s: %w", what, err)
	}

	c.update(func(s *State) {
		s.CurrentUser = mergeUser(s.CurrentUser, user)

		if !c.cfg.OptimisticClose {
			closeAll(s)
		}
	})

	return nil
}

// mergeUser keeps the email of the current user when the server omits it.
func mergeUser(current, updated domain.User) domain.User {
	if updated.Email == "" {
		updated.Email = current.Email
	}

	return updated
}

// CardLike toggles the like of the current user on card and replaces it in the feed.
func (c *AppController) CardLike(ctx context.Context, card domain.Card) (err error) {
	ctx, _ = context_.EnsureTraceID(ctx)

	liked := card.IsLikedBy(c.State().CurrentUser.ID)
	log := c.log.With(logging.Group("card", "id", card.ID, "like", !liked))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "card like failed", "error", err)
		} else {
			log.DebugContext(ctx, "card like changed")
		}
	}()

	updated, err := c.resources.ChangeLikeCardStatus(ctx, card.ID, !liked)
	if err != nil {
		c.fail()

		return fmt.Errorf("change like card status: %w", err)
	}

	c.update(func(s *State) {
		s.Cards = replaceCard(s.Cards, updated)

		if s.SelectedCard != nil && s.SelectedCard.ID == updated.ID {
			s.SelectedCard = &updated
		}
	})

	return nil
}

// CardDelete deletes card and removes it from the feed.
func (c *AppController) CardDelete(ctx context.Context, card domain.Card) (err error) {
	ctx, _ = context_.EnsureTraceID(ctx)
	log := c.log.With(logging.Group("card", "id", card.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "card delete failed", "error", err)
		} else {
			log.DebugContext(ctx, "card deleted")
		}
	}()

	if err := c.resources.DeleteCard(ctx, card.ID); err != nil {
		c.fail()

		return fmt.Errorf("delete card: %w", err)
	}

	c.update(func(s *State) {
		s.Cards = removeCard(s.Cards, card.ID)

		if s.SelectedCard != nil && s.SelectedCard.ID == card.ID {
			s.SelectedCard = nil
		}
	})

	return nil
}

// AddPlace creates a card, prepends it to the feed and closes the popups.
func (c *AppController) AddPlace(ctx context.Context, place domain.NewCard) (err error) {
	ctx, _ = context_.EnsureTraceID(ctx)
	log := c.log.With(logging.Group("card", "name", place.Name, "link", place.Link))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "card create failed", "error", err)
		} else {
			log.DebugContext(ctx, "card created")
		}
	}()

	if c.cfg.ProbeLinks && c.images != nil {
		if _, err := c.images.Probe(ctx, place.Link); err != nil {
			c.fail()

			return fmt.Errorf("probe link: %w", err)
		}
	}

	card, err := c.resources.CreateCard(ctx, place)
	if err != nil {
		c.fail()

		return fmt.Errorf("create card: %w", err)
	}

	c.update(func(s *State) {
		s.Cards = prependCard(s.Cards, card)
		closeAll(s)
	})

	return nil
}

// fail reports a failed action through the info tooltip.
func (c *AppController) fail() {
	c.update(func(s *State) {
		s.Status = domain.FailureMessage(domain.MessageSomethingWent)
		s.Popups.InfoTooltip = true
	})
}

// OpenEditAvatar shows the avatar popup.
func (c *AppController) OpenEditAvatar() {
	c.update(func(s *State) { s.Popups.EditAvatar = true })
}

// OpenEditProfile shows the profile popup.
func (c *AppController) OpenEditProfile() {
	c.update(func(s *State) { s.Popups.EditProfile = true })
}

// OpenAddPlace shows the add-place popup.
func (c *AppController) OpenAddPlace() {
	c.update(func(s *State) { s.Popups.AddPlace = true })
}

// OpenCard selects card for the full-size view.
func (c *AppController) OpenCard(card domain.Card) {
	c.update(func(s *State) { s.SelectedCard = &card })
}

// CloseAll hides every popup and clears the selected card.
func (c *AppController) CloseAll() {
	c.update(closeAll)
}

func closeAll(s *State) {
	s.Popups = Popups{}
	s.SelectedCard = nil
}
