package gallerysvc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
	"github.com/mkrupp/mesto/internal/repo/card"
	"github.com/mkrupp/mesto/internal/repo/user"
)

var (
	// ErrInvalidLength is returned when a text field is too short or too long.
	ErrInvalidLength = errors.New("invalid length")
	// ErrInvalidURL is returned when a link is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)

// PopulatedCard is the wire form of a card with owner and likes resolved to profiles.
type PopulatedCard struct {
	ID        domain.CardID `json:"_id"`
	Name      string        `json:"name"`
	Link      string        `json:"link"`
	Owner     domain.User   `json:"owner"`
	Likes     []domain.User `json:"likes"`
	CreatedAt time.Time     `json:"createdAt"`
}

// GalleryService implements the profile and card operations of the backend.
type GalleryService struct {
	users user.Repository
	cards card.Repository
	cfg   GalleryConfig
	log   logging.Logger
	now   func() time.Time
}

// NewGalleryService creates a new GalleryService from the given repository factories.
func NewGalleryService(
	userRepoFactory user.RepositoryFactory,
	cardRepoFactory card.RepositoryFactory,
	cfg GalleryConfig,
) (*GalleryService, error) {
	users, err := userRepoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	cards, err := cardRepoFactory()
	if err != nil {
		_ = users.Close()

		return nil, fmt.Errorf("new card repo: %w", err)
	}

	return &GalleryService{
		users: users,
		cards: cards,
		cfg:   cfg,
		log:   logging.GetLogger("svc.gallerysvc.gallery_service"),
		now:   time.Now,
	}, nil
}

func (s *GalleryService) checkText(field, value string) error {
	if n := utf8.RuneCountInString(value); n < s.cfg.MinTextLength || n > s.cfg.MaxTextLength {
		return errors.Join(domain.ErrInvalidInput, fmt.Errorf("%w: %s", ErrInvalidLength, field))
	}

	return nil
}

func checkURL(field, value string) error {
	u, err := url.ParseRequestURI(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Join(domain.ErrInvalidInput, fmt.Errorf("%w: %s", ErrInvalidURL, field))
	}

	return nil
}

// GetUser returns the profile of userID.
func (s *GalleryService) GetUser(ctx context.Context, userID domain.UserID) (domain.User, error) {
	account, _, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	return account.User, nil
}

// UpdateUserInfo changes name and about of userID.
func (s *GalleryService) UpdateUserInfo(
	ctx context.Context,
	userID domain.UserID,
	info domain.UserInfo,
) (_ domain.User, err error) {
	log := s.log.With(logging.Group("user", "id", userID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update user info failed", "error", err)
		} else {
			log.DebugContext(ctx, "user info updated")
		}
	}()

	if err := errors.Join(s.checkText("name", info.Name), s.checkText("about", info.About)); err != nil {
		return domain.User{}, err
	}

	updated, err := s.users.UpdateUserInfo(ctx, userID, info)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user info: %w", err)
	}

	return updated, nil
}

// UpdateUserAvatar changes the avatar of userID.
func (s *GalleryService) UpdateUserAvatar(
	ctx context.Context,
	userID domain.UserID,
	avatar domain.UserAvatar,
) (_ domain.User, err error) {
	log := s.log.With(logging.Group("user", "id", userID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update user avatar failed", "error", err)
		} else {
			log.DebugContext(ctx, "user avatar updated")
		}
	}()

	if err := checkURL("avatar", avatar.Avatar); err != nil {
		return domain.User{}, err
	}

	updated, err := s.users.UpdateUserAvatar(ctx, userID, avatar)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user avatar: %w", err)
	}

	return updated, nil
}

// ListCards returns the feed, most recent first, with owners and likes populated.
func (s *GalleryService) ListCards(ctx context.Context) ([]PopulatedCard, error) {
	cards, err := s.cards.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return s.populate(ctx, cards...)
}

// CreateCard adds a card owned by userID.
func (s *GalleryService) CreateCard(
	ctx context.Context,
	userID domain.UserID,
	newCard domain.NewCard,
) (_ PopulatedCard, err error) {
	log := s.log.With(logging.Group("card", "owner", userID, "name", newCard.Name))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create card failed", "error", err)
		} else {
			log.DebugContext(ctx, "card created")
		}
	}()

	if err := errors.Join(s.checkText("name", newCard.Name), checkURL("link", newCard.Link)); err != nil {
		return PopulatedCard{}, err
	}

	created := domain.Card{
		ID:        domain.CardID(uuid.NewString()),
		Name:      newCard.Name,
		Link:      newCard.Link,
		Owner:     userID,
		Likes:     []domain.UserID{},
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.cards.CreateCard(ctx, created); err != nil {
		return PopulatedCard{}, fmt.Errorf("create card: %w", err)
	}

	populated, err := s.populate(ctx, created)
	if err != nil {
		return PopulatedCard{}, err
	}

	return populated[0], nil
}

// DeleteCard removes a card. Only the owner may delete it.
func (s *GalleryService) DeleteCard(
	ctx context.Context,
	userID domain.UserID,
	cardID domain.CardID,
) (_ PopulatedCard, err error) {
	log := s.log.With(logging.Group("card", "id", cardID, "user", userID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete card failed", "error", err)
		} else {
			log.DebugContext(ctx, "card deleted")
		}
	}()

	existing, _, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return PopulatedCard{}, fmt.Errorf("get card: %w", err)
	}

	if !existing.IsOwnedBy(userID) {
		return PopulatedCard{}, domain.ErrCardNotOwned
	}

	populated, err := s.populate(ctx, existing)
	if err != nil {
		return PopulatedCard{}, err
	}

	if err := s.cards.DeleteCard(ctx, cardID); err != nil {
		return PopulatedCard{}, fmt.Errorf("delete card: %w", err)
	}

	return populated[0], nil
}

// SetLike adds (like=true) or removes the like of userID on a card.
func (s *GalleryService) SetLike(
	ctx context.Context,
	userID domain.UserID,
	cardID domain.CardID,
	like bool,
) (_ PopulatedCard, err error) {
	log := s.log.With(logging.Group("card", "id", cardID, "user", userID, "like", like))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "set like failed", "error", err)
		} else {
			log.DebugContext(ctx, "like set")
		}
	}()

	updated, err := s.cards.SetLike(ctx, cardID, userID, like)
	if err != nil {
		return PopulatedCard{}, fmt.Errorf("set like: %w", err)
	}

	populated, err := s.populate(ctx, updated)
	if err != nil {
		return PopulatedCard{}, err
	}

	return populated[0], nil
}

// populate resolves owner and like ids to public profiles (without email).
// Ids of deleted users resolve to a profile carrying only the id.
func (s *GalleryService) populate(ctx context.Context, cards ...domain.Card) ([]PopulatedCard, error) {
	var ids []domain.UserID

	for _, c := range cards {
		ids = append(ids, c.Owner)
		ids = append(ids, c.Likes...)
	}

	slices.Sort(ids)
	ids = slices.Compact(ids)

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	resolve := func(id domain.UserID) domain.User {
		if u, ok := users[id]; ok {
			u.Email = ""

			return u
		}

		return domain.User{ID: id} //nolint:exhaustruct
	}

	out := make([]PopulatedCard, 0, len(cards))

	for _, c := range cards {
		likes := make([]domain.User, 0, len(c.Likes))
		for _, id := range c.Likes {
			likes = append(likes, resolve(id))
		}

		out = append(out, PopulatedCard{
			ID:        c.ID,
			Name:      c.Name,
			Link:      c.Link,
			Owner:     resolve(c.Owner),
			Likes:     likes,
			CreatedAt: c.CreatedAt,
		})
	}

	return out, nil
}

// Close releases the repositories.
func (s *GalleryService) Close() error {
	return errors.Join(s.users.Close(), s.cards.Close())
}
