package appsvc

import (
	"slices"

	"github.com/mkrupp/mesto/internal/domain"
)

// Popups holds the independent visibility flags of the dialogs.
type Popups struct {
	EditAvatar  bool
	EditProfile bool
	AddPlace    bool
	InfoTooltip bool
}

// AnyOpen reports whether at least one popup is visible.
func (p Popups) AnyOpen() bool {
	return p.EditAvatar || p.EditProfile || p.AddPlace || p.InfoTooltip
}

// SessionState is the phase of the authentication state machine.
type SessionState int

const (
	SessionUnauthenticated SessionState = iota
	SessionAuthenticating               // token stored but unconfirmed, or credentials in flight
	SessionAuthenticated
)

// String returns the state name.
func (st SessionState) String() string {
	switch st {
	case SessionAuthenticating:
		return "authenticating"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is an immutable snapshot of the view state.
type State struct {
	Session      SessionState
	LoggedIn     bool // true once authenticated, and optimistically while a stored token is checked
	Email        string
	CurrentUser  domain.User
	Cards        []domain.Card
	Route        Route
	Popups       Popups
	SelectedCard *domain.Card
	Status       domain.StatusMessage
}

// Card returns the card with the given id from the feed.
func (s State) Card(cardID domain.CardID) (domain.Card, bool) {
	idx := slices.IndexFunc(s.Cards, func(card domain.Card) bool { return card.ID == cardID })
	if idx < 0 {
		return domain.Card{}, false
	}

	return s.Cards[idx], true
}

// clone returns a copy that shares nothing mutable with s.
func (s State) clone() State {
	s.Cards = slices.Clone(s.Cards)

	if s.SelectedCard != nil {
		card := *s.SelectedCard
		s.SelectedCard = &card
	}

	return s
}

func replaceCard(cards []domain.Card, updated domain.Card) []domain.Card {
	out := make([]domain.Card, len(cards))

	for i, card := range cards {
		if card.ID == updated.ID {
			card = updated
		}

		out[i] = card
	}

	return out
}

func removeCard(cards []domain.Card, cardID domain.CardID) []domain.Card {
	out := make([]domain.Card, 0, len(cards))

	for _, card := range cards {
		if card.ID != cardID {
			out = append(out, card)
		}
	}

	return out
}

func prependCard(cards []domain.Card, card domain.Card) []domain.Card {
	out := make([]domain.Card, 0, len(cards)+1)
	out = append(out, card)

	return append(out, cards...)
}
