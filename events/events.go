package events

import (
	"time"

	"github.com/lazharichir/holdem/cards"
)

// Table membership events

type PlayerJoinedTable struct {
	TableID  string
	Player   string
	Position int
	At       time.Time
}

func (e PlayerJoinedTable) EventName() string { return "PLAYER_JOINED_TABLE" }

type PlayerLeftTable struct {
	TableID string
	Player  string
	At      time.Time
}

func (e PlayerLeftTable) EventName() string { return "PLAYER_LEFT_TABLE" }

// Hand lifecycle events

type HandStarted struct {
	TableID string
	HandID  string
	Button  int
	Players []string
}

func (e HandStarted) EventName() string { return "HAND_STARTED" }

type BlindPosted struct {
	TableID string
	HandID  string
	Player  string
	Kind    string // "small" or "big"
	Amount  int
}

func (e BlindPosted) EventName() string { return "BLIND_POSTED" }

type HoleCardsDealt struct {
	TableID string
	HandID  string
	Player  string
	Cards   cards.Stack
}

func (e HoleCardsDealt) EventName() string { return "HOLE_CARDS_DEALT" }

// Betting events

type ActionRequested struct {
	TableID  string
	HandID   string
	Player   string
	Legal    []string
	Deadline time.Time
}

func (e ActionRequested) EventName() string { return "ACTION_REQUESTED" }

type PlayerActed struct {
	TableID string
	HandID  string
	Player  string
	Action  string
	Amount  int
	Street  string
}

func (e PlayerActed) EventName() string { return "PLAYER_ACTED" }

type PlayerTimedOut struct {
	TableID       string
	HandID        string
	Player        string
	Street        string
	DefaultAction string
}

func (e PlayerTimedOut) EventName() string { return "PLAYER_TIMED_OUT" }

// Street events

type CommunityCardsDealt struct {
	TableID string
	HandID  string
	Street  string
	Cards   cards.Stack
}

func (e CommunityCardsDealt) EventName() string { return "COMMUNITY_CARDS_DEALT" }

type StreetAdvanced struct {
	TableID string
	HandID  string
	Street  string
}

func (e StreetAdvanced) EventName() string { return "STREET_ADVANCED" }

// Resolution events

type PotAwarded struct {
	TableID string
	HandID  string
	Player  string
	Amount  int
	Reason  string // "showdown" or "uncontested"
}

func (e PotAwarded) EventName() string { return "POT_AWARDED" }

type HandEnded struct {
	TableID  string
	HandID   string
	FinalPot int
	Winners  []string
}

func (e HandEnded) EventName() string { return "HAND_ENDED" }
