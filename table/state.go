package table

import (
	"time"

	"github.com/lazharichir/holdem/cards"
	"github.com/lazharichir/holdem/pot"
)

// State is the table's position in the hand lifecycle.
type State string

const (
	StateWaitingForPlayers State = "waiting_for_players"
	StateHandSetup         State = "hand_setup"
	StatePreFlop           State = "preflop"
	StateFlop              State = "flop"
	StateTurn              State = "turn"
	StateRiver             State = "river"
	StateShowdown          State = "showdown"
	StateHandComplete      State = "hand_complete"
)

// Street is one of the four betting phases of a hand.
type Street string

const (
	StreetPreFlop Street = "preflop"
	StreetFlop    Street = "flop"
	StreetTurn    Street = "turn"
	StreetRiver   Street = "river"
)

func stateForStreet(street Street) State {
	switch street {
	case StreetFlop:
		return StateFlop
	case StreetTurn:
		return StateTurn
	case StreetRiver:
		return StateRiver
	default:
		return StatePreFlop
	}
}

// PlayerStatus is a player's standing within the current hand.
type PlayerStatus string

const (
	StatusActive     PlayerStatus = "active"
	StatusFolded     PlayerStatus = "folded"
	StatusAllIn      PlayerStatus = "all_in"
	StatusSittingOut PlayerStatus = "sitting_out"
)

// Player is a seated player. Hole cards and per-street commitments reset
// every hand.
type Player struct {
	Name                string
	Stack               int
	Position            int
	Status              PlayerStatus
	HoleCards           cards.Stack
	CommittedThisStreet int
	CommittedThisHand   int
}

// TableState holds everything about the table. The engine goroutine is
// its sole owner and mutator; nothing else ever holds a writable
// reference.
type TableState struct {
	Players        map[string]*Player
	Seats          []string // seat index -> player name, "" when empty
	Button         int
	ActionPosition int
	Street         Street
	CommunityCards cards.Stack
	CurrentBet     int
	MinRaise       int
	SubroundStart  int
	Deck           cards.Stack
	Pot            *pot.Pot
}

// Rules defines the fixed configuration of a table.
type Rules struct {
	MaxSeats      int
	SmallBlind    int
	BigBlind      int
	ActionTimeout time.Duration
	BetweenHands  time.Duration
	Debug         bool
}

// DefaultRules returns a sensible six-max no-limit configuration.
func DefaultRules() Rules {
	return Rules{
		MaxSeats:      6,
		SmallBlind:    5,
		BigBlind:      10,
		ActionTimeout: 15 * time.Second,
		BetweenHands:  3 * time.Second,
	}
}

// Validate checks the configuration at table startup.
func (r Rules) Validate() error {
	if r.MaxSeats < 2 || r.MaxSeats > 10 {
		return &TableConfigurationError{Reason: "max seats must be between 2 and 10"}
	}
	if r.SmallBlind <= 0 {
		return &TableConfigurationError{Reason: "small blind must be positive"}
	}
	if r.BigBlind < r.SmallBlind {
		return &TableConfigurationError{Reason: "big blind cannot be below the small blind"}
	}
	if r.ActionTimeout <= 0 {
		return &TableConfigurationError{Reason: "action timeout must be positive"}
	}
	return nil
}

// PlayerView is the public projection of a seated player. HoleCards is
// populated only for the viewer's own seat.
type PlayerView struct {
	Name                string       `json:"name"`
	Stack               int          `json:"stack"`
	Position            int          `json:"position"`
	Status              PlayerStatus `json:"status"`
	CommittedThisStreet int          `json:"committedThisStreet"`
	CommittedThisHand   int          `json:"committedThisHand"`
	HoleCards           []string     `json:"holeCards,omitempty"`
}

// SidePotView mirrors pot.SidePot for serialization.
type SidePotView struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// TableView is the sanitized projection of TableState that crosses the
// table boundary: it carries the viewer's own hole cards, public state,
// and never the undealt deck or anyone else's cards.
type TableView struct {
	TableID        string        `json:"tableId"`
	HandID         string        `json:"handId,omitempty"`
	State          State         `json:"state"`
	Street         Street        `json:"street"`
	Button         int           `json:"button"`
	ActionPosition int           `json:"actionPosition"`
	CurrentBet     int           `json:"currentBet"`
	MinRaise       int           `json:"minRaise"`
	CommunityCards []string      `json:"communityCards"`
	Pot            int           `json:"pot"`
	SidePots       []SidePotView `json:"sidePots,omitempty"`
	Players        []PlayerView  `json:"players"`
	HoleCards      []string      `json:"holeCards,omitempty"`
}
