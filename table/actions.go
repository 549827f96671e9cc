package table

import "time"

// ActionKind is a betting action a player can take.
type ActionKind string

const (
	ActionCheck ActionKind = "check"
	ActionBet   ActionKind = "bet"
	ActionCall  ActionKind = "call"
	ActionRaise ActionKind = "raise"
	ActionFold  ActionKind = "fold"
)

// Action is a player's submitted move. Amount is the bet size for a bet
// and the raise-to total for the street for a raise; it is ignored for
// check, call and fold.
type Action struct {
	Player   string
	Kind     ActionKind
	Amount   int
	Position int
}

// PlayerActor is the table's view of a player process. The table talks
// to it exclusively through these asynchronous notifications; both
// methods must return promptly and must not call back into the engine
// synchronously. Responses come back through Engine.SubmitAction.
type PlayerActor interface {
	RequestAction(view TableView, legal []ActionKind, deadline time.Time)
	NotifyGameState(view TableView)
}

func containsKind(kinds []ActionKind, kind ActionKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func kindStrings(kinds []ActionKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
