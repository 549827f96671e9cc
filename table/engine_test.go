package table

import (
	"testing"
	"time"

	"github.com/lazharichir/holdem/cards"
	"github.com/lazharichir/holdem/events"
	"github.com/stretchr/testify/require"
)

// scriptedActor records prompts on a channel so tests can respond in
// their own time.
type scriptedActor struct {
	requests chan actionRequest
}

type actionRequest struct {
	view     TableView
	legal    []ActionKind
	deadline time.Time
}

func newScriptedActor() *scriptedActor {
	return &scriptedActor{requests: make(chan actionRequest, 16)}
}

func (a *scriptedActor) RequestAction(view TableView, legal []ActionKind, deadline time.Time) {
	a.requests <- actionRequest{view: view, legal: legal, deadline: deadline}
}

func (a *scriptedActor) NotifyGameState(view TableView) {}

func (a *scriptedActor) await(t *testing.T) actionRequest {
	t.Helper()
	select {
	case req := <-a.requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an action request")
		return actionRequest{}
	}
}

func testRules() Rules {
	rules := DefaultRules()
	rules.ActionTimeout = 5 * time.Second
	// Freeze the table after the hand so assertions see the settled state.
	rules.BetweenHands = time.Hour
	return rules
}

func newTestEngine(t *testing.T, rules Rules, deck cards.Stack) (*Engine, *events.InMemoryEventStore) {
	t.Helper()
	store := events.NewInMemoryEventStore()
	engine, err := NewEngine("test table", rules, store, WithDeckSource(func() cards.Stack {
		return append(cards.Stack{}, deck...)
	}))
	require.NoError(t, err)
	engine.Start()
	t.Cleanup(engine.Stop)
	return engine, store
}

func seatPlayer(t *testing.T, engine *Engine, name string, buyIn, seat int) *scriptedActor {
	t.Helper()
	actor := newScriptedActor()
	_, err := engine.Join(JoinRequest{Name: name, BuyIn: buyIn, Seat: seat}, actor)
	require.NoError(t, err)
	return actor
}

func eventNames(t *testing.T, store *events.InMemoryEventStore, tableID string) []string {
	t.Helper()
	stored, err := store.LoadEvents(tableID)
	require.NoError(t, err)
	names := make([]string, len(stored))
	for i, e := range stored {
		names[i] = e.EventName()
	}
	return names
}

func playerNamed(t *testing.T, view TableView, name string) PlayerView {
	t.Helper()
	for _, p := range view.Players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("player %s not in view", name)
	return PlayerView{}
}

func TestFoldEndsHandUncontested(t *testing.T) {
	deck := cards.MustCards("AH", "AD", "KH", "KD", "2C", "7D", "9S", "4H", "JC")
	engine, store := newTestEngine(t, testRules(), deck)

	alice := seatPlayer(t, engine, "alice", 1000, 0)
	bob := seatPlayer(t, engine, "bob", 1000, 1)

	// Heads-up the button posts the small blind and acts first preflop.
	req := alice.await(t)
	require.Equal(t, []ActionKind{ActionCall, ActionRaise, ActionFold}, req.legal)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionRaise, Amount: 25, Position: 0}))

	bob.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "bob", Kind: ActionFold, Position: 1}))

	// The whole pot goes to the raiser without a showdown.
	view := engine.GetState("")
	require.Equal(t, StateHandComplete, view.State)
	require.Equal(t, 1010, playerNamed(t, view, "alice").Stack)
	require.Equal(t, 990, playerNamed(t, view, "bob").Stack)

	names := eventNames(t, store, engine.ID())
	require.Contains(t, names, "POT_AWARDED")
	require.Contains(t, names, "HAND_ENDED")
	require.NotContains(t, names, "COMMUNITY_CARDS_DEALT", "an uncontested hand never reaches the flop")
}

func TestCheckedDownHandReachesShowdown(t *testing.T) {
	deck := cards.MustCards("AH", "AD", "KH", "KD", "2C", "7D", "9S", "4H", "JC")
	engine, store := newTestEngine(t, testRules(), deck)

	alice := seatPlayer(t, engine, "alice", 1000, 0)
	bob := seatPlayer(t, engine, "bob", 1000, 1)

	req := alice.await(t)
	require.Equal(t, []string{"AH", "AD"}, req.view.HoleCards)
	require.Empty(t, playerNamed(t, req.view, "bob").HoleCards, "opponent hole cards must stay hidden")
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionCall, Position: 0}))

	req = bob.await(t)
	require.Equal(t, []ActionKind{ActionCheck, ActionBet, ActionFold}, req.legal)
	require.NoError(t, engine.SubmitAction(Action{Player: "bob", Kind: ActionCheck, Position: 1}))

	// Postflop the non-button acts first on every street.
	for _, street := range []Street{StreetFlop, StreetTurn, StreetRiver} {
		req = bob.await(t)
		require.Equal(t, street, req.view.Street)
		require.NoError(t, engine.SubmitAction(Action{Player: "bob", Kind: ActionCheck, Position: 1}))
		req = alice.await(t)
		require.Equal(t, street, req.view.Street)
		require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionCheck, Position: 0}))
	}

	view := engine.GetState("")
	require.Equal(t, StateHandComplete, view.State)
	require.Equal(t, 1010, playerNamed(t, view, "alice").Stack, "aces beat kings on this board")
	require.Equal(t, 990, playerNamed(t, view, "bob").Stack)

	names := eventNames(t, store, engine.ID())
	require.Contains(t, names, "POT_AWARDED")
}

func TestTimeoutAppliesDefaultAction(t *testing.T) {
	rules := testRules()
	rules.ActionTimeout = 50 * time.Millisecond

	deck := cards.MustCards("AH", "AD", "KH", "KD", "2C", "7D", "9S", "4H", "JC")
	engine, store := newTestEngine(t, rules, deck)

	alice := seatPlayer(t, engine, "alice", 1000, 0)
	seatPlayer(t, engine, "bob", 1000, 1)

	// Facing the big blind, checking is not legal, so the timeout folds.
	alice.await(t)

	require.Eventually(t, func() bool {
		return engine.GetState("").State == StateHandComplete
	}, 2*time.Second, 10*time.Millisecond)

	view := engine.GetState("")
	require.Equal(t, 995, playerNamed(t, view, "alice").Stack)
	require.Equal(t, 1005, playerNamed(t, view, "bob").Stack)
	require.Contains(t, eventNames(t, store, engine.ID()), "PLAYER_TIMED_OUT")
}

func TestIllegalActionsAreRejectedAndRecoverable(t *testing.T) {
	deck := cards.MustCards("AH", "AD", "KH", "KD", "2C", "7D", "9S", "4H", "JC")
	engine, _ := newTestEngine(t, testRules(), deck)

	alice := seatPlayer(t, engine, "alice", 1000, 0)
	seatPlayer(t, engine, "bob", 1000, 1)

	alice.await(t)

	var illegal *IllegalActionError

	err := engine.SubmitAction(Action{Player: "bob", Kind: ActionFold, Position: 1})
	require.ErrorAs(t, err, &illegal, "acting out of turn is rejected")

	err = engine.SubmitAction(Action{Player: "alice", Kind: ActionCheck, Position: 0})
	require.ErrorAs(t, err, &illegal, "checking while facing a bet is rejected")

	err = engine.SubmitAction(Action{Player: "alice", Kind: ActionRaise, Amount: 12, Position: 0})
	require.ErrorAs(t, err, &illegal, "raising below the minimum is rejected")

	// The turn is still alice's; a legal resubmission goes through.
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionFold, Position: 0}))
	require.Equal(t, StateHandComplete, engine.GetState("").State)
}

func TestAllInRunsOutRemainingStreets(t *testing.T) {
	deck := cards.MustCards("AH", "AD", "KH", "KD", "2C", "7D", "9S", "4H", "JC")
	engine, store := newTestEngine(t, testRules(), deck)

	alice := seatPlayer(t, engine, "alice", 50, 0)
	bob := seatPlayer(t, engine, "bob", 1000, 1)

	alice.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionRaise, Amount: 50, Position: 0}))

	bob.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "bob", Kind: ActionCall, Position: 1}))

	// Nobody can act anymore, so the board runs out to showdown on its own.
	require.Eventually(t, func() bool {
		return engine.GetState("").State == StateHandComplete
	}, 2*time.Second, 10*time.Millisecond)

	view := engine.GetState("")
	require.Equal(t, 100, playerNamed(t, view, "alice").Stack)
	require.Equal(t, 950, playerNamed(t, view, "bob").Stack)

	dealt := 0
	for _, name := range eventNames(t, store, engine.ID()) {
		if name == "COMMUNITY_CARDS_DEALT" {
			dealt++
		}
	}
	require.Equal(t, 3, dealt)
}

func TestOddChipGoesClockwiseFromButton(t *testing.T) {
	// Broadway on the board; everyone left at showdown plays it and ties.
	deck := cards.MustCards(
		"2C", "2D", // first two off the deck
		"3C", "4C",
		"3D", "6S",
		"AH", "KH", "QD", // flop
		"JS", // turn
		"TC", // river
	)
	rules := testRules()
	rules.MaxSeats = 3
	rules.BetweenHands = 300 * time.Millisecond
	engine, _ := newTestEngine(t, rules, deck)

	alice := seatPlayer(t, engine, "alice", 1000, 0)
	bob := seatPlayer(t, engine, "bob", 1000, 1)

	// Throw away a heads-up hand so carol can be seated for the next one.
	alice.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionFold, Position: 0}))
	carol := seatPlayer(t, engine, "carol", 1000, 2)

	// Second hand: the button moves to bob, carol posts the small blind
	// and alice the big blind. Stacks are 995 / 1005 / 1000.
	req := bob.await(t)
	require.Equal(t, 1, req.view.Button)
	require.NoError(t, engine.SubmitAction(Action{Player: "bob", Kind: ActionCall, Position: 1}))
	carol.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "carol", Kind: ActionCall, Position: 2}))
	alice.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionCheck, Position: 0}))

	// Flop: carol bets an odd amount and everyone calls.
	carol.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "carol", Kind: ActionBet, Amount: 11, Position: 2}))
	alice.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionCall, Position: 0}))
	bob.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "bob", Kind: ActionCall, Position: 1}))

	// Turn: bob folds, leaving odd dead money behind.
	carol.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "carol", Kind: ActionBet, Amount: 10, Position: 2}))
	alice.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionCall, Position: 0}))
	bob.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "bob", Kind: ActionFold, Position: 1}))

	// River checks through to showdown.
	carol.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "carol", Kind: ActionCheck, Position: 2}))
	alice.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionCheck, Position: 0}))

	// Pot is 83: carol and alice split 41 each and the odd chip goes to
	// carol, the first tied winner clockwise of the button.
	view := engine.GetState("")
	require.Equal(t, StateHandComplete, view.State)
	require.Equal(t, 1005, playerNamed(t, view, "alice").Stack)
	require.Equal(t, 984, playerNamed(t, view, "bob").Stack)
	require.Equal(t, 1011, playerNamed(t, view, "carol").Stack)
}

func TestJoinMidHandWaitsForNextHand(t *testing.T) {
	deck := cards.MustCards("AH", "AD", "KH", "KD", "2C", "7D", "9S", "4H", "JC")
	engine, _ := newTestEngine(t, testRules(), deck)

	alice := seatPlayer(t, engine, "alice", 1000, 0)
	seatPlayer(t, engine, "bob", 1000, 1)

	alice.await(t)
	seatPlayer(t, engine, "carol", 1000, 2)

	view := engine.GetState("carol")
	require.Equal(t, StatusSittingOut, playerNamed(t, view, "carol").Status)
	require.Empty(t, view.HoleCards, "a player seated mid-hand holds no cards")

	// The hand in progress is undisturbed: it is still alice's turn.
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionFold, Position: 0}))
	require.Equal(t, StateHandComplete, engine.GetState("").State)
}

func TestEventHandlerReceivesEvents(t *testing.T) {
	deck := cards.MustCards("AH", "AD", "KH", "KD", "2C", "7D", "9S", "4H", "JC")
	seen := make(chan string, 64)

	engine, err := NewEngine("test table", testRules(), events.NewInMemoryEventStore(),
		WithDeckSource(func() cards.Stack { return append(cards.Stack{}, deck...) }),
		WithEventHandler(func(e events.Event) {
			select {
			case seen <- e.EventName():
			default:
			}
		}),
	)
	require.NoError(t, err)
	engine.Start()
	t.Cleanup(engine.Stop)

	alice := seatPlayer(t, engine, "alice", 1000, 0)
	seatPlayer(t, engine, "bob", 1000, 1)

	alice.await(t)
	require.NoError(t, engine.SubmitAction(Action{Player: "alice", Kind: ActionFold, Position: 0}))

	var names []string
	for len(seen) > 0 {
		names = append(names, <-seen)
	}
	require.Contains(t, names, "HAND_STARTED")
	require.Contains(t, names, "HAND_ENDED")
}

func TestRejectsBadConfiguration(t *testing.T) {
	rules := DefaultRules()
	rules.BigBlind = 2 // below the small blind

	var confErr *TableConfigurationError
	_, err := NewEngine("bad", rules, events.NewInMemoryEventStore())
	require.ErrorAs(t, err, &confErr)
}
