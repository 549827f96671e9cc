package table

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lazharichir/holdem/cards"
	"github.com/lazharichir/holdem/events"
	"github.com/lazharichir/holdem/hands"
	"github.com/lazharichir/holdem/pot"
)

// startHand resets per-hand state, moves the button, posts blinds and
// opens the preflop betting round.
func (e *Engine) startHand() {
	if e.inHand() {
		return
	}
	if e.fundedCount() < 2 {
		e.state = StateWaitingForPlayers
		return
	}

	e.state = StateHandSetup
	e.handID = uuid.NewString()
	e.toAct = make(map[string]bool)
	e.pendingToken = 0

	e.ts.Pot = pot.New()
	e.ts.CommunityCards = nil
	e.ts.Street = StreetPreFlop
	e.ts.Deck = e.deckFn()
	e.ts.CurrentBet = 0
	e.ts.MinRaise = e.rules.BigBlind

	e.handChips = 0
	for _, player := range e.ts.Players {
		player.HoleCards = nil
		player.CommittedThisStreet = 0
		player.CommittedThisHand = 0
		if player.Stack > 0 {
			player.Status = StatusActive
			e.handChips += player.Stack
		} else {
			player.Status = StatusSittingOut
		}
	}

	e.ts.Button = e.nextActive(e.ts.Button)

	var names []string
	pos := e.ts.Button
	for i := 0; i < len(e.ts.Seats); i++ {
		name := e.ts.Seats[pos]
		if name != "" && e.ts.Players[name].Status == StatusActive {
			names = append(names, name)
		}
		pos = (pos + 1) % len(e.ts.Seats)
	}

	e.emit(events.HandStarted{
		TableID: e.id,
		HandID:  e.handID,
		Button:  e.ts.Button,
		Players: names,
	})

	for _, name := range names {
		player := e.ts.Players[name]
		player.HoleCards, e.ts.Deck = cards.DealCards(e.ts.Deck, 2)
		e.emit(events.HoleCardsDealt{
			TableID: e.id,
			HandID:  e.handID,
			Player:  name,
			Cards:   player.HoleCards,
		})
	}

	// Heads-up the button posts the small blind and acts first preflop.
	var sbPos int
	if len(names) == 2 {
		sbPos = e.ts.Button
	} else {
		sbPos = e.nextActive(e.ts.Button)
	}
	bbPos := e.nextActive(sbPos)

	e.postBlind(sbPos, e.rules.SmallBlind, "small")
	e.postBlind(bbPos, e.rules.BigBlind, "big")

	e.ts.CurrentBet = e.rules.BigBlind
	e.ts.MinRaise = e.rules.BigBlind
	e.state = StatePreFlop

	for _, name := range names {
		if e.ts.Players[name].Status == StatusActive {
			e.toAct[name] = true
		}
	}

	// First to act preflop sits after the big blind; the blinds still
	// owe an action, so the subround wraps around through them.
	e.ts.ActionPosition = bbPos
	e.ts.SubroundStart = e.nextToAct(bbPos)

	e.notifyAll()
	e.advance()
}

// postBlind commits a forced bet, going all-in for a short stack.
func (e *Engine) postBlind(position, amount int, kind string) {
	name := e.ts.Seats[position]
	player := e.ts.Players[name]
	posted := min(amount, player.Stack)
	e.commitChips(player, posted)
	e.emit(events.BlindPosted{
		TableID: e.id,
		HandID:  e.handID,
		Player:  name,
		Kind:    kind,
		Amount:  posted,
	})
}

// advance moves the action to the next player owing one, or closes the
// subround when nobody is left to act.
func (e *Engine) advance() {
	if e.contendersCount() <= 1 {
		e.finishUncontested()
		return
	}

	next := e.nextToAct(e.ts.ActionPosition)
	if next == -1 {
		e.closeSubround()
		return
	}

	e.ts.ActionPosition = next
	e.requestAction()
}

// closeSubround ends the street's betting and moves the hand forward.
func (e *Engine) closeSubround() {
	e.ts.ActionPosition = -1
	if e.ts.Street == StreetRiver {
		e.showdown()
		return
	}
	e.advanceStreet()
}

func (e *Engine) advanceStreet() {
	for _, player := range e.ts.Players {
		player.CommittedThisStreet = 0
	}
	e.ts.CurrentBet = 0
	e.ts.MinRaise = e.rules.BigBlind
	e.toAct = make(map[string]bool)

	var dealt cards.Stack
	switch e.ts.Street {
	case StreetPreFlop:
		e.ts.Street = StreetFlop
		dealt, e.ts.Deck = cards.DealCards(e.ts.Deck, 3)
	case StreetFlop:
		e.ts.Street = StreetTurn
		dealt, e.ts.Deck = cards.DealCards(e.ts.Deck, 1)
	case StreetTurn:
		e.ts.Street = StreetRiver
		dealt, e.ts.Deck = cards.DealCards(e.ts.Deck, 1)
	}
	e.ts.CommunityCards = append(e.ts.CommunityCards, dealt...)
	e.state = stateForStreet(e.ts.Street)

	e.emit(events.CommunityCardsDealt{
		TableID: e.id,
		HandID:  e.handID,
		Street:  string(e.ts.Street),
		Cards:   dealt,
	})
	e.emit(events.StreetAdvanced{
		TableID: e.id,
		HandID:  e.handID,
		Street:  string(e.ts.Street),
	})

	e.notifyAll()

	// With fewer than two players able to act, betting is over for the
	// hand; deal the remaining streets straight through.
	if e.actableCount() < 2 {
		if e.ts.Street == StreetRiver {
			e.showdown()
			return
		}
		e.advanceStreet()
		return
	}

	for _, player := range e.ts.Players {
		if player.Status == StatusActive {
			e.toAct[player.Name] = true
		}
	}
	e.ts.ActionPosition = e.ts.Button
	e.ts.SubroundStart = e.nextToAct(e.ts.Button)
	e.advance()
}

// actableCount counts players who can still voluntarily put chips in.
func (e *Engine) actableCount() int {
	count := 0
	for _, player := range e.ts.Players {
		if player.Status == StatusActive {
			count++
		}
	}
	return count
}

// legalActions derives the legal set for the player at the action
// position. Facing no outstanding bet the set is check/bet/fold;
// facing one it is call/raise/fold.
func (e *Engine) legalActions(player *Player) []ActionKind {
	if e.ts.CurrentBet == player.CommittedThisStreet {
		return []ActionKind{ActionCheck, ActionBet, ActionFold}
	}
	return []ActionKind{ActionCall, ActionRaise, ActionFold}
}

// requestAction prompts the current player and arms the action clock.
func (e *Engine) requestAction() {
	name := e.currentPlayerName()
	player := e.ts.Players[name]
	legal := e.legalActions(player)

	e.pendingDeadline = time.Now().Add(e.rules.ActionTimeout)
	e.pendingToken = e.clock.Arm(e.rules.ActionTimeout)

	e.emit(events.ActionRequested{
		TableID:  e.id,
		HandID:   e.handID,
		Player:   name,
		Legal:    kindStrings(legal),
		Deadline: e.pendingDeadline,
	})

	if actor, ok := e.actors[name]; ok {
		view := e.viewFor(name)
		deadline := e.pendingDeadline
		go actor.RequestAction(view, legal, deadline)
	}
}

// handleAction validates and applies a submitted action. The first
// action applied for a turn wins; anything later is rejected as stale.
func (e *Engine) handleAction(action Action) error {
	if !e.inHand() || e.state == StateShowdown {
		return &IllegalActionError{Player: action.Player, Reason: "no betting round in progress"}
	}

	player, ok := e.ts.Players[action.Player]
	if !ok {
		return &IllegalActionError{Player: action.Player, Reason: "not seated at this table"}
	}
	if e.currentPlayerName() != action.Player {
		return &IllegalActionError{Player: action.Player, Reason: "not your turn"}
	}
	if e.pendingToken == 0 {
		return &IllegalActionError{Player: action.Player, Reason: "no action pending"}
	}

	legal := e.legalActions(player)
	if !containsKind(legal, action.Kind) {
		return &IllegalActionError{
			Player: action.Player,
			Reason: fmt.Sprintf("%s is not a legal action here", action.Kind),
		}
	}

	if err := e.validateAmount(player, action); err != nil {
		return err
	}

	e.clock.Cancel(e.pendingToken)
	e.pendingToken = 0

	e.applyAction(player, action)
	return nil
}

// validateAmount checks bet and raise sizing. An all-in for less than
// the minimum is always allowed.
func (e *Engine) validateAmount(player *Player, action Action) error {
	switch action.Kind {
	case ActionBet:
		if action.Amount <= 0 {
			return &IllegalActionError{Player: player.Name, Reason: "bet amount must be positive"}
		}
		if action.Amount > player.Stack {
			return &IllegalActionError{Player: player.Name, Reason: "bet exceeds stack"}
		}
		if action.Amount < e.rules.BigBlind && action.Amount != player.Stack {
			return &IllegalActionError{
				Player: player.Name,
				Reason: fmt.Sprintf("bet must be at least %d", e.rules.BigBlind),
			}
		}
	case ActionRaise:
		if action.Amount <= e.ts.CurrentBet {
			return &IllegalActionError{Player: player.Name, Reason: "raise must exceed the current bet"}
		}
		needed := action.Amount - player.CommittedThisStreet
		if needed > player.Stack {
			return &IllegalActionError{Player: player.Name, Reason: "raise exceeds stack"}
		}
		minTo := e.ts.CurrentBet + e.ts.MinRaise
		if action.Amount < minTo && needed != player.Stack {
			return &IllegalActionError{
				Player: player.Name,
				Reason: fmt.Sprintf("raise must be to at least %d", minTo),
			}
		}
	}
	return nil
}

// applyAction mutates the betting state for a validated action and
// moves the turn along.
func (e *Engine) applyAction(player *Player, action Action) {
	chips := 0

	switch action.Kind {
	case ActionFold:
		player.Status = StatusFolded
		e.ts.Pot.Fold(player.Name)

	case ActionCheck:
		// nothing to commit

	case ActionCall:
		owed := e.ts.CurrentBet - player.CommittedThisStreet
		chips = min(owed, player.Stack)
		e.commitChips(player, chips)

	case ActionBet:
		chips = action.Amount
		e.commitChips(player, chips)
		e.ts.CurrentBet = player.CommittedThisStreet
		e.ts.MinRaise = player.CommittedThisStreet
		e.openSubround(player)

	case ActionRaise:
		chips = min(action.Amount-player.CommittedThisStreet, player.Stack)
		e.commitChips(player, chips)
		if player.CommittedThisStreet > e.ts.CurrentBet {
			// A short all-in below a full raise reopens the action but
			// leaves the minimum raise increment untouched.
			increment := player.CommittedThisStreet - e.ts.CurrentBet
			if increment >= e.ts.MinRaise {
				e.ts.MinRaise = increment
			}
			e.ts.CurrentBet = player.CommittedThisStreet
			e.openSubround(player)
		}
	}

	delete(e.toAct, player.Name)

	e.emit(events.PlayerActed{
		TableID: e.id,
		HandID:  e.handID,
		Player:  player.Name,
		Action:  string(action.Kind),
		Amount:  chips,
		Street:  string(e.ts.Street),
	})

	e.notifyAll()
	e.advance()
}

// commitChips moves chips from the player's stack into the pot and
// flags the player all-in when the stack empties.
func (e *Engine) commitChips(player *Player, amount int) {
	if amount <= 0 {
		return
	}
	player.Stack -= amount
	player.CommittedThisStreet += amount
	player.CommittedThisHand += amount
	e.ts.Pot.Commit(player.Name, amount)

	if player.Stack == 0 {
		player.Status = StatusAllIn
		e.ts.Pot.MarkAllIn(player.Name)
		delete(e.toAct, player.Name)
	}
}

// openSubround restarts the subround after a bet or full raise:
// everyone active except the aggressor owes an action again.
func (e *Engine) openSubround(aggressor *Player) {
	e.toAct = make(map[string]bool)
	for _, player := range e.ts.Players {
		if player.Status == StatusActive && player.Name != aggressor.Name {
			e.toAct[player.Name] = true
		}
	}
	e.ts.SubroundStart = e.nextToAct(aggressor.Position)
}

// handleTimeout applies the default action when the clock fires: check
// when checking is legal, otherwise fold. A stale token means the
// player acted in time and the timeout loses the race.
func (e *Engine) handleTimeout(token ClockToken) {
	if token == 0 || token != e.pendingToken {
		return
	}
	e.pendingToken = 0

	name := e.currentPlayerName()
	player, ok := e.ts.Players[name]
	if !ok {
		return
	}

	kind := ActionFold
	if e.ts.CurrentBet == player.CommittedThisStreet {
		kind = ActionCheck
	}

	e.emit(events.PlayerTimedOut{
		TableID:       e.id,
		HandID:        e.handID,
		Player:        name,
		Street:        string(e.ts.Street),
		DefaultAction: string(kind),
	})

	e.applyAction(player, Action{Player: name, Kind: kind, Position: player.Position})
}

// finishUncontested ends the hand when everyone else folded. The winner
// takes the whole pot without showing cards.
func (e *Engine) finishUncontested() {
	e.clock.Cancel(e.pendingToken)
	e.pendingToken = 0

	var winner *Player
	for _, player := range e.ts.Players {
		if player.Status == StatusActive || player.Status == StatusAllIn {
			winner = player
			break
		}
	}
	if winner == nil {
		e.completeHand(nil)
		return
	}

	amount := e.ts.Pot.Total()
	winner.Stack += amount

	e.emit(events.PotAwarded{
		TableID: e.id,
		HandID:  e.handID,
		Player:  winner.Name,
		Amount:  amount,
		Reason:  "uncontested",
	})

	e.completeHand([]string{winner.Name})
}

// showdown evaluates every remaining hand and distributes the side
// pots.
func (e *Engine) showdown() {
	e.clock.Cancel(e.pendingToken)
	e.pendingToken = 0
	e.state = StateShowdown
	e.ts.ActionPosition = -1

	scores := make(map[string]hands.HandScore)
	for _, player := range e.ts.Players {
		if player.Status != StatusActive && player.Status != StatusAllIn {
			continue
		}
		full := append(cards.Stack{}, player.HoleCards...)
		full = append(full, e.ts.CommunityCards...)
		score, err := hands.Evaluate(full)
		if err != nil {
			// Seven known-good cards cannot fail evaluation unless the
			// dealing logic is broken, so surface it loudly.
			log.Panicf("table %s: evaluating %s for %s: %v", e.id, full.Shorthands(), player.Name, err)
		}
		scores[player.Name] = score
	}

	payouts := pot.Award(e.ts.Pot.SidePots(), scores, e.clockwiseFromButton())

	var winners []string
	for name := range payouts {
		winners = append(winners, name)
	}
	sort.Strings(winners)

	for _, name := range winners {
		e.ts.Players[name].Stack += payouts[name]
		e.emit(events.PotAwarded{
			TableID: e.id,
			HandID:  e.handID,
			Player:  name,
			Amount:  payouts[name],
			Reason:  "showdown",
		})
	}

	e.completeHand(winners)
}

// clockwiseFromButton lists showdown players in seat order starting at
// the seat after the button.
func (e *Engine) clockwiseFromButton() []string {
	var names []string
	n := len(e.ts.Seats)
	for i := 1; i <= n; i++ {
		name := e.ts.Seats[(e.ts.Button+i)%n]
		if name == "" {
			continue
		}
		player := e.ts.Players[name]
		if player.Status == StatusActive || player.Status == StatusAllIn {
			names = append(names, name)
		}
	}
	return names
}

// completeHand settles the hand, frees seats of departed players and
// schedules the next hand.
func (e *Engine) completeHand(winners []string) {
	finalPot := e.ts.Pot.Total()
	e.state = StateHandComplete
	e.ts.ActionPosition = -1

	if e.rules.Debug {
		total := 0
		for _, player := range e.ts.Players {
			if player.Status != StatusSittingOut {
				total += player.Stack
			}
		}
		if total != e.handChips {
			log.Printf("table %s: chip total drifted from %d to %d over hand %s",
				e.id, e.handChips, total, e.handID)
		}
	}

	e.emit(events.HandEnded{
		TableID:  e.id,
		HandID:   e.handID,
		FinalPot: finalPot,
		Winners:  winners,
	})

	for name := range e.departed {
		e.removePlayer(name)
	}

	e.notifyAll()

	if e.fundedCount() < 2 {
		e.state = StateWaitingForPlayers
		return
	}

	if e.rules.BetweenHands > 0 {
		time.AfterFunc(e.rules.BetweenHands, func() {
			select {
			case e.cmds <- startHandCmd{}:
			case <-e.ctx.Done():
			}
		})
		return
	}
	e.startHand()
}
