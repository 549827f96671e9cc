package table

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lazharichir/holdem/cards"
	"github.com/lazharichir/holdem/events"
	"github.com/lazharichir/holdem/pot"
	"github.com/sanity-io/litter"
)

// Engine drives the betting state machine for one table. It runs as a
// single message-processing goroutine: every mutation of TableState
// happens serially inside that goroutine, so table data needs no lock.
// Player actors are independent; the engine talks to them only through
// asynchronous notifications and receives their moves through
// SubmitAction. Exactly one action request is outstanding at a time.
type Engine struct {
	id    string
	name  string
	rules Rules

	state     State
	ts        *TableState
	handID    string
	handChips int // chip total fixed at hand start

	toAct           map[string]bool
	pendingToken    ClockToken
	pendingDeadline time.Time
	departed        map[string]bool

	store    events.EventStore
	handlers []events.EventHandler
	actors   map[string]PlayerActor
	clock    *ActionClock
	deckFn   func() cards.Stack
	rng      *rand.Rand

	cmds   chan command
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithDeckSource replaces the shuffled-deck source, mainly for tests
// that need a stacked deck.
func WithDeckSource(fn func() cards.Stack) Option {
	return func(e *Engine) { e.deckFn = fn }
}

// WithRand replaces the seat-assignment randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithEventHandler subscribes a handler to every event the table emits.
// Handlers run on the engine goroutine and must not block.
func WithEventHandler(handler events.EventHandler) Option {
	return func(e *Engine) { e.handlers = append(e.handlers, handler) }
}

// NewEngine creates a table engine. A malformed configuration fails
// construction with a TableConfigurationError.
func NewEngine(name string, rules Rules, store events.EventStore, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		id:    uuid.NewString(),
		name:  name,
		rules: rules,
		state: StateWaitingForPlayers,
		ts: &TableState{
			Players:        make(map[string]*Player),
			Seats:          make([]string, rules.MaxSeats),
			Button:         -1,
			ActionPosition: -1,
			Pot:            pot.New(),
		},
		toAct:    make(map[string]bool),
		departed: make(map[string]bool),
		store:    store,
		actors:   make(map[string]PlayerActor),
		deckFn:   func() cards.Stack { return cards.ShuffleCards(cards.NewDeck52()) },
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cmds:     make(chan command, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
	e.clock = NewActionClock(e.fireTimeout)

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// ID returns the table's unique identifier.
func (e *Engine) ID() string { return e.id }

// Name returns the table's display name.
func (e *Engine) Name() string { return e.name }

// Rules returns the table configuration.
func (e *Engine) Rules() Rules { return e.rules }

// Start launches the engine goroutine.
func (e *Engine) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run()
	}()
}

// Stop shuts the engine down and waits for it to finish.
func (e *Engine) Stop() {
	e.cancel()
	e.wg.Wait()
}

func (e *Engine) run() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case cmd := <-e.cmds:
			e.dispatch(cmd)
		}
	}
}

// dispatch processes one command. Unrecognized commands are logged and
// ignored so the table stays available.
func (e *Engine) dispatch(cmd command) {
	switch c := cmd.(type) {
	case joinCmd:
		result, err := e.handleJoin(c.req, c.actor)
		c.reply <- joinReply{result: result, err: err}
	case leaveCmd:
		c.reply <- e.handleLeave(c.name)
	case actionCmd:
		c.reply <- e.handleAction(c.action)
	case stateCmd:
		c.reply <- e.viewFor(c.viewer)
	case timeoutCmd:
		e.handleTimeout(c.token)
	case startHandCmd:
		e.startHand()
	default:
		log.Printf("table %s: ignoring unknown command %T", e.id, cmd)
	}
}

type command interface{}

type joinCmd struct {
	req   JoinRequest
	actor PlayerActor
	reply chan joinReply
}

type joinReply struct {
	result JoinResult
	err    error
}

type leaveCmd struct {
	name  string
	reply chan error
}

type actionCmd struct {
	action Action
	reply  chan error
}

type stateCmd struct {
	viewer string
	reply  chan TableView
}

type timeoutCmd struct {
	token ClockToken
}

type startHandCmd struct{}

// JoinRequest asks for a seat. Seat is a requested position, or -1 for
// any free seat.
type JoinRequest struct {
	Name  string
	BuyIn int
	Seat  int
}

// JoinResult reports the assigned seat and a sanitized state snapshot.
type JoinResult struct {
	Position int
	View     TableView
}

// Join seats a player. Joins are serialized through the engine queue
// with gameplay events, so a join arriving mid-hand is admitted to the
// next hand only.
func (e *Engine) Join(req JoinRequest, actor PlayerActor) (JoinResult, error) {
	reply := make(chan joinReply, 1)
	if err := e.post(joinCmd{req: req, actor: actor, reply: reply}); err != nil {
		return JoinResult{}, err
	}
	select {
	case r := <-reply:
		return r.result, r.err
	case <-e.ctx.Done():
		return JoinResult{}, e.ctx.Err()
	}
}

// Leave removes a player. Mid-hand, a player still due to act is folded
// and the seat frees up once the hand completes.
func (e *Engine) Leave(name string) error {
	reply := make(chan error, 1)
	if err := e.post(leaveCmd{name: name, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

// SubmitAction applies a player's move. A rejection leaves the pending
// deadline untouched so the player can resubmit.
func (e *Engine) SubmitAction(action Action) error {
	reply := make(chan error, 1)
	if err := e.post(actionCmd{action: action, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

// GetState returns the sanitized snapshot as seen by viewer ("" for a
// spectator).
func (e *Engine) GetState(viewer string) TableView {
	reply := make(chan TableView, 1)
	if err := e.post(stateCmd{viewer: viewer, reply: reply}); err != nil {
		return TableView{}
	}
	select {
	case view := <-reply:
		return view
	case <-e.ctx.Done():
		return TableView{}
	}
}

func (e *Engine) post(cmd command) error {
	select {
	case e.cmds <- cmd:
		return nil
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

func (e *Engine) fireTimeout(token ClockToken) {
	select {
	case e.cmds <- timeoutCmd{token: token}:
	case <-e.ctx.Done():
	}
}

func (e *Engine) handleJoin(req JoinRequest, actor PlayerActor) (JoinResult, error) {
	if req.Name == "" {
		return JoinResult{}, errors.New("player name is required")
	}
	if _, exists := e.ts.Players[req.Name]; exists {
		return JoinResult{}, errors.New("player already at table")
	}
	if req.BuyIn <= 0 {
		return JoinResult{}, errors.New("buy-in must be positive")
	}

	position, err := e.assignSeat(req.Seat)
	if err != nil {
		return JoinResult{}, err
	}

	player := &Player{
		Name:     req.Name,
		Stack:    req.BuyIn,
		Position: position,
		Status:   StatusSittingOut,
	}
	e.ts.Players[req.Name] = player
	e.ts.Seats[position] = req.Name
	if actor != nil {
		e.actors[req.Name] = actor
	}

	e.emit(events.PlayerJoinedTable{
		TableID:  e.id,
		Player:   req.Name,
		Position: position,
		At:       time.Now(),
	})

	if e.state == StateWaitingForPlayers && e.seatedCount() >= 2 {
		e.startHand()
	}

	return JoinResult{Position: position, View: e.viewFor(req.Name)}, nil
}

func (e *Engine) assignSeat(requested int) (int, error) {
	if requested >= 0 {
		if requested >= len(e.ts.Seats) {
			return 0, errors.New("no such seat")
		}
		if e.ts.Seats[requested] != "" {
			return 0, errors.New("seat is taken")
		}
		return requested, nil
	}

	var free []int
	for pos, name := range e.ts.Seats {
		if name == "" {
			free = append(free, pos)
		}
	}
	if len(free) == 0 {
		return 0, errors.New("table is full")
	}
	return free[e.rng.Intn(len(free))], nil
}

func (e *Engine) handleLeave(name string) error {
	player, ok := e.ts.Players[name]
	if !ok {
		return errors.New("player not found")
	}

	if e.inHand() && (player.Status == StatusActive || player.Status == StatusAllIn) {
		// The seat stays occupied until the hand ends so pot accounting
		// keeps its reference; an all-in hand stays live.
		wasPending := e.pendingToken != 0 && e.currentPlayerName() == name

		if player.Status == StatusActive {
			player.Status = StatusFolded
			e.ts.Pot.Fold(name)
			delete(e.toAct, name)
		}
		e.departed[name] = true
		delete(e.actors, name)

		e.emit(events.PlayerLeftTable{TableID: e.id, Player: name, At: time.Now()})

		if wasPending {
			e.clock.Cancel(e.pendingToken)
			e.pendingToken = 0
			e.advance()
		} else if e.contendersCount() <= 1 {
			e.finishUncontested()
		}
		return nil
	}

	e.removePlayer(name)
	e.emit(events.PlayerLeftTable{TableID: e.id, Player: name, At: time.Now()})
	return nil
}

func (e *Engine) removePlayer(name string) {
	player, ok := e.ts.Players[name]
	if !ok {
		return
	}
	e.ts.Seats[player.Position] = ""
	delete(e.ts.Players, name)
	delete(e.actors, name)
	delete(e.toAct, name)
	delete(e.departed, name)
}

func (e *Engine) seatedCount() int {
	count := 0
	for _, name := range e.ts.Seats {
		if name != "" {
			count++
		}
	}
	return count
}

func (e *Engine) fundedCount() int {
	count := 0
	for _, player := range e.ts.Players {
		if player.Stack > 0 {
			count++
		}
	}
	return count
}

// contendersCount counts players still in the running for the pot.
func (e *Engine) contendersCount() int {
	count := 0
	for _, player := range e.ts.Players {
		if player.Status == StatusActive || player.Status == StatusAllIn {
			count++
		}
	}
	return count
}

func (e *Engine) inHand() bool {
	switch e.state {
	case StatePreFlop, StateFlop, StateTurn, StateRiver, StateShowdown:
		return true
	}
	return false
}

func (e *Engine) currentPlayerName() string {
	if e.ts.ActionPosition < 0 || e.ts.ActionPosition >= len(e.ts.Seats) {
		return ""
	}
	return e.ts.Seats[e.ts.ActionPosition]
}

// nextPositionWhere walks seats clockwise from the given position and
// returns the first occupied seat whose player satisfies ok, or -1.
func (e *Engine) nextPositionWhere(from int, ok func(*Player) bool) int {
	n := len(e.ts.Seats)
	for i := 1; i <= n; i++ {
		pos := (from + i + n) % n
		name := e.ts.Seats[pos]
		if name == "" {
			continue
		}
		if ok(e.ts.Players[name]) {
			return pos
		}
	}
	return -1
}

func (e *Engine) nextToAct(from int) int {
	return e.nextPositionWhere(from, func(p *Player) bool {
		return p.Status == StatusActive && e.toAct[p.Name]
	})
}

func (e *Engine) nextActive(from int) int {
	return e.nextPositionWhere(from, func(p *Player) bool {
		return p.Status == StatusActive
	})
}

func (e *Engine) emit(event events.Event) {
	if e.store != nil {
		if err := e.store.Append(event); err != nil {
			log.Printf("table %s: failed to append event %s: %v", e.id, event.EventName(), err)
		}
	}
	for _, handler := range e.handlers {
		handler(event)
	}
	if e.rules.Debug {
		log.Printf("table %s event %s\n%s", e.id, event.EventName(), litter.Sdump(event))
	}
}

// viewFor builds the sanitized projection for one viewer: the viewer's
// own hole cards, public state, never the deck or other hole cards.
func (e *Engine) viewFor(viewer string) TableView {
	view := TableView{
		TableID:        e.id,
		HandID:         e.handID,
		State:          e.state,
		Street:         e.ts.Street,
		Button:         e.ts.Button,
		ActionPosition: e.ts.ActionPosition,
		CurrentBet:     e.ts.CurrentBet,
		MinRaise:       e.ts.MinRaise,
		CommunityCards: e.ts.CommunityCards.Shorthands(),
		Pot:            e.ts.Pot.Total(),
	}

	for _, sp := range e.ts.Pot.SidePots() {
		view.SidePots = append(view.SidePots, SidePotView{Amount: sp.Amount, Eligible: sp.Eligible})
	}

	for _, name := range e.ts.Seats {
		if name == "" {
			continue
		}
		player := e.ts.Players[name]
		pv := PlayerView{
			Name:                player.Name,
			Stack:               player.Stack,
			Position:            player.Position,
			Status:              player.Status,
			CommittedThisStreet: player.CommittedThisStreet,
			CommittedThisHand:   player.CommittedThisHand,
		}
		if name == viewer {
			pv.HoleCards = player.HoleCards.Shorthands()
			view.HoleCards = pv.HoleCards
		}
		view.Players = append(view.Players, pv)
	}

	return view
}

func (e *Engine) notifyAll() {
	for name, actor := range e.actors {
		view := e.viewFor(name)
		a := actor
		go a.NotifyGameState(view)
	}
}
