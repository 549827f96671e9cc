package server

import (
	"errors"
	"sync"

	"github.com/lazharichir/holdem/events"
	"github.com/lazharichir/holdem/table"
)

// Lobby owns the running table engines. All tables append to a shared
// event store.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Engine
	store  events.EventStore
}

// NewLobby creates an empty lobby backed by the given event store.
func NewLobby(store events.EventStore) *Lobby {
	return &Lobby{
		tables: make(map[string]*table.Engine),
		store:  store,
	}
}

// CreateTable starts a new table engine with the given rules.
func (l *Lobby) CreateTable(name string, rules table.Rules) (*table.Engine, error) {
	engine, err := table.NewEngine(name, rules, l.store)
	if err != nil {
		return nil, err
	}
	engine.Start()

	l.mu.Lock()
	l.tables[engine.ID()] = engine
	l.mu.Unlock()

	return engine, nil
}

// GetTable returns the engine for a table ID.
func (l *Lobby) GetTable(tableID string) (*table.Engine, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	engine, ok := l.tables[tableID]
	if !ok {
		return nil, errors.New("table not found")
	}
	return engine, nil
}

// Tables returns all running engines.
func (l *Lobby) Tables() []*table.Engine {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*table.Engine, 0, len(l.tables))
	for _, engine := range l.tables {
		out = append(out, engine)
	}
	return out
}

// Shutdown stops every table engine.
func (l *Lobby) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, engine := range l.tables {
		engine.Stop()
		delete(l.tables, id)
	}
}
