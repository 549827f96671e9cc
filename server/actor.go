package server

import (
	"encoding/json"
	"log"
	"time"

	"github.com/lazharichir/holdem/server/connection"
	"github.com/lazharichir/holdem/table"
)

// wsActor bridges a table seat to a websocket client. It satisfies the
// actor contract by only queueing frames: neither callback blocks or
// calls back into the engine.
type wsActor struct {
	clientID string
	connMgr  *connection.Manager
}

type actionRequestFrame struct {
	Type     string          `json:"type"`
	View     table.TableView `json:"view"`
	Legal    []string        `json:"legal"`
	Deadline time.Time       `json:"deadline"`
}

type gameStateFrame struct {
	Type string          `json:"type"`
	View table.TableView `json:"view"`
}

func (a *wsActor) RequestAction(view table.TableView, legal []table.ActionKind, deadline time.Time) {
	kinds := make([]string, len(legal))
	for i, k := range legal {
		kinds[i] = string(k)
	}
	a.push(actionRequestFrame{
		Type:     "action_requested",
		View:     view,
		Legal:    kinds,
		Deadline: deadline,
	})
}

func (a *wsActor) NotifyGameState(view table.TableView) {
	a.push(gameStateFrame{Type: "game_state", View: view})
}

func (a *wsActor) push(frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Error marshaling frame for client %s: %v", a.clientID, err)
		return
	}
	a.connMgr.SendToClient(a.clientID, payload)
}
