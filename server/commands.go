package server

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lazharichir/holdem/server/connection"
	"github.com/lazharichir/holdem/table"
)

// CommandRouter decodes client frames and routes them to the right
// table engine.
type CommandRouter struct {
	lobby   *Lobby
	connMgr *connection.Manager
}

// NewCommandRouter creates a new command router.
func NewCommandRouter(lobby *Lobby, connMgr *connection.Manager) *CommandRouter {
	return &CommandRouter{lobby: lobby, connMgr: connMgr}
}

// commandEnvelope is the common shape of every client frame.
type commandEnvelope struct {
	Name string `json:"name"`
}

type joinTableCommand struct {
	TableID    string `json:"tableId"`
	PlayerName string `json:"playerName"`
	BuyIn      int    `json:"buyIn"`
	Seat       *int   `json:"seat"`
}

type leaveTableCommand struct {
	TableID string `json:"tableId"`
}

type actCommand struct {
	TableID  string `json:"tableId"`
	Kind     string `json:"kind"`
	Amount   int    `json:"amount"`
	Position int    `json:"position"`
}

type getStateCommand struct {
	TableID string `json:"tableId"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type joinedFrame struct {
	Type     string          `json:"type"`
	TableID  string          `json:"tableId"`
	Position int             `json:"position"`
	View     table.TableView `json:"view"`
}

// HandleCommand processes one frame from a client. Unrecognized
// commands are logged and dropped so a misbehaving client cannot
// disturb the table.
func (r *CommandRouter) HandleCommand(client *connection.Client, message []byte) error {
	var envelope commandEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		return fmt.Errorf("decoding command envelope: %w", err)
	}

	switch envelope.Name {
	case "join_table":
		return r.handleJoinTable(client, message)
	case "leave_table":
		return r.handleLeaveTable(client, message)
	case "act":
		return r.handleAct(client, message)
	case "get_state":
		return r.handleGetState(client, message)
	default:
		log.Printf("Ignoring unknown command %q from client %s", envelope.Name, client.ID)
		return nil
	}
}

func (r *CommandRouter) handleJoinTable(client *connection.Client, message []byte) error {
	var cmd joinTableCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		return fmt.Errorf("decoding join_table: %w", err)
	}

	engine, err := r.lobby.GetTable(cmd.TableID)
	if err != nil {
		r.sendError(client, err)
		return nil
	}

	seat := -1
	if cmd.Seat != nil {
		seat = *cmd.Seat
	}

	actor := &wsActor{clientID: client.ID, connMgr: r.connMgr}
	result, err := engine.Join(table.JoinRequest{
		Name:  cmd.PlayerName,
		BuyIn: cmd.BuyIn,
		Seat:  seat,
	}, actor)
	if err != nil {
		r.sendError(client, err)
		return nil
	}

	client.PlayerName = cmd.PlayerName
	client.TableID = cmd.TableID

	r.send(client, joinedFrame{
		Type:     "joined",
		TableID:  cmd.TableID,
		Position: result.Position,
		View:     result.View,
	})
	return nil
}

func (r *CommandRouter) handleLeaveTable(client *connection.Client, message []byte) error {
	var cmd leaveTableCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		return fmt.Errorf("decoding leave_table: %w", err)
	}

	engine, err := r.lobby.GetTable(cmd.TableID)
	if err != nil {
		r.sendError(client, err)
		return nil
	}

	if err := engine.Leave(client.PlayerName); err != nil {
		r.sendError(client, err)
		return nil
	}

	client.TableID = ""
	return nil
}

func (r *CommandRouter) handleAct(client *connection.Client, message []byte) error {
	var cmd actCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		return fmt.Errorf("decoding act: %w", err)
	}

	engine, err := r.lobby.GetTable(cmd.TableID)
	if err != nil {
		r.sendError(client, err)
		return nil
	}

	err = engine.SubmitAction(table.Action{
		Player:   client.PlayerName,
		Kind:     table.ActionKind(cmd.Kind),
		Amount:   cmd.Amount,
		Position: cmd.Position,
	})
	if err != nil {
		// Rejections are recoverable; the deadline is still running and
		// the client may resubmit.
		r.sendError(client, err)
	}
	return nil
}

func (r *CommandRouter) handleGetState(client *connection.Client, message []byte) error {
	var cmd getStateCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		return fmt.Errorf("decoding get_state: %w", err)
	}

	engine, err := r.lobby.GetTable(cmd.TableID)
	if err != nil {
		r.sendError(client, err)
		return nil
	}

	r.send(client, gameStateFrame{Type: "game_state", View: engine.GetState(client.PlayerName)})
	return nil
}

func (r *CommandRouter) send(client *connection.Client, frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Error marshaling frame for client %s: %v", client.ID, err)
		return
	}
	r.connMgr.SendToClient(client.ID, payload)
}

func (r *CommandRouter) sendError(client *connection.Client, err error) {
	r.send(client, errorFrame{Type: "error", Message: err.Error()})
}
