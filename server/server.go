package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lazharichir/holdem/events"
	"github.com/lazharichir/holdem/server/connection"
	"github.com/lazharichir/holdem/table"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, implement proper origin checks
	},
}

// Server exposes the table engines over WebSocket plus a small REST
// surface for table management.
type Server struct {
	lobby     *Lobby
	connMgr   *connection.Manager
	cmdRouter *CommandRouter
}

// TableResponse represents a table in API responses
type TableResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	State       string `json:"state"`
	SmallBlind  int    `json:"smallBlind"`
	BigBlind    int    `json:"bigBlind"`
	MaxSeats    int    `json:"maxSeats"`
}

// CreateTableRequest represents the request to create a new table
type CreateTableRequest struct {
	Name       string `json:"name"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
	MaxSeats   int    `json:"maxSeats"`
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// NewServer creates a new table server.
func NewServer() *Server {
	lobby := NewLobby(events.NewInMemoryEventStore())
	connMgr := connection.NewManager()
	cmdRouter := NewCommandRouter(lobby, connMgr)

	return &Server{
		lobby:     lobby,
		connMgr:   connMgr,
		cmdRouter: cmdRouter,
	}
}

// Lobby exposes the server's lobby.
func (s *Server) Lobby() *Lobby { return s.lobby }

// Start begins the server on the specified port
func (s *Server) Start(port string) error {
	go s.connMgr.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/api/tables", corsMiddleware(s.handleGetTables))
	http.HandleFunc("/api/tables/create", corsMiddleware(s.handleCreateTable))

	log.Printf("Starting server on port %s", port)
	return http.ListenAndServe("0.0.0.0:"+port, nil)
}

// handleWebSocket handles incoming WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	clientID := uuid.NewString()
	log.Printf("New client connected: %s with ID: %s", r.RemoteAddr, clientID)

	client := &connection.Client{
		ID:   clientID,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	s.connMgr.Register <- client

	go s.readPump(client)
	go s.writePump(client)
}

// readPump reads messages from the WebSocket connection
func (s *Server) readPump(client *connection.Client) {
	defer func() {
		s.dropClient(client)
		s.connMgr.Unregister <- client
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error: %v", err)
			}
			break
		}

		if err := s.cmdRouter.HandleCommand(client, message); err != nil {
			log.Printf("Error handling command: %v", err)
		}
	}
}

// writePump sends messages to the WebSocket connection
func (s *Server) writePump(client *connection.Client) {
	defer func() {
		client.Conn.Close()
	}()

	for {
		message, ok := <-client.Send
		if !ok {
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Printf("Error writing message: %v", err)
			return
		}
	}
}

// dropClient removes a disconnected client from its table. The engine
// folds the seat if it is mid-hand.
func (s *Server) dropClient(client *connection.Client) {
	if client.TableID == "" || client.PlayerName == "" {
		return
	}
	engine, err := s.lobby.GetTable(client.TableID)
	if err != nil {
		return
	}
	if err := engine.Leave(client.PlayerName); err != nil {
		log.Printf("Error removing %s from table %s: %v", client.PlayerName, client.TableID, err)
	}
}

// handleGetTables returns a list of all tables
func (s *Server) handleGetTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	engines := s.lobby.Tables()
	tableResponses := make([]TableResponse, 0, len(engines))

	for _, engine := range engines {
		view := engine.GetState("")
		rules := engine.Rules()

		tableResponses = append(tableResponses, TableResponse{
			ID:          engine.ID(),
			Name:        engine.Name(),
			PlayerCount: len(view.Players),
			State:       string(view.State),
			SmallBlind:  rules.SmallBlind,
			BigBlind:    rules.BigBlind,
			MaxSeats:    rules.MaxSeats,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tableResponses)
}

// handleCreateTable creates a new table
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var createReq CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createReq.Name == "" {
		http.Error(w, "Table name is required", http.StatusBadRequest)
		return
	}

	rules := table.DefaultRules()
	if createReq.SmallBlind > 0 {
		rules.SmallBlind = createReq.SmallBlind
	}
	if createReq.BigBlind > 0 {
		rules.BigBlind = createReq.BigBlind
	}
	if createReq.MaxSeats > 0 {
		rules.MaxSeats = createReq.MaxSeats
	}

	engine, err := s.lobby.CreateTable(createReq.Name, rules)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := TableResponse{
		ID:         engine.ID(),
		Name:       engine.Name(),
		State:      string(table.StateWaitingForPlayers),
		SmallBlind: rules.SmallBlind,
		BigBlind:   rules.BigBlind,
		MaxSeats:   rules.MaxSeats,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}
