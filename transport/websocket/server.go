package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playgrid/tictactoe-backend/internal/entity"
	"github.com/playgrid/tictactoe-backend/internal/pkg"
	"github.com/playgrid/tictactoe-backend/internal/usecase"
)

type roomManager interface {
	CreateRoom(playerID, playerName string) (*entity.Room, error)
	JoinRoom(code, playerID, playerName string) (*entity.Room, *entity.Player, error)
	ApplyMove(code, playerID string, position int) (*entity.Room, *entity.LastMove, error)
	RestartGame(code, playerID string) (*entity.Room, error)
	RemovePlayer(playerID string) []usecase.Departure
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager

	upgrader websocket.Upgrader

	clientsMutex sync.RWMutex
	clients      map[string]*Client

	handlers map[string]func(client *Client, message *Message) error
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		clients: make(map[string]*Client),

		handlers: make(map[string]func(*Client, *Message) error),
	}

	server.handlers[actionCreateRoom] = server.handleCreateRoom
	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionRestartGame] = server.handleRestartGame

	return server
}

// Start - starts the WebSocket server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.ServeWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 90 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeWS upgrades the connection, issues it an identity and serves it until
// it drops. Each connection gets its own read loop and write pump.
func (that *Server) ServeWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(pkg.GenerateSessionID(), that.logger, conn)

	that.clientsMutex.Lock()
	that.clients[client.id] = client
	that.clientsMutex.Unlock()

	log.Info("connection established", "connectionID", client.id)

	go client.writePump()

	that.readLoop(client)
}

// readLoop processes inbound messages sequentially; every operation completes
// before the next frame is read, so room mutations never interleave within a
// connection.
func (that *Server) readLoop(client *Client) {
	log := that.logger.With("method", "readLoop", "connectionID", client.id)

	defer that.handleDisconnect(client)

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		if err = handler(client, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// handleDisconnect removes the player from every affected room and notifies
// the survivors. Connection loss is a lifecycle event, not an error.
func (that *Server) handleDisconnect(client *Client) {
	log := that.logger.With("method", "handleDisconnect", "connectionID", client.id)

	that.clientsMutex.Lock()
	delete(that.clients, client.id)
	that.clientsMutex.Unlock()

	client.close()

	for _, departure := range that.rooms.RemovePlayer(client.id) {
		if departure.RoomDeleted {
			continue
		}

		payload := noticePayload{
			Message: fmt.Sprintf("%s has disconnected", departure.Player.Name),
		}

		that.broadcast(departure.Remaining, actionPlayerDisconnected, payload)
	}

	log.Info("connection closed")
}

// sendMessage marshals one envelope and queues it on a single connection.
func (that *Server) sendMessage(client *Client, action string, payload any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: payloadBytes})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if !client.enqueue(data) {
		that.logger.Warn("send buffer full, dropping frame", "connectionID", client.id, "action", action)
	}

	return nil
}

// sendError reports a failure to the requesting connection only; errors are
// never broadcast.
func (that *Server) sendError(client *Client, message string) error {
	return that.sendMessage(client, actionError, noticePayload{Message: message})
}

// broadcast fans a message out to every listed player with a live connection.
func (that *Server) broadcast(players []*entity.Player, action string, payload any) {
	for _, player := range players {
		that.clientsMutex.RLock()
		client, ok := that.clients[player.ID]
		that.clientsMutex.RUnlock()

		if !ok {
			that.logger.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		if err := that.sendMessage(client, action, payload); err != nil {
			that.logger.Error("failed to send broadcast", "playerID", player.ID, "error", err)
		}
	}
}
