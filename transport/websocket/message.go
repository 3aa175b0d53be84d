package websocket

import (
	"encoding/json"

	"github.com/playgrid/tictactoe-backend/internal/entity"
)

// Client-to-server actions.
const (
	actionCreateRoom  = "create-room"
	actionJoinRoom    = "join-room"
	actionMakeMove    = "make-move"
	actionRestartGame = "restart-game"
)

// Server-to-client actions.
const (
	actionRoomCreated        = "room-created"
	actionRoomJoined         = "room-joined"
	actionPlayerJoined       = "player-joined"
	actionGameUpdated        = "game-updated"
	actionGameRestarted      = "game-restarted"
	actionPlayerDisconnected = "player-disconnected"
	actionError              = "error"
)

// Message is the envelope every frame carries: a named action and its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type createRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type makeMovePayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Position *int   `json:"position"`
}

type restartGamePayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type roomCreatedPayload struct {
	RoomCode  string            `json:"roomCode"`
	Player    *entity.Player    `json:"player"`
	GameState *entity.GameState `json:"gameState"`
}

type roomJoinedPayload struct {
	RoomCode  string            `json:"roomCode"`
	Player    *entity.Player    `json:"player"`
	GameState *entity.GameState `json:"gameState"`
	Players   []*entity.Player  `json:"players"`
}

type playerJoinedPayload struct {
	Player    *entity.Player    `json:"player"`
	GameState *entity.GameState `json:"gameState"`
	Players   []*entity.Player  `json:"players"`
}

type gameUpdatedPayload struct {
	GameState *entity.GameState `json:"gameState"`
	LastMove  *entity.LastMove  `json:"lastMove"`
}

type gameRestartedPayload struct {
	GameState *entity.GameState `json:"gameState"`
	Players   []*entity.Player  `json:"players"`
}

// noticePayload carries player-disconnected and error messages.
type noticePayload struct {
	Message string `json:"message"`
}
