package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playgrid/tictactoe-backend/internal/entity"
	"github.com/playgrid/tictactoe-backend/internal/repository"
	"github.com/playgrid/tictactoe-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readTimeout = 2 * time.Second

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewRoomManager(logger, repository.NewRoomRepository())

	ts := httptest.NewServer(http.HandlerFunc(New(logger, manager).ServeWS))
	t.Cleanup(ts.Close)

	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	payloadBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	data, err := json.Marshal(Message{Action: action, Payload: payloadBytes})
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readAction reads the next frame and asserts its action before decoding the
// payload into out.
func readAction(t *testing.T, conn *websocket.Conn, action string, out any) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	require.Equal(t, action, message.Action)

	if out != nil {
		require.NoError(t, json.Unmarshal(message.Payload, out))
	}
}

func createRoom(t *testing.T, conn *websocket.Conn, name string) roomCreatedPayload {
	t.Helper()

	sendAction(t, conn, actionCreateRoom, createRoomPayload{PlayerName: name})

	var created roomCreatedPayload
	readAction(t, conn, actionRoomCreated, &created)

	return created
}

func TestServer_CreateRoom(t *testing.T) {
	t.Run("Creator gets room-created with host X and a fresh game", func(t *testing.T) {
		// Given: one connected client
		ts := newTestServer(t)
		conn := dial(t, ts)

		// When: creating a room as Alice
		created := createRoom(t, conn, "Alice")

		// Then: the reply carries the room code, host player and game state
		assert.Len(t, created.RoomCode, 6)
		require.NotNil(t, created.Player)
		assert.NotEmpty(t, created.Player.ID)
		assert.Equal(t, "Alice", created.Player.Name)
		assert.Equal(t, entity.MarkX, created.Player.Symbol)
		assert.True(t, created.Player.IsHost)
		require.NotNil(t, created.GameState)
		assert.Equal(t, entity.MarkX, created.GameState.CurrentTurn)
		assert.False(t, created.GameState.IsGameOver)
	})

	t.Run("Missing player name yields an error to the requester", func(t *testing.T) {
		// Given: one connected client
		ts := newTestServer(t)
		conn := dial(t, ts)

		// When: creating a room without a name
		sendAction(t, conn, actionCreateRoom, createRoomPayload{})

		// Then: a single error notice comes back
		var notice noticePayload
		readAction(t, conn, actionError, &notice)
		assert.Equal(t, "Player name is required", notice.Message)
	})
}

func TestServer_JoinRoom(t *testing.T) {
	t.Run("Joiner gets room-joined and the host gets player-joined", func(t *testing.T) {
		// Given: Alice hosting a room
		ts := newTestServer(t)
		alice := dial(t, ts)
		created := createRoom(t, alice, "Alice")

		// When: Bob joins
		bob := dial(t, ts)
		sendAction(t, bob, actionJoinRoom, joinRoomPayload{RoomCode: created.RoomCode, PlayerName: "Bob"})

		// Then: Bob is confirmed with O
		var joined roomJoinedPayload
		readAction(t, bob, actionRoomJoined, &joined)
		assert.Equal(t, created.RoomCode, joined.RoomCode)
		assert.Equal(t, entity.MarkO, joined.Player.Symbol)
		assert.False(t, joined.Player.IsHost)
		require.Len(t, joined.Players, 2)
		assert.Equal(t, "Alice", joined.Players[0].Name)
		assert.Equal(t, "Bob", joined.Players[1].Name)

		// And: Alice is notified
		var notified playerJoinedPayload
		readAction(t, alice, actionPlayerJoined, &notified)
		assert.Equal(t, "Bob", notified.Player.Name)
		require.Len(t, notified.Players, 2)
	})

	t.Run("Unknown code yields Room not found", func(t *testing.T) {
		// Given: a connected client and no rooms
		ts := newTestServer(t)
		conn := dial(t, ts)

		// When: joining a room that does not exist
		sendAction(t, conn, actionJoinRoom, joinRoomPayload{RoomCode: "ZZZZZZ", PlayerName: "Bob"})

		// Then: the requester gets the error notice
		var notice noticePayload
		readAction(t, conn, actionError, &notice)
		assert.Equal(t, "Room not found", notice.Message)
	})

	t.Run("Full room yields Room is full", func(t *testing.T) {
		// Given: a full room
		ts := newTestServer(t)
		alice := dial(t, ts)
		created := createRoom(t, alice, "Alice")

		bob := dial(t, ts)
		sendAction(t, bob, actionJoinRoom, joinRoomPayload{RoomCode: created.RoomCode, PlayerName: "Bob"})
		readAction(t, bob, actionRoomJoined, nil)

		// When: a third client tries to join
		carol := dial(t, ts)
		sendAction(t, carol, actionJoinRoom, joinRoomPayload{RoomCode: created.RoomCode, PlayerName: "Carol"})

		// Then: only Carol hears about it
		var notice noticePayload
		readAction(t, carol, actionError, &notice)
		assert.Equal(t, "Room is full", notice.Message)
	})
}

func TestServer_MakeMove(t *testing.T) {
	position := func(p int) *int { return &p }

	setup := func(t *testing.T) (*httptest.Server, *websocket.Conn, *websocket.Conn, roomCreatedPayload, roomJoinedPayload) {
		t.Helper()

		ts := newTestServer(t)
		alice := dial(t, ts)
		created := createRoom(t, alice, "Alice")

		bob := dial(t, ts)
		sendAction(t, bob, actionJoinRoom, joinRoomPayload{RoomCode: created.RoomCode, PlayerName: "Bob"})

		var joined roomJoinedPayload
		readAction(t, bob, actionRoomJoined, &joined)
		readAction(t, alice, actionPlayerJoined, nil)

		return ts, alice, bob, created, joined
	}

	t.Run("Valid move is broadcast to both players", func(t *testing.T) {
		// Given: Alice and Bob in a room, X to move
		_, alice, bob, created, _ := setup(t)

		// When: Alice takes the center
		sendAction(t, alice, actionMakeMove, makeMovePayload{
			RoomCode: created.RoomCode,
			PlayerID: created.Player.ID,
			Position: position(4),
		})

		// Then: both connections get the same update
		for _, conn := range []*websocket.Conn{alice, bob} {
			var updated gameUpdatedPayload
			readAction(t, conn, actionGameUpdated, &updated)
			assert.Equal(t, entity.MarkX, updated.GameState.Board[4])
			assert.Equal(t, entity.MarkO, updated.GameState.CurrentTurn)
			require.NotNil(t, updated.LastMove)
			assert.Equal(t, "Alice", updated.LastMove.Player)
			assert.Equal(t, 4, updated.LastMove.Position)
			assert.Equal(t, entity.MarkX, updated.LastMove.Symbol)
		}
	})

	t.Run("Out-of-turn move errors to the requester only", func(t *testing.T) {
		// Given: Alice and Bob in a room, X to move
		_, _, bob, created, joined := setup(t)

		// When: Bob moves first
		sendAction(t, bob, actionMakeMove, makeMovePayload{
			RoomCode: created.RoomCode,
			PlayerID: joined.Player.ID,
			Position: position(0),
		})

		// Then: Bob gets the error
		var notice noticePayload
		readAction(t, bob, actionError, &notice)
		assert.Equal(t, "Not your turn", notice.Message)
	})

	t.Run("Missing position in an unknown room yields Room not found", func(t *testing.T) {
		// Given: a connected client and no rooms
		ts := newTestServer(t)
		conn := dial(t, ts)

		// When: sending make-move with no position for a room that does not exist
		sendAction(t, conn, actionMakeMove, makeMovePayload{RoomCode: "ZZZZZZ", PlayerID: "whoever"})

		// Then: the room check still fires first
		var notice noticePayload
		readAction(t, conn, actionError, &notice)
		assert.Equal(t, "Room not found", notice.Message)
	})

	t.Run("Missing position on your own turn yields Invalid move", func(t *testing.T) {
		// Given: Alice and Bob in a room, X to move
		_, alice, _, created, _ := setup(t)

		// When: Alice sends make-move with no position
		sendAction(t, alice, actionMakeMove, makeMovePayload{
			RoomCode: created.RoomCode,
			PlayerID: created.Player.ID,
		})

		// Then: it fails like any out-of-range position
		var notice noticePayload
		readAction(t, alice, actionError, &notice)
		assert.Equal(t, "Invalid move", notice.Message)
	})

	t.Run("Game can be restarted and replayed", func(t *testing.T) {
		// Given: a room where Alice made one move
		_, alice, bob, created, joined := setup(t)
		sendAction(t, alice, actionMakeMove, makeMovePayload{
			RoomCode: created.RoomCode,
			PlayerID: created.Player.ID,
			Position: position(4),
		})
		readAction(t, alice, actionGameUpdated, nil)
		readAction(t, bob, actionGameUpdated, nil)

		// When: Bob restarts
		sendAction(t, bob, actionRestartGame, restartGamePayload{
			RoomCode: created.RoomCode,
			PlayerID: joined.Player.ID,
		})

		// Then: both get a fresh state with the seats preserved
		for _, conn := range []*websocket.Conn{alice, bob} {
			var restarted gameRestartedPayload
			readAction(t, conn, actionGameRestarted, &restarted)
			assert.Equal(t, entity.MarkX, restarted.GameState.CurrentTurn)
			assert.False(t, restarted.GameState.IsGameOver)
			assert.Equal(t, entity.EmptyCell, restarted.GameState.Board[4])
			require.Len(t, restarted.Players, 2)
			assert.True(t, restarted.Players[0].IsHost)
		}
	})
}

func TestServer_Disconnect(t *testing.T) {
	t.Run("Survivor is told who disconnected", func(t *testing.T) {
		// Given: Alice and Bob in a room
		ts := newTestServer(t)
		alice := dial(t, ts)
		created := createRoom(t, alice, "Alice")

		bob := dial(t, ts)
		sendAction(t, bob, actionJoinRoom, joinRoomPayload{RoomCode: created.RoomCode, PlayerName: "Bob"})
		readAction(t, bob, actionRoomJoined, nil)
		readAction(t, alice, actionPlayerJoined, nil)

		// When: Bob drops the connection
		require.NoError(t, bob.Close())

		// Then: Alice gets the departure notice
		var notice noticePayload
		readAction(t, alice, actionPlayerDisconnected, &notice)
		assert.Equal(t, "Bob has disconnected", notice.Message)
	})
}
