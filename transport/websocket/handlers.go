package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
	"github.com/playgrid/tictactoe-backend/internal/entity"
)

// clientErrorMessage maps a room operation failure to the exact message string
// clients match on. Unexpected failures fall back to the per-action message.
func clientErrorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, apperror.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, apperror.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, apperror.ErrGameAlreadyOver):
		return "Game is already over"
	case errors.Is(err, apperror.ErrInvalidPosition):
		return "Invalid move"
	default:
		return fallback
	}
}

func (that *Server) handleCreateRoom(client *Client, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom", "connectionID", client.id)

	var payloadReq createRoomPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.PlayerName == "" {
		log.Error("player name is missing in payload")
		return that.sendError(client, "Player name is required")
	}

	room, err := that.rooms.CreateRoom(client.id, payloadReq.PlayerName)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendError(client, "Failed to create room")
	}

	payloadResp := roomCreatedPayload{
		RoomCode:  room.Code,
		Player:    room.Players[0],
		GameState: room.Game,
	}

	if err = that.sendMessage(client, actionRoomCreated, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("room created", "roomCode", room.Code)

	return nil
}

func (that *Server) handleJoinRoom(client *Client, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "connectionID", client.id)

	var payloadReq joinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.PlayerName == "" {
		log.Error("player name is missing in payload")
		return that.sendError(client, "Player name is required")
	}

	room, player, err := that.rooms.JoinRoom(payloadReq.RoomCode, client.id, payloadReq.PlayerName)
	if err != nil {
		log.Error("failed to join room", "roomCode", payloadReq.RoomCode, "error", err)
		return that.sendError(client, clientErrorMessage(err, "Failed to join room"))
	}

	log = log.With("roomCode", room.Code)

	joinedResp := roomJoinedPayload{
		RoomCode:  room.Code,
		Player:    player,
		GameState: room.Game,
		Players:   room.Players,
	}

	if err = that.sendMessage(client, actionRoomJoined, joinedResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	// The members that were already seated get player-joined instead.
	notifyResp := playerJoinedPayload{
		Player:    player,
		GameState: room.Game,
		Players:   room.Players,
	}

	for _, member := range room.Players {
		if member.ID == player.ID {
			continue
		}

		that.broadcast([]*entity.Player{member}, actionPlayerJoined, notifyResp)
	}

	log.Info("player joined room")

	return nil
}

func (that *Server) handleMakeMove(client *Client, msg *Message) error {
	log := that.logger.With("method", "handleMakeMove", "connectionID", client.id)

	var payloadReq makeMovePayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// A missing position runs through the same validation pipeline as an
	// out-of-range one, so error precedence matches the contract: an unknown
	// room still answers "Room not found", not a field complaint.
	position := -1
	if payloadReq.Position != nil {
		position = *payloadReq.Position
	}

	room, lastMove, err := that.rooms.ApplyMove(payloadReq.RoomCode, payloadReq.PlayerID, position)
	if err != nil {
		log.Error("failed to make move", "roomCode", payloadReq.RoomCode, "error", err)
		return that.sendError(client, clientErrorMessage(err, "Failed to make move"))
	}

	payloadResp := gameUpdatedPayload{
		GameState: room.Game,
		LastMove:  lastMove,
	}

	that.broadcast(room.Players, actionGameUpdated, payloadResp)

	log.Info("move broadcast", "roomCode", room.Code, "position", position)

	return nil
}

func (that *Server) handleRestartGame(client *Client, msg *Message) error {
	log := that.logger.With("method", "handleRestartGame", "connectionID", client.id)

	var payloadReq restartGamePayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.RestartGame(payloadReq.RoomCode, payloadReq.PlayerID)
	if err != nil {
		log.Error("failed to restart game", "roomCode", payloadReq.RoomCode, "error", err)
		return that.sendError(client, clientErrorMessage(err, "Failed to restart game"))
	}

	payloadResp := gameRestartedPayload{
		GameState: room.Game,
		Players:   room.Players,
	}

	that.broadcast(room.Players, actionGameRestarted, payloadResp)

	log.Info("game restarted", "roomCode", room.Code)

	return nil
}
