package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
	"github.com/playgrid/tictactoe-backend/internal/entity"
	"github.com/playgrid/tictactoe-backend/internal/pkg"
)

var ErrCodeGeneration = errors.New("failed to generate a unique room code")

// maxCodeAttempts bounds the collision retry loop on room code generation.
const maxCodeAttempts = 16

type roomRepo interface {
	Create(room *entity.Room) error
	GetByCode(code string) (*entity.Room, error)
	DeleteByCode(code string) error
	Exists(code string) bool
	All() []*entity.Room
}

// Departure reports one room affected by a dropped connection.
type Departure struct {
	RoomCode    string
	Player      *entity.Player
	Remaining   []*entity.Player
	RoomDeleted bool
}

// RoomManager executes every room operation atomically: one mutex serializes
// all mutations, so a move either completes or fails with nothing in between.
type RoomManager struct {
	logger   *slog.Logger
	roomRepo roomRepo

	mu sync.Mutex
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo) *RoomManager {
	return &RoomManager{
		logger:   logger,
		roomRepo: roomRepo,
	}
}

// CreateRoom creates a room with a freshly generated code and seats the
// creator as host with X.
func (that *RoomManager) CreateRoom(playerID, playerName string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	code, err := that.generateUniqueCode()
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	host := &entity.Player{
		ID:     playerID,
		Name:   playerName,
		Symbol: entity.MarkX,
		IsHost: true,
	}

	room := entity.NewRoom(code, host)
	if err = that.roomRepo.Create(room); err != nil {
		return nil, fmt.Errorf("failed to store room: %w", err)
	}

	that.logger.Info("room created", "roomCode", code, "playerName", playerName)

	return room.Snapshot(), nil
}

// JoinRoom seats a second player with O.
func (that *RoomManager) JoinRoom(code, playerID, playerName string) (*entity.Room, *entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.roomRepo.GetByCode(code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to join room: %w", err)
	}

	if room.IsFull() {
		return nil, nil, apperror.ErrRoomFull
	}

	player := &entity.Player{
		ID:     playerID,
		Name:   playerName,
		Symbol: entity.MarkO,
		IsHost: false,
	}

	room.Players = append(room.Players, player)

	that.logger.Info("player joined room", "roomCode", code, "playerName", playerName)

	return room.Snapshot(), player, nil
}

// ApplyMove validates and applies one move. The validation order is a
// contract: room, then player, then turn, then game-over, then position.
func (that *RoomManager) ApplyMove(code, playerID string, position int) (*entity.Room, *entity.LastMove, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.roomRepo.GetByCode(code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply move: %w", err)
	}

	player, ok := room.PlayerByID(playerID)
	if !ok {
		return nil, nil, apperror.ErrPlayerNotFound
	}

	if err = room.Game.ApplyMove(player.Symbol, position); err != nil {
		return nil, nil, fmt.Errorf("failed to apply move: %w", err)
	}

	lastMove := &entity.LastMove{
		Player:   player.Name,
		Position: position,
		Symbol:   player.Symbol,
	}

	that.logger.Info("move applied",
		"roomCode", code, "playerName", player.Name, "position", position, "gameOver", room.Game.IsGameOver)

	return room.Snapshot(), lastMove, nil
}

// RestartGame replaces the game state wholesale. Any member may restart;
// seats and symbols are preserved.
func (that *RoomManager) RestartGame(code, playerID string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.roomRepo.GetByCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to restart game: %w", err)
	}

	player, ok := room.PlayerByID(playerID)
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	room.Game = entity.NewGameState()

	that.logger.Info("game restarted", "roomCode", code, "playerName", player.Name)

	return room.Snapshot(), nil
}

// RemovePlayer drops the connection identity from every room holding it.
// Rooms left empty are deleted; survivors are reported for notification.
func (that *RoomManager) RemovePlayer(playerID string) []Departure {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "RemovePlayer")

	var departures []Departure

	for _, room := range that.roomRepo.All() {
		player, ok := room.RemovePlayerByID(playerID)
		if !ok {
			continue
		}

		departure := Departure{
			RoomCode:  room.Code,
			Player:    player,
			Remaining: append([]*entity.Player(nil), room.Players...),
		}

		if len(room.Players) == 0 {
			if err := that.roomRepo.DeleteByCode(room.Code); err != nil {
				log.Error("failed to delete empty room", "roomCode", room.Code, "error", err)
			}

			departure.RoomDeleted = true
			log.Info("room deleted", "roomCode", room.Code)
		}

		departures = append(departures, departure)
	}

	return departures
}

// Stats returns the live room and player counts.
func (that *RoomManager) Stats() (rooms, players int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	all := that.roomRepo.All()
	for _, room := range all {
		players += len(room.Players)
	}

	return len(all), players
}

func (that *RoomManager) generateUniqueCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := pkg.GenerateRoomCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}

		if !that.roomRepo.Exists(code) {
			return code, nil
		}
	}

	return "", ErrCodeGeneration
}
