package entity

import "time"

const MaxPlayers = 2

// Room is an isolated two-player session keyed by a short code.
// The first player is always the host and plays X.
type Room struct {
	Code      string
	Players   []*Player
	Game      *GameState
	CreatedAt time.Time
}

func NewRoom(code string, host *Player) *Room {
	return &Room{
		Code:      code,
		Players:   []*Player{host},
		Game:      NewGameState(),
		CreatedAt: time.Now(),
	}
}

// Snapshot copies the room so callers can read it outside the store's lock.
// Player entries stay shared; they are immutable once seated.
func (that *Room) Snapshot() *Room {
	game := *that.Game

	return &Room{
		Code:      that.Code,
		Players:   append([]*Player(nil), that.Players...),
		Game:      &game,
		CreatedAt: that.CreatedAt,
	}
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

// PlayerByID finds a room member by connection identity.
func (that *Room) PlayerByID(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}

	return nil, false
}

// RemovePlayerByID drops the member with the given identity, preserving order.
func (that *Room) RemovePlayerByID(id string) (*Player, bool) {
	for i, player := range that.Players {
		if player.ID == id {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return player, true
		}
	}

	return nil, false
}
