package repository

import (
	"fmt"
	"sync"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
	"github.com/playgrid/tictactoe-backend/internal/entity"
)

// RoomRepository owns every live room. Callers never hold rooms outside a
// manager operation; the repository is the only process-wide room state.
type RoomRepository interface {
	Create(room *entity.Room) error
	GetByCode(code string) (*entity.Room, error)
	DeleteByCode(code string) error
	Exists(code string) bool
	All() []*entity.Room
}

type inMemoryRooms struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func NewRoomRepository() RoomRepository {
	return &inMemoryRooms{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *inMemoryRooms) Create(room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[room.Code]; ok {
		return fmt.Errorf("room %s already exists", room.Code)
	}

	that.rooms[room.Code] = room

	return nil
}

func (that *inMemoryRooms) GetByCode(code string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[code]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

func (that *inMemoryRooms) DeleteByCode(code string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[code]; !ok {
		return apperror.ErrRoomNotFound
	}

	delete(that.rooms, code)

	return nil
}

func (that *inMemoryRooms) Exists(code string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.rooms[code]

	return ok
}

func (that *inMemoryRooms) All() []*entity.Room {
	that.mu.RLock()
	defer that.mu.RUnlock()

	all := make([]*entity.Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		all = append(all, room)
	}

	return all
}
