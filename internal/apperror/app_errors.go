package apperror

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrGameAlreadyOver = errors.New("game is already over")
	ErrInvalidPosition = errors.New("invalid move")
)
