package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
)

const (
	MarkX Mark = "X"
	MarkO Mark = "O"

	// MarkDraw only ever appears in GameState.Winner.
	MarkDraw Mark = "draw"

	EmptyCell Mark = ""
)

const boardSize = 9

// WinCombos are the 8 lines that decide a game: 3 rows, 3 columns, 2 diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

var jsonNull = []byte("null")

// Mark is a single cell value or a game result. The empty mark marshals to JSON
// null so the wire format stays compatible with clients that test cells and the
// winner against null.
type Mark string

func (that Mark) MarshalJSON() ([]byte, error) {
	if that == EmptyCell {
		return jsonNull, nil
	}

	return json.Marshal(string(that))
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*that = EmptyCell
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal mark: %w", err)
	}

	*that = Mark(s)

	return nil
}

// Other returns the opposing player mark.
func (that Mark) Other() Mark {
	if that == MarkX {
		return MarkO
	}

	return MarkX
}

type GameState struct {
	Board       [9]Mark `json:"board"`
	CurrentTurn Mark    `json:"currentTurn"`
	Winner      Mark    `json:"winner"`
	IsGameOver  bool    `json:"isGameOver"`
}

// LastMove describes the move that produced a game-updated broadcast.
type LastMove struct {
	Player   string `json:"player"`
	Position int    `json:"position"`
	Symbol   Mark   `json:"symbol"`
}

// NewGameState returns a fresh state: empty board, X to move.
func NewGameState() *GameState {
	return &GameState{
		CurrentTurn: MarkX,
	}
}

// DetermineResult evaluates the board: the mark holding a full line wins,
// a full board with no line is a draw, anything else is EmptyCell (undecided).
func (that *GameState) DetermineResult() Mark {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range that.Board {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return MarkDraw
}

// ApplyMove writes symbol into position after the ordered validation the
// callers rely on: turn check, then game-over check, then position check.
// A decided game keeps CurrentTurn as it was; otherwise the turn flips.
func (that *GameState) ApplyMove(symbol Mark, position int) error {
	if that.CurrentTurn != symbol {
		return apperror.ErrNotYourTurn
	}

	if that.IsGameOver {
		return apperror.ErrGameAlreadyOver
	}

	if position < 0 || position >= boardSize || that.Board[position] != EmptyCell {
		return apperror.ErrInvalidPosition
	}

	that.Board[position] = symbol

	if result := that.DetermineResult(); result != EmptyCell {
		that.Winner = result
		that.IsGameOver = true
		return nil
	}

	that.CurrentTurn = symbol.Other()

	return nil
}
