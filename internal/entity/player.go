package entity

// Player is one seat in a room. ID is the opaque connection identity issued by
// the gateway; ID and Symbol never change for the player's lifetime in a room.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol Mark   `json:"symbol"`
	IsHost bool   `json:"isHost"`
}
