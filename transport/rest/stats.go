package rest

import (
	"encoding/json"
	"net/http"
)

type statsResponse struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

func (that *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	rooms, players := that.stats.Stats()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(statsResponse{Rooms: rooms, Players: players}); err != nil {
		that.logger.Error("failed to encode stats response", "error", err)
	}
}
