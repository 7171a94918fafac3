package response

import (
	"github.com/RexySaragih/rapid-quack/internal/model"
)

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// Stats is the response for the stats endpoint
type Stats struct {
	Counters map[string]int64 `json:"counters"`
}

// RoomSummary is one entry of the room listing
type RoomSummary struct {
	ID           string `json:"id"`
	PlayerCount  int    `json:"playerCount"`
	IsStarted    bool   `json:"isStarted"`
	Difficulty   string `json:"difficulty"`
	GameDuration int    `json:"gameDuration"`
}

// RoomSummaryFromModel converts a model.Room to a listing entry
func RoomSummaryFromModel(r *model.Room) RoomSummary {
	return RoomSummary{
		ID:           string(r.ID),
		PlayerCount:  len(r.Players),
		IsStarted:    r.IsStarted,
		Difficulty:   string(r.Difficulty),
		GameDuration: r.GameDuration,
	}
}

// RoomList is the response for the room listing endpoint
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}
