package model

import "time"

// RoomID is a short URL-safe token identifying a live room
type RoomID string

// Difficulty is the word difficulty shared by all players in a room,
// fixed at room creation
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

// Room represents a group of players sharing one round's configuration
// and lifecycle
type Room struct {
	ID           RoomID     `json:"id"`
	Players      []Player   `json:"players"` // join order
	Difficulty   Difficulty `json:"difficulty"`
	GameDuration int        `json:"gameDuration"` // seconds
	IsStarted    bool       `json:"isStarted"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// GetPlayer returns the player with the given id, or nil if not present
func (r *Room) GetPlayer(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayer removes the player with the given id, preserving join order.
// It reports whether a player was removed.
func (r *Room) RemovePlayer(id PlayerID) bool {
	for i := range r.Players {
		if r.Players[i].ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// AllReady reports whether every player has marked ready
func (r *Room) AllReady() bool {
	for i := range r.Players {
		if !r.Players[i].IsReady {
			return false
		}
	}
	return true
}

// AllGameOver reports whether every player has finished the current round
func (r *Room) AllGameOver() bool {
	for i := range r.Players {
		if !r.Players[i].IsGameOver {
			return false
		}
	}
	return true
}

// AllWantRematch reports whether every player has voted for a rematch
func (r *Room) AllWantRematch() bool {
	for i := range r.Players {
		if !r.Players[i].WantsRematch {
			return false
		}
	}
	return true
}

// ResetForRematch returns the room to the lobby state for a new round:
// every player's flags and score are cleared and the room is unstarted
func (r *Room) ResetForRematch() {
	for i := range r.Players {
		r.Players[i].IsReady = false
		r.Players[i].IsGameOver = false
		r.Players[i].WantsRematch = false
		r.Players[i].Score = 0
	}
	r.IsStarted = false
}
