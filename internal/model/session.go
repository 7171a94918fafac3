package model

import "time"

// ConnectionID identifies a client connection to the coordinator
type ConnectionID string

// Session records which room and player identity a connection is bound to.
// The session registry is the only writer of this mapping.
type Session struct {
	ConnectionID ConnectionID `json:"connectionId"`
	RoomID       RoomID       `json:"roomId"`
	PlayerID     PlayerID     `json:"playerId"`
	PlayerName   string       `json:"playerName"`
	JoinedAt     time.Time    `json:"joinedAt"`
}
