package model

// PlayerID uniquely identifies a player within a room. It is the id of the
// connection that created the player, so it is stable for the lifetime of
// one connection.
type PlayerID string

// Player represents a participant in a room
type Player struct {
	ID           PlayerID `json:"id"`
	DisplayName  string   `json:"displayName"`
	IsReady      bool     `json:"isReady"`
	IsGameOver   bool     `json:"isGameOver"`
	WantsRematch bool     `json:"wantsRematch"`
	Score        int      `json:"score"`
}
