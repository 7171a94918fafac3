package storage

import (
	"context"

	"github.com/RexySaragih/rapid-quack/internal/model"
)

// Stat counter names tracked by the store
const (
	StatRoomsCreated       = "rooms_created"
	StatPlayersJoined      = "players_joined"
	StatGamesStarted       = "games_started"
	StatGamesCompleted     = "games_completed"
	StatRematchesRequested = "rematches_requested"
)

// StatNames lists every tracked counter, in reporting order
var StatNames = []string{
	StatRoomsCreated,
	StatPlayersJoined,
	StatGamesStarted,
	StatGamesCompleted,
	StatRematchesRequested,
}

// Store defines the interface for room and session persistence.
// The backend is selected once at process start; all call sites are
// backend-agnostic.
type Store interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	ListRoomIDs(ctx context.Context) ([]model.RoomID, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.ConnectionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.ConnectionID) error

	// Chat history, newest first, bounded per room
	AppendChatMessage(ctx context.Context, roomID model.RoomID, msg model.ChatMessage) error
	ChatHistory(ctx context.Context, roomID model.RoomID, limit int) ([]model.ChatMessage, error)

	// Aggregate counters
	IncrStat(ctx context.Context, name string) error
	GetStats(ctx context.Context) (map[string]int64, error)

	// Ping reports backend connectivity
	Ping(ctx context.Context) error
}
