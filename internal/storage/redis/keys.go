package redis

import (
	"fmt"

	"github.com/RexySaragih/rapid-quack/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "rapidquack"

// roomKey returns the Redis key for a room snapshot
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// activeRoomsKey returns the Redis key for the SET of live room ids
func activeRoomsKey() string {
	return fmt.Sprintf("%s:active_rooms", keyPrefix)
}

// sessionKey returns the Redis key for a connection session
func sessionKey(id model.ConnectionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// chatKey returns the Redis key for a room's chat history list
func chatKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:chat:%s", keyPrefix, roomID)
}

// statKey returns the Redis key for an aggregate counter
func statKey(name string) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, name)
}
