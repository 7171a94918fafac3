package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomStarted  = errors.New("game already started in room")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found in room")

	// Action errors
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrMalformedEvent = errors.New("malformed event payload")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Store errors
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)
