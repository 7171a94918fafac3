package model

// EventType identifies a wire event between client and coordinator
type EventType string

// Inbound events (client -> coordinator)
const (
	EventRoomCreate     EventType = "room:create"
	EventRoomJoin       EventType = "room:join"
	EventRoomLeave      EventType = "room:leave"
	EventRoomRequest    EventType = "room:request"
	EventPlayerReady    EventType = "player:ready"
	EventPlayerGameOver EventType = "player:gameover"
	EventRematchRequest EventType = "rematch:request"
	EventChatHistory    EventType = "chat:history"
)

// Bidirectional events (same name inbound and outbound)
const (
	EventPlayerScore   EventType = "player:score"
	EventDuckSpawn     EventType = "duck:spawn"
	EventDuckHit       EventType = "duck:hit"
	EventEffectTrigger EventType = "effect:trigger"
	EventChatMessage   EventType = "chat:message"
)

// Outbound events (coordinator -> client)
const (
	EventRoomCreated   EventType = "room:created"
	EventRoomJoined    EventType = "room:joined"
	EventRoomUpdated   EventType = "room:updated"
	EventGameStart     EventType = "game:start"
	EventRoomGameOver  EventType = "room:gameover"
	EventRematchStatus EventType = "rematch:status"
	EventRematchStart  EventType = "rematch:start"
	EventError         EventType = "error"
)

// ScoreUpdate is the payload of an outbound player:score event
type ScoreUpdate struct {
	PlayerID PlayerID `json:"playerId"`
	Score    int      `json:"score"`
}

// ErrorPayload is the payload of an outbound error event
type ErrorPayload struct {
	Message string `json:"message"`
}
