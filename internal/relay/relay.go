// Package relay fans out ephemeral gameplay events (duck spawns, hits,
// visual effects, chat) to a room's connections. Events bypass the store's
// room snapshot entirely for latency; delivery is at-most-once and
// best-effort, with no acknowledgement, buffering, or redelivery. Payloads
// are checked for structure only: whether a hit corresponds to a word the
// player actually typed is trusted to the client.
package relay

import (
	"context"
	"log/slog"

	"github.com/RexySaragih/rapid-quack/internal/dependencies/clock"
	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

// DefaultHistoryLimit is the number of chat messages served for a history
// request
const DefaultHistoryLimit = 50

// Sender delivers events to a room's broadcast group or a single
// connection. The websocket hub implements it.
type Sender interface {
	ToRoom(roomID model.RoomID, event model.EventType, payload any)
	ToRoomExcept(roomID model.RoomID, except model.ConnectionID, event model.EventType, payload any)
	ToConnection(connID model.ConnectionID, event model.EventType, payload any)
}

// Relay is the gameplay event fan-out
type Relay struct {
	store  storage.Store
	sender Sender
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new Relay
func New(store storage.Store, sender Sender, clk clock.Clock, logger *slog.Logger) *Relay {
	return &Relay{
		store:  store,
		sender: sender,
		clock:  clk,
		logger: logger.With(slog.String("component", "relay")),
	}
}

// Gameplay relays a duck:spawn, duck:hit, or effect:trigger payload to
// every room member except the origin connection. Events for rooms that do
// not exist or have not started are dropped, not queued.
func (r *Relay) Gameplay(ctx context.Context, origin model.ConnectionID, roomID model.RoomID, event model.EventType, payload any) error {
	room, err := r.store.GetRoom(ctx, roomID)
	if err != nil || !room.IsStarted {
		return nil
	}

	r.sender.ToRoomExcept(roomID, origin, event, payload)
	return nil
}

// Chat relays a chat message to every member of the room, including the
// sender's broadcast group entry, and records it in the room's bounded
// history. Lobby chat is allowed: there is no started precondition.
func (r *Relay) Chat(ctx context.Context, roomID model.RoomID, msg model.ChatMessage) error {
	exists, err := r.store.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		r.logger.Debug("chat for unknown room dropped",
			slog.String("room_id", string(roomID)))
		return nil
	}

	if msg.Timestamp == 0 {
		msg.Timestamp = r.clock.Now().UnixMilli()
	}

	if err := r.store.AppendChatMessage(ctx, roomID, msg); err != nil {
		r.logger.Warn("failed to persist chat message",
			slog.String("room_id", string(roomID)),
			slog.Any("error", err))
	}

	r.sender.ToRoom(roomID, model.EventChatMessage, msg)
	return nil
}

// History sends the room's recent chat history to the requesting connection
func (r *Relay) History(ctx context.Context, connID model.ConnectionID, roomID model.RoomID) error {
	messages, err := r.store.ChatHistory(ctx, roomID, DefaultHistoryLimit)
	if err != nil {
		r.logger.Warn("failed to load chat history",
			slog.String("room_id", string(roomID)),
			slog.Any("error", err))
		messages = nil
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}

	r.sender.ToConnection(connID, model.EventChatHistory, messages)
	return nil
}
