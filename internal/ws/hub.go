package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/RexySaragih/rapid-quack/internal/model"
)

// envelope is the outbound wire frame
type envelope struct {
	Type    model.EventType `json:"type"`
	Payload any             `json:"payload,omitempty"`
}

// Hub tracks every live connection and each room's broadcast group. It is
// the single fan-out point: the room state machine and the event relay both
// deliver through it. Sends are non-blocking; a client whose buffer is full
// loses the message rather than stalling the room.
type Hub struct {
	mu    sync.RWMutex
	conns map[model.ConnectionID]*Client
	rooms map[model.RoomID]map[model.ConnectionID]*Client

	logger *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[model.ConnectionID]*Client),
		rooms:  make(map[model.RoomID]map[model.ConnectionID]*Client),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// Register adds a connected client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.conns[client.id] = client
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("client connected",
		slog.String("connection_id", string(client.id)),
		slog.Int("total_clients", total))
}

// Unregister removes a client from the hub and from any broadcast group it
// still belongs to, and closes its send channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.conns[client.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, client.id)
	for roomID, members := range h.rooms {
		if _, ok := members[client.id]; ok {
			delete(members, client.id)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	total := len(h.conns)
	// Closed under the write lock; deliveries hold the read lock, so a
	// delivery can never hit a closed channel
	close(client.send)
	h.mu.Unlock()

	h.logger.Info("client disconnected",
		slog.String("connection_id", string(client.id)),
		slog.Int("total_clients", total))
}

// JoinRoom adds the connection to a room's broadcast group
func (h *Hub) JoinRoom(roomID model.RoomID, connID model.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connID]
	if !ok {
		return
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[model.ConnectionID]*Client)
		h.rooms[roomID] = members
	}
	members[connID] = client
}

// LeaveRoom removes the connection from a room's broadcast group
func (h *Hub) LeaveRoom(roomID model.RoomID, connID model.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// ToRoom broadcasts an event to every member of a room
func (h *Hub) ToRoom(roomID model.RoomID, event model.EventType, payload any) {
	h.send(roomID, "", event, payload)
}

// ToRoomExcept broadcasts an event to every member of a room except the
// origin connection (avoid echoing gameplay events back to their sender)
func (h *Hub) ToRoomExcept(roomID model.RoomID, except model.ConnectionID, event model.EventType, payload any) {
	h.send(roomID, except, event, payload)
}

// ToConnection sends an event to a single connection
func (h *Hub) ToConnection(connID model.ConnectionID, event model.EventType, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error("failed to marshal event",
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.conns[connID]
	if !ok {
		return
	}
	h.deliver(client, event, data)
}

func (h *Hub) send(roomID model.RoomID, except model.ConnectionID, event model.EventType, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error("failed to marshal event",
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}

	// Deliver under the read lock. Sends are non-blocking, and it keeps an
	// Unregister from closing a member's channel mid-broadcast.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, client := range h.rooms[roomID] {
		if except != "" && id == except {
			continue
		}
		h.deliver(client, event, data)
	}
}

func (h *Hub) deliver(client *Client, event model.EventType, data []byte) {
	select {
	case client.send <- data:
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("connection_id", string(client.id)),
			slog.String("event", string(event)))
	}
}

func marshalEnvelope(event model.EventType, payload any) ([]byte, error) {
	return json.Marshal(envelope{Type: event, Payload: payload})
}
