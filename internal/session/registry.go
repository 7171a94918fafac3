// Package session tracks which room and player identity each live
// connection is bound to. The registry is the single source of truth for
// disconnect cleanup: resolving a connection replaces any approach that
// scans every room for the player id.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/RexySaragih/rapid-quack/internal/dependencies/clock"
	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

// Binding is a connection's membership in one room
type Binding struct {
	RoomID   model.RoomID
	PlayerID model.PlayerID
}

// Registry maps connection ids to their current room binding. The in-process
// map is authoritative for live connections; bindings are also written
// through to the store so the durable backend holds a session record per
// connection.
type Registry struct {
	mu       sync.RWMutex
	bindings map[model.ConnectionID]Binding

	store  storage.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewRegistry creates a session registry writing through to the given store
func NewRegistry(store storage.Store, clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		bindings: make(map[model.ConnectionID]Binding),
		store:    store,
		clock:    clk,
		logger:   logger.With(slog.String("component", "session")),
	}
}

// Bind records that connID now belongs to roomID as playerID, overwriting
// any previous binding for the connection
func (r *Registry) Bind(ctx context.Context, connID model.ConnectionID, roomID model.RoomID, playerID model.PlayerID, playerName string) error {
	r.mu.Lock()
	r.bindings[connID] = Binding{RoomID: roomID, PlayerID: playerID}
	r.mu.Unlock()

	session := &model.Session{
		ConnectionID: connID,
		RoomID:       roomID,
		PlayerID:     playerID,
		PlayerName:   playerName,
		JoinedAt:     r.clock.Now(),
	}
	if err := r.store.SaveSession(ctx, session); err != nil {
		return err
	}
	return nil
}

// Resolve returns the bindings that need cleanup when the connection
// disconnects. Under normal operation a connection has at most one.
func (r *Registry) Resolve(connID model.ConnectionID) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.bindings[connID]
	if !ok {
		return nil
	}
	return []Binding{binding}
}

// Unbind removes the connection's binding and its durable session record
func (r *Registry) Unbind(ctx context.Context, connID model.ConnectionID) {
	r.mu.Lock()
	delete(r.bindings, connID)
	r.mu.Unlock()

	if err := r.store.DeleteSession(ctx, connID); err != nil {
		r.logger.Warn("failed to delete session record",
			slog.String("connection_id", string(connID)),
			slog.Any("error", err))
	}
}
