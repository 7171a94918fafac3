package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/RexySaragih/rapid-quack/internal/api/response"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

// StatusHandler serves the read-only reporting surface: liveness, aggregate
// counters, and a room listing. It only reads already-computed state and
// never mutates a room.
type StatusHandler struct {
	store   storage.Store
	backend string
	logger  *slog.Logger
}

// NewStatusHandler creates a new StatusHandler. backend names the selected
// storage backend ("redis" or "memory").
func NewStatusHandler(store storage.Store, backend string, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		store:   store,
		backend: backend,
		logger:  logger.With(slog.String("component", "api")),
	}
}

// Health reports process liveness and backend connectivity
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	response.JSON(w, code, response.Health{
		Status:  status,
		Backend: h.backend,
	})
}

// Stats reports the aggregate game counters
func (h *StatusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.logger.Warn("failed to read stats", slog.Any("error", err))
		response.JSON(w, http.StatusServiceUnavailable, response.Stats{Counters: map[string]int64{}})
		return
	}
	response.JSON(w, http.StatusOK, response.Stats{Counters: stats})
}

// Rooms lists live rooms with player count and round state
func (h *StatusHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListRoomIDs(r.Context())
	if err != nil {
		h.logger.Warn("failed to list rooms", slog.Any("error", err))
		response.JSON(w, http.StatusServiceUnavailable, response.RoomList{Rooms: []response.RoomSummary{}})
		return
	}

	rooms := make([]response.RoomSummary, 0, len(ids))
	for _, id := range ids {
		room, err := h.store.GetRoom(r.Context(), id)
		if err != nil {
			// Index entries may outlive expired snapshots
			continue
		}
		rooms = append(rooms, response.RoomSummaryFromModel(room))
	}

	response.JSON(w, http.StatusOK, response.RoomList{Rooms: rooms})
}
