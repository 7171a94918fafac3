package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/RexySaragih/rapid-quack/internal/model"
)

// Handler upgrades HTTP requests to websocket connections and runs them
type Handler struct {
	hub        *Hub
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a websocket upgrade handler
func NewHandler(hub *Hub, dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game client is served from a separate origin during
			// development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the connection, assigns it an id, and runs its pumps
// until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	connID := model.ConnectionID(uuid.NewString())
	client := NewClient(connID, conn, h.hub, h.dispatcher, h.logger)
	h.hub.Register(client)
	client.Run()
}
