package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RexySaragih/rapid-quack/internal/api/handler"
	"github.com/RexySaragih/rapid-quack/internal/middleware"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger         *slog.Logger
	Store          storage.Store
	StorageBackend string
	WSHandler      http.Handler
}

// NewRouter creates the HTTP router: the websocket gateway at /ws and the
// read-only reporting API under /api/v1
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	statusHandler := handler.NewStatusHandler(cfg.Store, cfg.StorageBackend, cfg.Logger)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler)

	// The websocket route skips logging middleware: a connection lasts the
	// whole session and would only log on close
	r.Handle("/ws", cfg.WSHandler)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", statusHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/stats", statusHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/rooms", statusHandler.Rooms).Methods(http.MethodGet)

	return r
}
