package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/RexySaragih/rapid-quack/internal/dependencies/clock"
	"github.com/RexySaragih/rapid-quack/internal/dependencies/random"
	"github.com/RexySaragih/rapid-quack/internal/ratelimit"
	"github.com/RexySaragih/rapid-quack/internal/relay"
	"github.com/RexySaragih/rapid-quack/internal/services/room"
	"github.com/RexySaragih/rapid-quack/internal/session"
	"github.com/RexySaragih/rapid-quack/internal/storage"
	"github.com/RexySaragih/rapid-quack/internal/storage/memory"
	redisstorage "github.com/RexySaragih/rapid-quack/internal/storage/redis"
	"github.com/RexySaragih/rapid-quack/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.Store
	// StorageBackend names the backend actually in use after any fallback
	StorageBackend string

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Limiter        ratelimit.Limiter
	Registry       *session.Registry
	Hub            *ws.Hub
	RoomController *room.Controller
	Relay          *relay.Relay
	Dispatcher     *ws.Dispatcher
	WSHandler      *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType
	// is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired.
//
// Backend selection happens exactly once here: when the Redis backend is
// requested but unreachable, the whole process degrades to the in-memory
// backend (and an unlimited rate limiter) for its lifetime. There is no
// per-request fallback, so rooms are never split across backends
// mid-session.
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var (
		store   storage.Store
		backend string
		limiter ratelimit.Limiter
	)

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
		backend = StorageTypeMemory
		limiter = ratelimit.NewUnlimited()

	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-memory storage for process lifetime",
				slog.Any("error", err))
			store = memory.New()
			backend = StorageTypeMemory
			limiter = ratelimit.NewUnlimited()
			break
		}
		store = redisStore
		backend = StorageTypeRedis
		limiter = ratelimit.NewRedisLimiter(redisStore.Client())

	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	registry := session.NewRegistry(store, clk, logger)
	hub := ws.NewHub(logger)
	roomController := room.NewController(store, limiter, registry, hub, clk, rnd, logger)
	rly := relay.New(store, hub, clk, logger)
	dispatcher := ws.NewDispatcher(roomController, rly, hub, logger)
	wsHandler := ws.NewHandler(hub, dispatcher, logger)

	return &App{
		Store:          store,
		StorageBackend: backend,
		Clock:          clk,
		Random:         rnd,
		Limiter:        limiter,
		Registry:       registry,
		Hub:            hub,
		RoomController: roomController,
		Relay:          rly,
		Dispatcher:     dispatcher,
		WSHandler:      wsHandler,
	}, nil
}

// Close releases backend resources held by the app
func (a *App) Close() error {
	if closer, ok := a.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
