// Package room implements the authoritative room lifecycle state machine:
// create, join, ready-check, scoring, game over, rematch, and cleanup on
// leave or disconnect. All mutations to a given room are serialized, and
// broadcasts always carry the snapshot committed by the triggering
// transition.
package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RexySaragih/rapid-quack/internal/dependencies/clock"
	"github.com/RexySaragih/rapid-quack/internal/dependencies/random"
	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/ratelimit"
	"github.com/RexySaragih/rapid-quack/internal/session"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

const (
	// RoomIDLength is the length of generated room ids
	RoomIDLength = 6
	// RoomIDAlphabet is the characters used in room ids (avoid confusing chars)
	RoomIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"
	// MinPlayersToStart is the minimum ready players required to start a
	// round; a lone player can mark ready indefinitely without starting
	MinPlayersToStart = 2
)

// Rate-limited action names
const (
	actionCreateRoom = "create_room"
	actionJoinRoom   = "join_room"
)

// Broadcaster delivers outbound events to room broadcast groups and
// individual connections, and manages group membership. The websocket hub
// implements it.
type Broadcaster interface {
	JoinRoom(roomID model.RoomID, connID model.ConnectionID)
	LeaveRoom(roomID model.RoomID, connID model.ConnectionID)
	ToRoom(roomID model.RoomID, event model.EventType, payload any)
	ToConnection(connID model.ConnectionID, event model.EventType, payload any)
}

// Controller manages the room state machine
type Controller struct {
	store       storage.Store
	limiter     ratelimit.Limiter
	registry    *session.Registry
	broadcaster Broadcaster
	locks       *roomLocks
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	store storage.Store,
	limiter ratelimit.Limiter,
	registry *session.Registry,
	broadcaster Broadcaster,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		store:       store,
		limiter:     limiter,
		registry:    registry,
		broadcaster: broadcaster,
		locks:       newRoomLocks(),
		clock:       clk,
		random:      rnd,
		logger:      logger.With(slog.String("component", "room")),
	}
}

// Create makes a new room in the lobby state with the creator as its only
// player and announces it to the creating connection
func (c *Controller) Create(ctx context.Context, connID model.ConnectionID, playerName string, difficulty model.Difficulty, gameDuration int) (*model.Room, error) {
	if err := c.checkLimit(ctx, connID, actionCreateRoom); err != nil {
		return nil, err
	}

	if playerName == "" || !difficulty.Valid() || gameDuration <= 0 {
		return nil, model.ErrMalformedEvent
	}

	// Generate a unique room id; regenerate on the (unlikely) collision
	var roomID model.RoomID
	for {
		roomID = model.RoomID(c.random.String(RoomIDLength, RoomIDAlphabet))
		exists, err := c.store.RoomExists(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	now := c.clock.Now()
	room := &model.Room{
		ID: roomID,
		Players: []model.Player{
			{ID: model.PlayerID(connID), DisplayName: playerName},
		},
		Difficulty:   difficulty,
		GameDuration: gameDuration,
		IsStarted:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	if err := c.registry.Bind(ctx, connID, roomID, model.PlayerID(connID), playerName); err != nil {
		c.logger.Warn("failed to persist session binding",
			slog.String("room_id", string(roomID)),
			slog.Any("error", err))
	}
	c.incrStat(ctx, storage.StatRoomsCreated)

	c.broadcaster.JoinRoom(roomID, connID)
	c.broadcaster.ToConnection(connID, model.EventRoomCreated, room)

	c.logger.Info("room created",
		slog.String("room_id", string(roomID)),
		slog.String("player", playerName),
		slog.String("difficulty", string(difficulty)))

	return room, nil
}

// Join adds the connection's player to an existing room. A player id
// already present short-circuits to an idempotent success, so reconnecting
// clients can retry safely.
func (c *Controller) Join(ctx context.Context, connID model.ConnectionID, roomID model.RoomID, playerName string) (*model.Room, error) {
	if err := c.checkLimit(ctx, connID, actionJoinRoom); err != nil {
		return nil, err
	}

	if playerName == "" {
		return nil, model.ErrMalformedEvent
	}

	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	playerID := model.PlayerID(connID)

	// Idempotent re-join: already a member, just resend the snapshot
	if room.GetPlayer(playerID) != nil {
		c.broadcaster.JoinRoom(roomID, connID)
		c.broadcaster.ToConnection(connID, model.EventRoomJoined, room)
		return room, nil
	}

	if room.IsStarted {
		return nil, model.ErrRoomStarted
	}

	room.Players = append(room.Players, model.Player{
		ID:          playerID,
		DisplayName: playerName,
	})
	room.UpdatedAt = c.clock.Now()

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	if err := c.registry.Bind(ctx, connID, roomID, playerID, playerName); err != nil {
		c.logger.Warn("failed to persist session binding",
			slog.String("room_id", string(roomID)),
			slog.Any("error", err))
	}
	c.incrStat(ctx, storage.StatPlayersJoined)

	c.broadcaster.JoinRoom(roomID, connID)
	c.broadcaster.ToRoom(roomID, model.EventRoomJoined, room)
	c.broadcaster.ToRoom(roomID, model.EventRoomUpdated, room)
	c.systemChat(ctx, roomID, fmt.Sprintf("%s joined the room", playerName))

	c.logger.Info("player joined room",
		slog.String("room_id", string(roomID)),
		slog.String("player", playerName),
		slog.Int("player_count", len(room.Players)))

	return room, nil
}

// Ready marks the connection's player ready. When every player is ready and
// the room holds at least MinPlayersToStart players, the round starts.
// A ready for a room or player that no longer exists is a silent no-op:
// the event raced with cleanup.
func (c *Controller) Ready(ctx context.Context, connID model.ConnectionID, roomID model.RoomID) error {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.getForUpdate(ctx, roomID)
	if room == nil {
		return err
	}

	// A ready arriving after the round started is a duplicate; the start
	// broadcast fires once per round
	if room.IsStarted {
		return nil
	}

	player := room.GetPlayer(model.PlayerID(connID))
	if player == nil {
		return nil
	}

	player.IsReady = true
	player.IsGameOver = false
	player.WantsRematch = false
	room.UpdatedAt = c.clock.Now()

	if room.AllReady() && len(room.Players) >= MinPlayersToStart {
		room.IsStarted = true
		for i := range room.Players {
			room.Players[i].IsGameOver = false
			room.Players[i].WantsRematch = false
		}

		if err := c.store.SaveRoom(ctx, room); err != nil {
			return err
		}
		c.incrStat(ctx, storage.StatGamesStarted)
		c.broadcaster.ToRoom(roomID, model.EventGameStart, room)

		c.logger.Info("game started",
			slog.String("room_id", string(roomID)),
			slog.Int("player_count", len(room.Players)))
		return nil
	}

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return err
	}
	c.broadcaster.ToRoom(roomID, model.EventRoomUpdated, room)
	return nil
}

// Score applies a last-write-wins update of the player's score and
// broadcasts it. Scores must be non-negative; monotonicity is not
// validated, as the client is trusted for gameplay events.
func (c *Controller) Score(ctx context.Context, connID model.ConnectionID, roomID model.RoomID, score int) error {
	if score < 0 {
		return model.ErrMalformedEvent
	}

	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.getForUpdate(ctx, roomID)
	if room == nil {
		return err
	}

	player := room.GetPlayer(model.PlayerID(connID))
	if player == nil {
		return nil
	}

	player.Score = score
	room.UpdatedAt = c.clock.Now()

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return err
	}

	c.broadcaster.ToRoom(roomID, model.EventPlayerScore, model.ScoreUpdate{
		PlayerID: player.ID,
		Score:    score,
	})
	return nil
}

// PlayerGameOver marks the player's run finished. When the last player
// finishes, the round ends and the final snapshot is broadcast exactly once.
func (c *Controller) PlayerGameOver(ctx context.Context, connID model.ConnectionID, roomID model.RoomID) error {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.getForUpdate(ctx, roomID)
	if room == nil {
		return err
	}

	player := room.GetPlayer(model.PlayerID(connID))
	if player == nil || player.IsGameOver {
		return nil
	}

	player.IsGameOver = true
	room.UpdatedAt = c.clock.Now()

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return err
	}

	if room.AllGameOver() {
		c.incrStat(ctx, storage.StatGamesCompleted)
		c.broadcaster.ToRoom(roomID, model.EventRoomGameOver, room)

		c.logger.Info("round over",
			slog.String("room_id", string(roomID)))
	}
	return nil
}

// RequestRematch records the player's rematch vote. When every player in a
// multi-player room has voted, the room resets to the lobby state: scores
// zeroed, flags cleared, round unstarted.
func (c *Controller) RequestRematch(ctx context.Context, connID model.ConnectionID, roomID model.RoomID) error {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.getForUpdate(ctx, roomID)
	if room == nil {
		return err
	}

	player := room.GetPlayer(model.PlayerID(connID))
	if player == nil {
		return nil
	}

	player.WantsRematch = true
	room.UpdatedAt = c.clock.Now()

	if err := c.store.SaveRoom(ctx, room); err != nil {
		return err
	}
	c.broadcaster.ToRoom(roomID, model.EventRematchStatus, room)

	if len(room.Players) > 1 && room.AllWantRematch() {
		room.ResetForRematch()
		room.UpdatedAt = c.clock.Now()

		if err := c.store.SaveRoom(ctx, room); err != nil {
			return err
		}
		c.incrStat(ctx, storage.StatRematchesRequested)

		c.broadcaster.ToRoom(roomID, model.EventRematchStart, nil)
		c.broadcaster.ToRoom(roomID, model.EventRoomUpdated, room)

		c.logger.Info("rematch started",
			slog.String("room_id", string(roomID)))
	}
	return nil
}

// Leave removes the connection's player from the room, deleting the room
// when it empties. Remaining players get an updated snapshot, a system
// chat notice, and a rematch-status rebroadcast so a pending rematch vote
// never waits on someone who is gone.
func (c *Controller) Leave(ctx context.Context, connID model.ConnectionID, roomID model.RoomID) error {
	unlock := c.locks.lock(roomID)
	defer unlock()

	err := c.removePlayer(ctx, connID, roomID)

	c.broadcaster.LeaveRoom(roomID, connID)

	// Only drop the session binding when it points at the room being
	// left; a leave for a stale room must not orphan the live binding
	for _, b := range c.registry.Resolve(connID) {
		if b.RoomID == roomID {
			c.registry.Unbind(ctx, connID)
		}
	}
	return err
}

// Disconnect resolves every room the connection belongs to via the session
// registry and applies Leave to each, then drops the session entry
func (c *Controller) Disconnect(ctx context.Context, connID model.ConnectionID) {
	bindings := c.registry.Resolve(connID)
	for _, b := range bindings {
		unlock := c.locks.lock(b.RoomID)
		if err := c.removePlayer(ctx, connID, b.RoomID); err != nil {
			c.logger.Warn("disconnect cleanup failed",
				slog.String("room_id", string(b.RoomID)),
				slog.String("connection_id", string(connID)),
				slog.Any("error", err))
		}
		unlock()
		c.broadcaster.LeaveRoom(b.RoomID, connID)
	}
	c.registry.Unbind(ctx, connID)
}

// Snapshot resends the current room state to the requesting connection
func (c *Controller) Snapshot(ctx context.Context, connID model.ConnectionID, roomID model.RoomID) error {
	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	c.broadcaster.ToConnection(connID, model.EventRoomUpdated, room)
	return nil
}

// removePlayer performs the leave transition. Caller must hold the room lock.
func (c *Controller) removePlayer(ctx context.Context, connID model.ConnectionID, roomID model.RoomID) error {
	room, err := c.getForUpdate(ctx, roomID)
	if room == nil {
		return err
	}

	playerID := model.PlayerID(connID)
	leaving := room.GetPlayer(playerID)
	if leaving == nil {
		return nil
	}
	playerName := leaving.DisplayName

	room.RemovePlayer(playerID)

	if len(room.Players) == 0 {
		if err := c.store.DeleteRoom(ctx, roomID); err != nil {
			return err
		}
		c.logger.Info("room deleted",
			slog.String("room_id", string(roomID)))
		return nil
	}

	room.UpdatedAt = c.clock.Now()
	if err := c.store.SaveRoom(ctx, room); err != nil {
		return err
	}

	c.broadcaster.ToRoom(roomID, model.EventRoomUpdated, room)
	c.systemChat(ctx, roomID, fmt.Sprintf("%s left the room", playerName))
	c.broadcaster.ToRoom(roomID, model.EventRematchStatus, room)

	c.logger.Info("player left room",
		slog.String("room_id", string(roomID)),
		slog.String("player", playerName),
		slog.Int("player_count", len(room.Players)))
	return nil
}

// getForUpdate loads a room for mutation. A missing room yields (nil, nil):
// lifecycle events arriving after cleanup are silent no-ops, while backend
// failures propagate so the transition aborts.
func (c *Controller) getForUpdate(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// checkLimit applies the default rate-limit policy for the given action.
// Limiter failures fail open: availability is favored over strict abuse
// prevention when the backend is degraded.
func (c *Controller) checkLimit(ctx context.Context, connID model.ConnectionID, action string) error {
	allowed, err := c.limiter.Allow(ctx, ratelimit.Key(string(connID), action), ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	if err != nil {
		c.logger.Warn("rate limiter unavailable, failing open",
			slog.String("action", action),
			slog.Any("error", err))
		return nil
	}
	if !allowed {
		return model.ErrRateLimited
	}
	return nil
}

// systemChat appends and broadcasts a server-generated chat notice.
// History persistence is best-effort; the broadcast happens regardless.
func (c *Controller) systemChat(ctx context.Context, roomID model.RoomID, text string) {
	msg := model.ChatMessage{
		Author:    model.SystemAuthor,
		Text:      text,
		Timestamp: c.clock.Now().UnixMilli(),
	}
	if err := c.store.AppendChatMessage(ctx, roomID, msg); err != nil {
		c.logger.Warn("failed to persist system chat message",
			slog.String("room_id", string(roomID)),
			slog.Any("error", err))
	}
	c.broadcaster.ToRoom(roomID, model.EventChatMessage, msg)
}

// incrStat bumps an aggregate counter; analytics never abort a transition
func (c *Controller) incrStat(ctx context.Context, name string) {
	if err := c.store.IncrStat(ctx, name); err != nil {
		c.logger.Warn("failed to increment stat",
			slog.String("stat", name),
			slog.Any("error", err))
	}
}
