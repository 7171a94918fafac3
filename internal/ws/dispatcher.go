package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/relay"
	"github.com/RexySaragih/rapid-quack/internal/services/room"
)

// inboundEnvelope is the inbound wire frame. Every event except room:create
// carries a room id.
type inboundEnvelope struct {
	Type    model.EventType `json:"type"`
	RoomID  model.RoomID    `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound payload shapes
type createPayload struct {
	PlayerName   string           `json:"playerName"`
	Difficulty   model.Difficulty `json:"difficulty"`
	GameDuration int              `json:"gameDuration"`
}

type joinPayload struct {
	PlayerName string `json:"playerName"`
}

type scorePayload struct {
	Score int `json:"score"`
}

type hitPayload struct {
	TargetID string `json:"targetId"`
}

// Dispatcher decodes inbound events and routes them: room lifecycle events
// go to the state machine, gameplay events go straight through the relay.
type Dispatcher struct {
	rooms  *room.Controller
	relay  *relay.Relay
	hub    *Hub
	logger *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(rooms *room.Controller, rly *relay.Relay, hub *Hub, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		rooms:  rooms,
		relay:  rly,
		hub:    hub,
		logger: logger.With(slog.String("component", "dispatch")),
	}
}

// Dispatch handles one inbound frame from the given connection. Errors are
// reported back to the originating connection only; they never affect other
// connections or terminate the process.
func (d *Dispatcher) Dispatch(ctx context.Context, connID model.ConnectionID, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		d.sendError(connID, model.ErrMalformedEvent)
		return
	}

	if err := d.route(ctx, connID, env); err != nil {
		d.sendError(connID, err)
	}
}

// Disconnected runs session cleanup for a closed connection
func (d *Dispatcher) Disconnected(ctx context.Context, connID model.ConnectionID) {
	d.rooms.Disconnect(ctx, connID)
}

func (d *Dispatcher) route(ctx context.Context, connID model.ConnectionID, env inboundEnvelope) error {
	switch env.Type {
	case model.EventRoomCreate:
		var p createPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return err
		}
		_, err := d.rooms.Create(ctx, connID, p.PlayerName, p.Difficulty, p.GameDuration)
		return err

	case model.EventRoomJoin:
		var p joinPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return err
		}
		_, err := d.rooms.Join(ctx, connID, env.RoomID, p.PlayerName)
		return err

	case model.EventRoomLeave:
		return d.rooms.Leave(ctx, connID, env.RoomID)

	case model.EventRoomRequest:
		return d.rooms.Snapshot(ctx, connID, env.RoomID)

	case model.EventPlayerReady:
		return d.rooms.Ready(ctx, connID, env.RoomID)

	case model.EventPlayerScore:
		var p scorePayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return d.rooms.Score(ctx, connID, env.RoomID, p.Score)

	case model.EventPlayerGameOver:
		return d.rooms.PlayerGameOver(ctx, connID, env.RoomID)

	case model.EventRematchRequest:
		return d.rooms.RequestRematch(ctx, connID, env.RoomID)

	case model.EventDuckSpawn:
		var p model.Duck
		if err := unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return d.relay.Gameplay(ctx, connID, env.RoomID, model.EventDuckSpawn, p)

	case model.EventDuckHit:
		var p hitPayload
		if err := unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return d.relay.Gameplay(ctx, connID, env.RoomID, model.EventDuckHit, p)

	case model.EventEffectTrigger:
		var p model.Effect
		if err := unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return d.relay.Gameplay(ctx, connID, env.RoomID, model.EventEffectTrigger, p)

	case model.EventChatMessage:
		var p model.ChatMessage
		if err := unmarshal(env.Payload, &p); err != nil {
			return err
		}
		if p.Text == "" {
			return model.ErrMalformedEvent
		}
		return d.relay.Chat(ctx, env.RoomID, p)

	case model.EventChatHistory:
		return d.relay.History(ctx, connID, env.RoomID)

	default:
		d.logger.Debug("unknown event type",
			slog.String("type", string(env.Type)),
			slog.String("connection_id", string(connID)))
		return model.ErrMalformedEvent
	}
}

// sendError reports a failed action to the originating connection
func (d *Dispatcher) sendError(connID model.ConnectionID, err error) {
	d.hub.ToConnection(connID, model.EventError, model.ErrorPayload{
		Message: errorMessage(err),
	})
}

// errorMessage maps internal errors to client-visible messages. Backend
// failures are deliberately generic.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, model.ErrRateLimited):
		return "Rate limit exceeded"
	case errors.Is(err, model.ErrRoomStarted):
		return "Game already started in this room"
	case errors.Is(err, model.ErrMalformedEvent):
		return "Malformed event"
	default:
		return "Internal error"
	}
}

func unmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return model.ErrMalformedEvent
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return model.ErrMalformedEvent
	}
	return nil
}
