package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RexySaragih/rapid-quack/internal/model"
)

const (
	// writeWait is the time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// pongWait is the time allowed between reads before the connection is
	// considered dead
	pongWait = 60 * time.Second
	// pingPeriod is the server ping interval; must be less than pongWait
	pingPeriod = 54 * time.Second
	// maxMessageSize bounds inbound frames; gameplay payloads are small
	maxMessageSize = 4096
	// sendBufferSize is the per-client outbound buffer
	sendBufferSize = 256
)

// Client is one websocket connection. readPump feeds inbound events to the
// dispatcher; writePump drains the send channel the hub delivers into.
type Client struct {
	id   model.ConnectionID
	conn *websocket.Conn
	send chan []byte

	hub        *Hub
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewClient wraps an upgraded websocket connection
func NewClient(id model.ConnectionID, conn *websocket.Conn, hub *Hub, dispatcher *Dispatcher, logger *slog.Logger) *Client {
	return &Client{
		id:         id,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		hub:        hub,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("connection_id", string(id))),
	}
}

// ID returns the connection id
func (c *Client) ID() model.ConnectionID {
	return c.id
}

// Run starts the read and write pumps. It returns when the connection is
// closed; disconnect cleanup has already been dispatched by then.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.dispatcher.Disconnected(context.Background(), c.id)
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", slog.Any("error", err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.dispatcher.Dispatch(context.Background(), c.id, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
