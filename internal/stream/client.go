package stream

import (
	"context"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client pumps hub frames onto one WebSocket connection. UI sessions are
// read-mostly; inbound traffic is limited to control frames and is otherwise
// discarded.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	id     uuid.UUID
	send   chan []byte
	logg   *logger.Logger
	userID uuid.UUID
}

// NewClient attaches a connection to the hub for the given user.
func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, logg *logger.Logger) *Client {
	id, send := hub.attach(userID)
	return &Client{
		hub:    hub,
		conn:   conn,
		id:     id,
		send:   send,
		logg:   logg,
		userID: userID,
	}
}

// WritePump streams hub frames and keepalive pings until the session ends.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump drains the connection to keep pong handling alive and detaches the
// session when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.detach(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.logg != nil {
				ctx := c.logg.WithUserID(context.Background(), c.userID.String())
				c.logg.Warn(ctx, "websocket session ended unexpectedly")
			}
			return
		}
	}
}
