package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pokerhall/pokerhall/internal/actor"
	"github.com/pokerhall/pokerhall/internal/wire"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection bridges one websocket to its player actor: the read pump
// feeds parsed commands into the actor, the write pump drains the actor's
// outbound queue back to the socket. When either side dies the actor is
// stopped, which tears down seats and subscriptions.
type Connection struct {
	conn      *websocket.Conn
	player    *actor.Player
	logger    *log.Logger
	closeOnce sync.Once
}

// NewConnection wraps an upgraded websocket for the given player actor.
func NewConnection(conn *websocket.Conn, player *actor.Player, logger *log.Logger) *Connection {
	return &Connection{
		conn:   conn,
		player: player,
		logger: logger.WithPrefix("conn").With("player", player.Info().Username),
	}
}

// Start begins handling the connection.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump()
	go c.readPump(ctx)
}

// Close stops the player actor and closes the socket. Safe to call more
// than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.player.Stop()
		_ = c.conn.Close()
	})
}

// readPump handles incoming messages from the client.
func (c *Connection) readPump(ctx context.Context) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket error", "err", err)
			}
			return
		}

		msg, err := wire.ParseClient(data)
		if err != nil {
			c.logger.Debug("rejected frame", "err", err)
			c.player.Deliver(wire.LobbyError(err.Error()))
			continue
		}
		if err := c.player.Handle(ctx, msg); err != nil {
			return
		}
	}
}

// writePump handles outgoing messages to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.player.Out():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", "err", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.player.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
