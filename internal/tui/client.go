package tui

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/pokerhall/pokerhall/internal/wire"
)

// Client is the websocket half of the terminal client. It dials the
// server, pushes commands from the UI, and surfaces decoded server frames
// on Events.
type Client struct {
	serverURL string
	username  string
	token     string
	logger    *log.Logger

	conn      *websocket.Conn
	send      chan wire.ClientMessage
	events    chan wire.ServerFrame
	group     *errgroup.Group
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewClient creates a client for the given server. If token is set it is
// presented for verification; otherwise username requests guest access.
func NewClient(serverURL, username, token string, logger *log.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		username:  username,
		token:     token,
		logger:    logger.WithPrefix("client"),
		send:      make(chan wire.ClientMessage, 64),
		events:    make(chan wire.ServerFrame, 64),
	}
}

// Connect dials the server and starts the read and write pumps.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	q := u.Query()
	if c.token != "" {
		q.Set("token", c.token)
	} else {
		q.Set("player", c.username)
	}
	u.RawQuery = q.Encode()

	c.logger.Info("connecting", "url", u.Redacted())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	g, ctx := errgroup.WithContext(ctx)
	c.group = g
	g.Go(func() error { return c.readPump(ctx) })
	g.Go(func() error { return c.writePump(ctx) })
	return nil
}

// Events is the stream of server frames. It closes when the connection
// dies.
func (c *Client) Events() <-chan wire.ServerFrame {
	return c.events
}

// Send queues a command for the server. It reports an error if the send
// buffer is full rather than blocking the UI.
func (c *Client) Send(msg wire.ClientMessage) error {
	select {
	case c.send <- msg:
		return nil
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Close tears the connection down and waits for the pumps to exit.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn != nil {
			_ = c.conn.Close()
		}
		if c.group != nil {
			_ = c.group.Wait()
		}
	})
}

func (c *Client) readPump(ctx context.Context) error {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed", "err", err)
			}
			return err
		}
		frame, err := wire.ParseServer(data)
		if err != nil {
			c.logger.Warn("unreadable server frame", "err", err)
			continue
		}
		select {
		case c.events <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) writePump(ctx context.Context) error {
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return err
			}
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()
		}
	}
}
