// Package client talks to a pebbles server over a websocket.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pebbles/internal/auth"
	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/server" // Reuse message types
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

var (
	// ErrClosed is returned by requests made after the connection is gone.
	ErrClosed = errors.New("client: connection closed")
	// ErrUnexpectedReply is returned when the server answers with the wrong type.
	ErrUnexpectedReply = errors.New("client: unexpected reply")
)

// RemoteError is an error reported by the server.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
}

// Is matches the sentinel the server mapped to this code, so callers can use
// errors.Is(err, game.ErrInvalidMove) whether the game is local or remote.
func (e *RemoteError) Is(target error) bool {
	switch e.Code {
	case server.ErrorCodeInvalidConfiguration:
		return target == game.ErrInvalidConfiguration
	case server.ErrorCodeInvalidMove:
		return target == game.ErrInvalidMove
	case server.ErrorCodeGameFinished:
		return target == game.ErrGameFinished
	case server.ErrorCodeNoGame:
		return target == server.ErrNoGame
	}
	return false
}

// Client is a connection to a pebbles server. Requests may be issued from any
// goroutine; each waits for the reply carrying its request id.
type Client struct {
	conn    *websocket.Conn
	send    chan *server.Message
	expired chan server.SessionExpiredData
	logger  *log.Logger

	mu      sync.Mutex
	pending map[string]chan *server.Message
	started bool
	session string

	nextID    atomic.Uint64
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

type dialOptions struct {
	token string
}

// DialOption configures Dial.
type DialOption func(*dialOptions)

// WithToken authenticates the connection with a bearer token.
func WithToken(token string) DialOption {
	return func(o *dialOptions) {
		o.token = token
	}
}

// Dial connects to serverURL. http and https URLs are converted to ws and
// wss, and an empty path becomes /ws.
func Dial(ctx context.Context, serverURL string, logger *log.Logger, opts ...DialOption) (*Client, error) {
	var options dialOptions
	for _, opt := range opts {
		opt(&options)
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	logger = logger.WithPrefix("client")
	logger.Info("Connecting to server", "url", u.String())

	header := http.Header{}
	auth.SetToken(header, options.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		send:    make(chan *server.Message, 16),
		expired: make(chan server.SessionExpiredData, 1),
		logger:  logger,
		pending: make(map[string]chan *server.Message),
		ctx:     cctx,
		cancel:  cancel,
	}

	go c.readPump()
	go c.writePump()

	logger.Info("Connected to server")
	return c, nil
}

// Close closes the connection. Pending requests fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = c.conn.Close()
		c.logger.Info("Disconnected from server")
	})
	return err
}

// Done is closed once the connection has shut down.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Expired delivers the server's notice when the session times out.
func (c *Client) Expired() <-chan server.SessionExpiredData {
	return c.expired
}

// SessionID returns the id the server assigned, once a game has started.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Init starts the first game of the session.
func (c *Client) Init(ctx context.Context, params server.GameParams) (*server.EventsData, error) {
	return c.startGame(ctx, server.MessageTypeInit, params)
}

// Restart replaces the current game.
func (c *Client) Restart(ctx context.Context, params server.GameParams) (*server.EventsData, error) {
	return c.startGame(ctx, server.MessageTypeRestart, params)
}

// Start sends init for the first game and restart afterwards.
func (c *Client) Start(ctx context.Context, params server.GameParams) (*server.EventsData, error) {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()

	if started {
		return c.Restart(ctx, params)
	}
	return c.Init(ctx, params)
}

// Turn submits a human move.
func (c *Client) Turn(ctx context.Context, count uint32) (*server.EventsData, error) {
	var out server.EventsData
	if err := c.call(ctx, server.MessageTypeTurn, server.TurnData{Count: count}, server.MessageTypeEvents, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GiveUp concedes the current game.
func (c *Client) GiveUp(ctx context.Context) (*server.EventsData, error) {
	var out server.EventsData
	if err := c.call(ctx, server.MessageTypeGiveUp, nil, server.MessageTypeEvents, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// State fetches the current snapshot.
func (c *Client) State(ctx context.Context) (*server.StateData, error) {
	var out server.StateData
	if err := c.call(ctx, server.MessageTypeState, nil, server.MessageTypeGameState, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) startGame(ctx context.Context, messageType server.MessageType, params server.GameParams) (*server.EventsData, error) {
	var out server.EventsData
	if err := c.call(ctx, messageType, params, server.MessageTypeGameStarted, &out); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.started = true
	c.session = out.SessionID
	c.mu.Unlock()
	return &out, nil
}

func (c *Client) call(ctx context.Context, messageType server.MessageType, data any, want server.MessageType, out any) error {
	reply, err := c.request(ctx, messageType, data)
	if err != nil {
		return err
	}

	if reply.Type == server.MessageTypeError {
		var e server.ErrorData
		if err := json.Unmarshal(reply.Data, &e); err != nil {
			return fmt.Errorf("failed to decode error reply: %w", err)
		}
		return &RemoteError{Code: e.Code, Message: e.Message}
	}
	if reply.Type != want {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedReply, reply.Type, want)
	}
	if err := json.Unmarshal(reply.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", reply.Type, err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, messageType server.MessageType, data any) (*server.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msg, err := server.NewMessage(messageType, data)
	if err != nil {
		return nil, err
	}
	msg.RequestID = fmt.Sprintf("req-%d", c.nextID.Add(1))

	ch := make(chan *server.Message, 1)
	c.mu.Lock()
	c.pending[msg.RequestID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
	}()

	select {
	case c.send <- msg:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, ErrClosed
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, ErrClosed
	}
}

// readPump routes replies to waiting requests
func (c *Client) readPump() {
	defer func() { _ = c.Close() }()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

		if msg.Type == server.MessageTypeSessionExpired {
			var data server.SessionExpiredData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.logger.Warn("Malformed session_expired notice", "error", err)
			}
			c.logger.Info("Session expired", "session", data.SessionID, "idleSeconds", data.IdleSeconds)
			select {
			case c.expired <- data:
			default:
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping unsolicited message", "type", msg.Type, "requestId", msg.RequestID)
			continue
		}
		ch <- &msg
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				_ = c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
