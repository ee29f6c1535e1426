package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 64
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("server: session closed")

// Session is one websocket client and the game it owns. Inbound messages are
// handled one at a time on the read loop, which is the only goroutine that
// touches the game host.
type Session struct {
	id     string
	conn   *websocket.Conn
	send   chan *Message
	host   *GameHost
	logger *log.Logger

	clock       quartz.Clock
	idleTimeout time.Duration
	idleMu      sync.Mutex
	idle        *quartz.Timer
	pingPeriod  time.Duration
	pongWait    time.Duration
	ping        *quartz.Ticker

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn, host *GameHost, clock quartz.Clock, cfg Config, logger *log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:          id,
		conn:        conn,
		send:        make(chan *Message, sendBufferSize),
		host:        host,
		logger:      logger,
		clock:       clock,
		idleTimeout: cfg.IdleTimeout,
		pingPeriod:  cfg.PingPeriod,
		pongWait:    cfg.PingPeriod * 10 / 9,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Start begins handling the connection
func (s *Session) Start() {
	s.armIdleTimer()
	s.ping = s.clock.NewTicker(s.pingPeriod, "session", "ping")
	go s.writePump()
	go s.readPump()
}

// Close closes the connection
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.idleMu.Lock()
		if s.idle != nil {
			s.idle.Stop()
		}
		s.idleMu.Unlock()

		s.cancel()
		err = s.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (s *Session) SendMessage(msg *Message) error {
	select {
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- msg:
		return nil
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
		s.logger.Warn("Session send buffer full, closing session")
		_ = s.Close()
		return ErrSessionClosed
	}
}

func (s *Session) armIdleTimer() {
	if s.idleTimeout <= 0 {
		return
	}
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	s.idle = s.clock.AfterFunc(s.idleTimeout, s.expire, "session", "idle")
}

func (s *Session) touch() {
	if s.idleTimeout <= 0 {
		return
	}
	s.idleMu.Lock()
	defer s.idleMu.Unlock()
	if s.idle != nil {
		s.idle.Reset(s.idleTimeout, "session", "idle")
	}
}

// expire tells the client why it is being dropped; the write pump closes the
// connection once the notice is flushed.
func (s *Session) expire() {
	s.logger.Info("Session idle, expiring", "idle", s.idleTimeout)

	msg, err := NewMessage(MessageTypeSessionExpired, SessionExpiredData{
		SessionID:   s.id,
		IdleSeconds: int(s.idleTimeout / time.Second),
	})
	if err != nil {
		_ = s.Close()
		return
	}
	if err := s.SendMessage(msg); err != nil {
		_ = s.Close()
	}
}

// readPump handles incoming messages from the client
func (s *Session) readPump() {
	defer func() { _ = s.Close() }()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		s.touch()

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError("", ErrorCodeInvalidMessage, "Malformed message envelope")
			continue
		}
		s.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (s *Session) writePump() {
	defer func() {
		s.ping.Stop("session", "ping")
		_ = s.Close()
	}()

	for {
		select {
		case message := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(message); err != nil {
				s.logger.Error("Failed to write message", "error", err)
				return
			}
			if message.Type == MessageTypeSessionExpired {
				_ = s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session expired"),
					time.Now().Add(writeWait))
				return
			}

		case <-s.ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (s *Session) handleMessage(msg *Message) {
	s.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	switch msg.Type {
	case MessageTypeInit, MessageTypeRestart:
		var params GameParams
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &params); err != nil {
				s.sendError(msg.RequestID, ErrorCodeInvalidMessage, "Failed to parse game parameters")
				return
			}
		}
		reply, err := s.host.Start(params)
		if err != nil {
			s.sendGameError(msg.RequestID, err)
			return
		}
		reply.SessionID = s.id
		s.reply(msg.RequestID, MessageTypeGameStarted, reply)

	case MessageTypeTurn:
		var data TurnData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			s.sendError(msg.RequestID, ErrorCodeInvalidMessage, "Failed to parse turn data")
			return
		}
		reply, err := s.host.Turn(data.Count)
		if err != nil {
			s.sendGameError(msg.RequestID, err)
			return
		}
		s.reply(msg.RequestID, MessageTypeEvents, reply)

	case MessageTypeGiveUp:
		reply, err := s.host.GiveUp()
		if err != nil {
			s.sendGameError(msg.RequestID, err)
			return
		}
		s.reply(msg.RequestID, MessageTypeEvents, reply)

	case MessageTypeState:
		state, err := s.host.State()
		if err != nil {
			s.sendGameError(msg.RequestID, err)
			return
		}
		s.reply(msg.RequestID, MessageTypeGameState, state)

	default:
		s.sendError(msg.RequestID, ErrorCodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
	}
}

func (s *Session) reply(requestID string, messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		s.logger.Error("Failed to create reply", "error", err, "type", messageType)
		s.sendError(requestID, ErrorCodeInternal, "Failed to encode reply")
		return
	}
	msg.RequestID = requestID
	_ = s.SendMessage(msg)
}

func (s *Session) sendGameError(requestID string, err error) {
	code := ErrorCode(err)
	s.logger.Debug("Request rejected", "code", code, "error", err)
	s.sendError(requestID, code, err.Error())
}

// sendError sends an error message to the client
func (s *Session) sendError(requestID, code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		s.logger.Error("Failed to create error message", "error", err)
		return
	}
	errorMsg.RequestID = requestID

	_ = s.SendMessage(errorMsg) // Ignore send errors during error handling
}
