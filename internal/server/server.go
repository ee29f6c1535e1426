package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/pebbles/internal/auth"
	"github.com/lox/pebbles/internal/randutil"
)

// Server hosts one game per websocket session.
type Server struct {
	config    Config
	upgrader  websocket.Upgrader
	clock     quartz.Clock
	validator auth.Validator
	logger    *log.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	mu       sync.RWMutex
	sessions map[string]*Session
	httpSrv  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithClock sets the clock used for idle expiry.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithValidator requires connections to present a token accepted by v.
func WithValidator(v auth.Validator) Option {
	return func(s *Server) {
		if v != nil {
			s.validator = v
		}
	}
}

// NewServer creates a new WebSocket server. Each session's live source is
// seeded from rng, so a seeded rng makes a run of sessions reproducible. A
// nil rng draws seeds from entropy.
func NewServer(logger *log.Logger, rng *rand.Rand, opts ...Option) *Server {
	if rng == nil {
		rng = randutil.NewEntropy()
	}

	s := &Server{
		config: DefaultConfig(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clock:     quartz.NewReal(),
		validator: auth.NoopValidator{},
		logger:    logger.WithPrefix("server"),
		rng:       rng,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.PingPeriod <= 0 {
		s.config.PingPeriod = defaultPingPeriod
	}
	return s
}

// Handler returns the HTTP handler serving /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	srv := &http.Server{Handler: s.Handler()}

	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	s.logger.Info("Starting WebSocket server", "addr", listener.Addr().String(), "idleTimeout", s.config.IdleTimeout)
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	for _, sess := range sessions {
		_ = sess.Close() // Ignore close errors during shutdown
	}
	s.logger.Info("Server stopped", "sessions", len(sessions))
	return err
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) nextSource() *randutil.Source {
	s.rngMu.Lock()
	seed := s.rng.Int64()
	s.rngMu.Unlock()
	return randutil.NewLive(randutil.New(seed))
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.validator.Validate(r.Context(), auth.TokenFromRequest(r)); err != nil {
		s.logger.Warn("Rejected connection", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	id := uuid.Must(uuid.NewV7()).String()
	logger := s.logger.WithPrefix("session").With("session", id)
	host := NewGameHost(s.config.DefaultGame, s.nextSource, logger)
	sess := newSession(id, conn, host, s.clock, s.config, logger)

	s.register(sess)
	sess.Start()

	go func() {
		<-sess.Done()
		s.unregister(sess)
	}()
}

func (s *Server) register(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	total := len(s.sessions)
	s.mu.Unlock()
	s.logger.Info("Client connected", "session", sess.id, "total", total)
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	total := len(s.sessions)
	s.mu.Unlock()
	s.logger.Info("Client disconnected", "session", sess.id, "total", total)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}
