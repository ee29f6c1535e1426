package tui

import (
	"context"
	"sync"

	"github.com/lox/pebbles/internal/server"
)

// Backend runs the game the TUI displays, either in-process or remotely.
type Backend interface {
	Start(ctx context.Context, params server.GameParams) (*server.EventsData, error)
	Turn(ctx context.Context, count uint32) (*server.EventsData, error)
	GiveUp(ctx context.Context) (*server.EventsData, error)
	State(ctx context.Context) (*server.StateData, error)
}

// Expirer is implemented by backends whose session can time out.
type Expirer interface {
	Expired() <-chan server.SessionExpiredData
}

// LocalBackend plays against an in-process engine.
type LocalBackend struct {
	mu   sync.Mutex
	host *server.GameHost
}

// NewLocalBackend wraps host. The backend serializes access to it.
func NewLocalBackend(host *server.GameHost) *LocalBackend {
	return &LocalBackend{host: host}
}

func (b *LocalBackend) Start(_ context.Context, params server.GameParams) (*server.EventsData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.host.Start(params)
}

func (b *LocalBackend) Turn(_ context.Context, count uint32) (*server.EventsData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.host.Turn(count)
}

func (b *LocalBackend) GiveUp(_ context.Context) (*server.EventsData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.host.GiveUp()
}

func (b *LocalBackend) State(_ context.Context) (*server.StateData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.host.State()
}
