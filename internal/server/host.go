package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/randutil"
)

// ErrNoGame is returned when an action arrives before any game was started.
var ErrNoGame = errors.New("server: no game in progress")

// SourceFactory returns a fresh live random source for a new game.
type SourceFactory func() *randutil.Source

// GameHost is the request/response shell around a single engine handle.
// Starting a game, whether initial or a restart, replaces the handle; a failed
// start leaves the previous game in place. GameHost is not safe for concurrent
// use.
type GameHost struct {
	engine   *game.Engine
	defaults game.Config
	newLive  SourceFactory
	logger   *log.Logger
}

// NewGameHost creates a host with no game. defaults fill any parameter a
// start request leaves out.
func NewGameHost(defaults game.Config, newLive SourceFactory, logger *log.Logger) *GameHost {
	if newLive == nil {
		newLive = func() *randutil.Source { return randutil.NewLive(nil) }
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &GameHost{
		defaults: defaults,
		newLive:  newLive,
		logger:   logger,
	}
}

// Start initializes a new game from params, discarding any current one.
func (h *GameHost) Start(params GameParams) (*EventsData, error) {
	cfg, err := h.resolve(params)
	if err != nil {
		return nil, err
	}
	src, err := h.source(params.RandomSequence)
	if err != nil {
		return nil, err
	}

	engine, opening, err := game.New(cfg, src, game.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	h.engine = engine

	state := engine.State()
	h.logger.Info("Game started",
		"difficulty", cfg.Difficulty,
		"pebbles", cfg.PebblesCount,
		"maxPerTurn", cfg.MaxPebblesPerTurn,
		"firstPlayer", state.FirstPlayer,
		"source", src)

	return h.reply(opening), nil
}

// Turn submits a human move.
func (h *GameHost) Turn(count uint32) (*EventsData, error) {
	if h.engine == nil {
		return nil, ErrNoGame
	}
	events, err := h.engine.SubmitHumanMove(count)
	if err != nil {
		return nil, err
	}
	h.logFinish()
	return h.reply(events), nil
}

// GiveUp concedes the current game.
func (h *GameHost) GiveUp() (*EventsData, error) {
	if h.engine == nil {
		return nil, ErrNoGame
	}
	events, err := h.engine.Forfeit()
	if err != nil {
		return nil, err
	}
	h.logFinish()
	return h.reply(events), nil
}

// State returns the current snapshot without side effects.
func (h *GameHost) State() (*StateData, error) {
	if h.engine == nil {
		return nil, ErrNoGame
	}
	state := StateDataFromGame(h.engine.State())
	return &state, nil
}

func (h *GameHost) reply(events []game.Event) *EventsData {
	return &EventsData{
		Events: EventsFromGame(events),
		State:  StateDataFromGame(h.engine.State()),
	}
}

func (h *GameHost) logFinish() {
	state := h.engine.State()
	if state.Winner != nil {
		h.logger.Info("Game over", "winner", *state.Winner, "forfeited", state.Forfeited, "remaining", state.PebblesRemaining)
	}
}

func (h *GameHost) resolve(params GameParams) (game.Config, error) {
	cfg := h.defaults
	if params.Difficulty != "" {
		d, err := game.ParseDifficulty(params.Difficulty)
		if err != nil {
			return game.Config{}, err
		}
		cfg.Difficulty = d
	}
	if params.PebblesCount != nil {
		cfg.PebblesCount = *params.PebblesCount
	}
	if params.MaxPebblesPerTurn != nil {
		cfg.MaxPebblesPerTurn = *params.MaxPebblesPerTurn
	}
	return cfg, nil
}

func (h *GameHost) source(sequence []uint32) (*randutil.Source, error) {
	if sequence == nil {
		return h.newLive(), nil
	}
	src, err := randutil.NewReplay(sequence)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrInvalidConfiguration, err)
	}
	return src, nil
}

// ErrorCode maps an error returned by GameHost to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidConfiguration):
		return ErrorCodeInvalidConfiguration
	case errors.Is(err, game.ErrInvalidMove):
		return ErrorCodeInvalidMove
	case errors.Is(err, game.ErrGameFinished):
		return ErrorCodeGameFinished
	case errors.Is(err, ErrNoGame):
		return ErrorCodeNoGame
	default:
		return ErrorCodeInternal
	}
}
