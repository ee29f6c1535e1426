package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/pebbles/internal/randutil"
)

// Engine owns the authoritative state of one game and the random source the
// automated side draws from.
type Engine struct {
	state  GameState
	src    *randutil.Source
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-turn debug output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.WithPrefix("game")
		}
	}
}

// New creates a game. The first player is decided by one draw from src; if
// the automated side starts it moves before New returns and that move is
// returned as the opening events.
func New(cfg Config, src *randutil.Source, opts ...Option) (*Engine, []Event, error) {
	e := &Engine{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	opening, err := e.Restart(cfg, src)
	if err != nil {
		return nil, nil, err
	}
	return e, opening, nil
}

// Restart discards the current game and starts a fresh one with cfg and src.
// A failed restart leaves the current game untouched.
func (e *Engine) Restart(cfg Config, src *randutil.Source) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfiguration)
	}

	first := Human
	if src.Next()%2 == 1 {
		first = Automated
	}

	e.src = src
	e.state = GameState{
		PebblesCount:      cfg.PebblesCount,
		MaxPebblesPerTurn: cfg.MaxPebblesPerTurn,
		PebblesRemaining:  cfg.PebblesCount,
		Difficulty:        cfg.Difficulty,
		FirstPlayer:       first,
	}

	e.logger.Debug("Game started",
		"difficulty", cfg.Difficulty,
		"pebbles", cfg.PebblesCount,
		"maxPerTurn", cfg.MaxPebblesPerTurn,
		"firstPlayer", first,
		"source", src)

	if first == Automated {
		return []Event{e.automatedTurn()}, nil
	}
	return nil, nil
}

// SubmitHumanMove takes count pebbles for the human side and, unless that
// ended the game, answers with the automated side's move.
func (e *Engine) SubmitHumanMove(count uint32) ([]Event, error) {
	if e.state.Finished() {
		return nil, ErrGameFinished
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: must take at least one pebble", ErrInvalidMove)
	}
	if count > e.state.MaxPebblesPerTurn {
		return nil, fmt.Errorf("%w: cannot take %d, limit is %d per turn", ErrInvalidMove, count, e.state.MaxPebblesPerTurn)
	}
	if count > e.state.PebblesRemaining {
		return nil, fmt.Errorf("%w: cannot take %d, only %d left", ErrInvalidMove, count, e.state.PebblesRemaining)
	}

	events := make([]Event, 0, 2)
	events = append(events, e.resolve(Human, count))
	if !e.state.Finished() {
		events = append(events, e.automatedTurn())
	}
	return events, nil
}

// Forfeit concedes the game to the automated side. The pile is left as is.
func (e *Engine) Forfeit() ([]Event, error) {
	if e.state.Finished() {
		return nil, ErrGameFinished
	}

	winner := Automated
	e.state.Winner = &winner
	e.state.Forfeited = true

	e.logger.Debug("Human forfeited", "remaining", e.state.PebblesRemaining)
	return []Event{WonByForfeit(Automated)}, nil
}

// State returns a snapshot of the current game.
func (e *Engine) State() GameState {
	return e.state.clone()
}

func (e *Engine) automatedTurn() Event {
	count := automatedCount(e.state.Difficulty, e.state.PebblesRemaining, e.state.MaxPebblesPerTurn, e.src)
	return e.resolve(Automated, count)
}

// resolve applies an already validated move for p.
func (e *Engine) resolve(p Player, count uint32) Event {
	e.state.PebblesRemaining -= count

	e.logger.Debug("Turn resolved", "player", p, "count", count, "remaining", e.state.PebblesRemaining)

	if e.state.PebblesRemaining == 0 {
		winner := p
		e.state.Winner = &winner
		return Won(p, count)
	}
	return CounterTurn(p, count)
}
