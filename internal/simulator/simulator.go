// Package simulator plays many pebbles games between a scripted human policy
// and the engine's automated player.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// humanSalt separates the human policy's stream from the engine's for the
// same game seed.
const humanSalt = 0x5DEECE66D

// Config holds configuration for running simulations
type Config struct {
	Games   int
	Game    game.Config
	Policy  Policy
	Seed    int64
	Workers int
	Logger  *log.Logger
}

// Simulator runs batches of games
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if config.Games < 1 {
		return nil, fmt.Errorf("simulator: games must be at least 1, got %d", config.Games)
	}
	if config.Policy == nil {
		return nil, errors.New("simulator: no policy")
	}
	if err := config.Game.Validate(); err != nil {
		return nil, err
	}
	if config.Workers < 1 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}, nil
}

// Config returns the effective configuration, with defaults applied.
func (s *Simulator) Config() Config {
	return s.config
}

// Run plays every game and aggregates the results. Game i is seeded with
// Seed+i, so results do not depend on the worker count.
func (s *Simulator) Run(ctx context.Context) (*Statistics, error) {
	s.logger.Info("Starting simulation",
		"games", s.config.Games,
		"policy", s.config.Policy.Name(),
		"difficulty", s.config.Game.Difficulty,
		"pebbles", s.config.Game.PebblesCount,
		"maxPerTurn", s.config.Game.MaxPebblesPerTurn,
		"seed", s.config.Seed,
		"workers", s.config.Workers)

	results := make([]GameResult, s.config.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := range s.config.Games {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playGame(ctx, seed)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i, seed, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete", "humanWins", stats.HumanWins, "automatedWins", stats.AutomatedWins, "forfeits", stats.Forfeits)
	return stats, nil
}

// playGame runs a single game to completion
func (s *Simulator) playGame(ctx context.Context, seed int64) (GameResult, error) {
	src := randutil.NewLive(randutil.New(seed))
	humanRng := randutil.New(seed ^ humanSalt)

	engine, opening, err := game.New(s.config.Game, src)
	if err != nil {
		return GameResult{}, err
	}

	result := GameResult{Seed: seed, FirstPlayer: engine.State().FirstPlayer}
	result.AutomatedMoves += len(opening)

	for {
		state := engine.State()
		if state.Finished() {
			result.Winner = *state.Winner
			result.Forfeited = state.Forfeited
			s.logger.Debug("Game finished", "seed", seed, "winner", result.Winner, "moves", result.HumanMoves+result.AutomatedMoves)
			return result, nil
		}
		if err := ctx.Err(); err != nil {
			return GameResult{}, err
		}

		count, giveUp := s.config.Policy.Choose(state, humanRng)
		if giveUp {
			if _, err := engine.Forfeit(); err != nil {
				return GameResult{}, err
			}
			continue
		}

		events, err := engine.SubmitHumanMove(count)
		if err != nil {
			return GameResult{}, fmt.Errorf("policy %s chose %d with %d left: %w", s.config.Policy.Name(), count, state.PebblesRemaining, err)
		}
		for _, e := range events {
			if e.Player == game.Human {
				result.HumanMoves++
			} else {
				result.AutomatedMoves++
			}
		}
	}
}
