package game

import (
	"fmt"
	"strings"
)

// Difficulty selects the automated player's strategy.
type Difficulty int

const (
	// Easy takes everything when it can finish, otherwise a random amount
	// below the per-turn maximum.
	Easy Difficulty = iota
	// Hard plays the winning subtraction-game move whenever one exists.
	Hard
)

// String returns the string representation of a difficulty
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Hard
}

// ParseDifficulty converts a case-insensitive name into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "hard":
		return Hard, nil
	default:
		return 0, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfiguration, s)
	}
}

// Player identifies one side of the game.
type Player int

const (
	Human Player = iota
	Automated
)

// String returns the string representation of a player
func (p Player) String() string {
	switch p {
	case Human:
		return "human"
	case Automated:
		return "automated"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (p Player) Opponent() Player {
	if p == Human {
		return Automated
	}
	return Human
}

// Config holds the parameters a game is created with.
type Config struct {
	Difficulty        Difficulty
	PebblesCount      uint32
	MaxPebblesPerTurn uint32
}

// Validate checks the configuration and returns an error wrapping
// ErrInvalidConfiguration when it cannot start a game.
func (c Config) Validate() error {
	if c.PebblesCount == 0 {
		return fmt.Errorf("%w: pebbles count must be at least 1", ErrInvalidConfiguration)
	}
	if c.MaxPebblesPerTurn == 0 {
		return fmt.Errorf("%w: max pebbles per turn must be at least 1", ErrInvalidConfiguration)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %d", ErrInvalidConfiguration, int(c.Difficulty))
	}
	return nil
}

// GameState is a snapshot of a game.
type GameState struct {
	PebblesCount      uint32
	MaxPebblesPerTurn uint32
	PebblesRemaining  uint32
	Difficulty        Difficulty
	FirstPlayer       Player
	// Winner is nil while the game is in progress.
	Winner *Player
	// Forfeited is set when the human side conceded; it is the only way a
	// game ends with pebbles left.
	Forfeited bool
}

// Finished reports whether the game has a winner.
func (s GameState) Finished() bool {
	return s.Winner != nil
}

// clone returns a copy that shares no pointers with s.
func (s GameState) clone() GameState {
	if s.Winner != nil {
		w := *s.Winner
		s.Winner = &w
	}
	return s
}
