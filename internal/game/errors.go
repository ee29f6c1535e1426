package game

import "errors"

var (
	// ErrInvalidConfiguration indicates a game cannot be created with the
	// requested parameters.
	ErrInvalidConfiguration = errors.New("game: invalid configuration")

	// ErrInvalidMove indicates a human move outside 1..min(max, remaining).
	ErrInvalidMove = errors.New("game: invalid move")

	// ErrGameFinished indicates an action after the game already has a winner.
	ErrGameFinished = errors.New("game: game is over")
)
