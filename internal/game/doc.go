// Package game implements the rules engine for the pebbles subtraction game.
//
// Two sides share a pile of pebbles and take turns removing between one and
// a fixed per-turn maximum. Whoever takes the last pebble wins. One side is
// driven by the caller (the human); the other plays automatically at one of
// two difficulty levels.
//
// # Basic Usage
//
//	src := randutil.NewLive(nil)
//	eng, opening, err := game.New(game.Config{
//	    Difficulty:        game.Hard,
//	    PebblesCount:      15,
//	    MaxPebblesPerTurn: 3,
//	}, src)
//	if err != nil {
//	    return err
//	}
//	// opening holds the automated move when the automated side starts.
//	events, err := eng.SubmitHumanMove(2)
//
// # Deterministic Testing
//
// The automated side draws every random decision from a *randutil.Source.
// A replay source makes every game reproducible:
//
//	src, _ := randutil.NewReplay([]uint32{1, 2})
//	eng, opening, _ := game.New(cfg, src)
//
// # Errors
//
// Every failing operation returns one of ErrInvalidConfiguration,
// ErrInvalidMove or ErrGameFinished (possibly wrapped) and leaves the engine
// exactly as it was before the call.
//
// An Engine is not safe for concurrent use; callers serialise access.
package game
