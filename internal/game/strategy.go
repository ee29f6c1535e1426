package game

import "github.com/lox/pebbles/internal/randutil"

// GrundyMove returns the move that leaves the opponent a multiple of
// max+1 pebbles. ok is false when remaining is already such a multiple and
// no move keeps the advantage.
func GrundyMove(remaining, maxPerTurn uint32) (count uint32, ok bool) {
	// uint64 so that maxPerTurn+1 cannot wrap to zero.
	g := uint64(remaining) % (uint64(maxPerTurn) + 1)
	return uint32(g), g != 0
}

// automatedCount picks how many pebbles the automated side takes. Callers
// guarantee the game is in progress, so remaining >= 1.
func automatedCount(d Difficulty, remaining, maxPerTurn uint32, src *randutil.Source) uint32 {
	switch d {
	case Hard:
		if g, ok := GrundyMove(remaining, maxPerTurn); ok {
			return g
		}
		return randomCount(maxPerTurn, src)
	default:
		if remaining < maxPerTurn {
			return remaining
		}
		return randomCount(maxPerTurn, src)
	}
}

// randomCount draws from 1..maxPerTurn-1, never the maximum itself. With a
// cap of one there is nothing to draw and the only legal move is 1.
func randomCount(maxPerTurn uint32, src *randutil.Source) uint32 {
	if maxPerTurn == 1 {
		return 1
	}
	return src.Next()%(maxPerTurn-1) + 1
}
