package simulator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/lox/pebbles/internal/game"
)

// ErrUnknownPolicy is returned by PolicyByName for an unregistered name.
var ErrUnknownPolicy = errors.New("simulator: unknown policy")

// Policy plays the human side of a simulated game.
type Policy interface {
	Name() string
	// Choose returns how many pebbles to take, or giveUp to forfeit.
	Choose(state game.GameState, rng *rand.Rand) (count uint32, giveUp bool)
}

// RandomPolicy takes a uniformly random legal count.
type RandomPolicy struct{}

func (RandomPolicy) Name() string { return "random" }

func (RandomPolicy) Choose(state game.GameState, rng *rand.Rand) (uint32, bool) {
	limit := min(state.MaxPebblesPerTurn, state.PebblesRemaining)
	return rng.Uint32N(limit) + 1, false
}

// GreedyPolicy always takes as many as it may.
type GreedyPolicy struct{}

func (GreedyPolicy) Name() string { return "greedy" }

func (GreedyPolicy) Choose(state game.GameState, _ *rand.Rand) (uint32, bool) {
	return min(state.MaxPebblesPerTurn, state.PebblesRemaining), false
}

// OptimalPolicy leaves the opponent a multiple of max+1 whenever it can and
// takes a single pebble otherwise.
type OptimalPolicy struct{}

func (OptimalPolicy) Name() string { return "optimal" }

func (OptimalPolicy) Choose(state game.GameState, _ *rand.Rand) (uint32, bool) {
	if n, ok := game.GrundyMove(state.PebblesRemaining, state.MaxPebblesPerTurn); ok {
		return n, false
	}
	return 1, false
}

// ResignPolicy plays like OptimalPolicy but gives up from a lost position.
type ResignPolicy struct{}

func (ResignPolicy) Name() string { return "resign" }

func (ResignPolicy) Choose(state game.GameState, _ *rand.Rand) (uint32, bool) {
	if n, ok := game.GrundyMove(state.PebblesRemaining, state.MaxPebblesPerTurn); ok {
		return n, false
	}
	return 0, true
}

var policies = map[string]Policy{
	"random":  RandomPolicy{},
	"greedy":  GreedyPolicy{},
	"optimal": OptimalPolicy{},
	"resign":  ResignPolicy{},
}

// PolicyByName looks up a policy by name, ignoring case.
func PolicyByName(name string) (Policy, error) {
	p, ok := policies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownPolicy, name, strings.Join(PolicyNames(), ", "))
	}
	return p, nil
}

// PolicyNames lists the registered policies in sorted order.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
