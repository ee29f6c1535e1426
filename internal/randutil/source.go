package randutil

import (
	"errors"
	rand "math/rand/v2"
	"slices"
)

// ErrEmptySequence is returned when a replay source is built without values.
var ErrEmptySequence = errors.New("randutil: replay sequence is empty")

type sourceKind uint8

const (
	kindLive sourceKind = iota + 1
	kindReplay
)

// Source produces the uint32 values the automated player draws on. It is
// either live (backed by a generator) or a replay of a fixed sequence that
// wraps around once exhausted. The zero value is not usable.
//
// A Source is owned by a single engine and is not safe for concurrent use.
type Source struct {
	kind sourceKind

	rng *rand.Rand

	values []uint32
	index  int
}

// NewLive returns a live source drawing from rng. A nil rng is replaced by
// an entropy-seeded generator.
func NewLive(rng *rand.Rand) *Source {
	if rng == nil {
		rng = NewEntropy()
	}
	return &Source{kind: kindLive, rng: rng}
}

// NewReplay returns a source that yields values in order and starts over
// after the last one. The slice is copied.
func NewReplay(values []uint32) (*Source, error) {
	if len(values) == 0 {
		return nil, ErrEmptySequence
	}
	return &Source{kind: kindReplay, values: slices.Clone(values)}, nil
}

// Next returns the next value from the source.
func (s *Source) Next() uint32 {
	switch s.kind {
	case kindLive:
		return s.rng.Uint32()
	case kindReplay:
		v := s.values[s.index]
		s.index = (s.index + 1) % len(s.values)
		return v
	default:
		panic("randutil: use of uninitialised Source")
	}
}

// IsReplay reports whether the source replays a fixed sequence.
func (s *Source) IsReplay() bool {
	return s.kind == kindReplay
}

// String names the variant for logging.
func (s *Source) String() string {
	switch s.kind {
	case kindLive:
		return "live"
	case kindReplay:
		return "replay"
	default:
		return "invalid"
	}
}
