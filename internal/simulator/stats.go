package simulator

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/pebbles/internal/game"
)

// GameResult is the outcome of one simulated game.
type GameResult struct {
	Seed           int64
	FirstPlayer    game.Player
	Winner         game.Player
	Forfeited      bool
	HumanMoves     int
	AutomatedMoves int
}

// Statistics aggregates simulated games.
type Statistics struct {
	Games         int
	HumanFirst    int
	HumanWins     int
	AutomatedWins int
	Forfeits      int

	HumanMoves     int
	AutomatedMoves int

	// Game length in moves, both sides
	SumMoves  float64
	SumMoves2 float64
	MaxMoves  int
}

// Add records a game result
func (s *Statistics) Add(r GameResult) {
	s.Games++
	if r.FirstPlayer == game.Human {
		s.HumanFirst++
	}
	if r.Winner == game.Human {
		s.HumanWins++
	} else {
		s.AutomatedWins++
	}
	if r.Forfeited {
		s.Forfeits++
	}

	s.HumanMoves += r.HumanMoves
	s.AutomatedMoves += r.AutomatedMoves

	moves := r.HumanMoves + r.AutomatedMoves
	s.SumMoves += float64(moves)
	s.SumMoves2 += float64(moves * moves)
	s.MaxMoves = max(s.MaxMoves, moves)
}

// HumanWinRate returns the fraction of games won by the human policy
func (s *Statistics) HumanWinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.HumanWins) / float64(s.Games)
}

// WinRateInterval95 returns the normal-approximation 95% interval for the
// human win rate, clamped to [0, 1].
func (s *Statistics) WinRateInterval95() (float64, float64) {
	if s.Games == 0 {
		return 0, 0
	}
	p := s.HumanWinRate()
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(s.Games))
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// MeanMoves returns the average game length
func (s *Statistics) MeanMoves() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumMoves / float64(s.Games)
}

// MeanAutomatedMoves returns the average number of automated moves per game
func (s *Statistics) MeanAutomatedMoves() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.AutomatedMoves) / float64(s.Games)
}

// StdDevMoves returns the sample standard deviation of game length
func (s *Statistics) StdDevMoves() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.MeanMoves()
	variance := (s.SumMoves2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
	return math.Sqrt(math.Max(variance, 0))
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if s.HumanWins+s.AutomatedWins != s.Games {
		return fmt.Errorf("wins %d+%d do not sum to %d games", s.HumanWins, s.AutomatedWins, s.Games)
	}
	if s.Forfeits > s.AutomatedWins {
		return fmt.Errorf("%d forfeits exceed %d automated wins", s.Forfeits, s.AutomatedWins)
	}
	return nil
}

// Summary renders the statistics as a small text report
func (s *Statistics) Summary() string {
	var b strings.Builder
	lo, hi := s.WinRateInterval95()

	fmt.Fprintf(&b, "Games:           %d\n", s.Games)
	fmt.Fprintf(&b, "Human first:     %d\n", s.HumanFirst)
	fmt.Fprintf(&b, "Human wins:      %d (%.1f%%, 95%% CI %.1f%%-%.1f%%)\n", s.HumanWins, 100*s.HumanWinRate(), 100*lo, 100*hi)
	fmt.Fprintf(&b, "Automated wins:  %d\n", s.AutomatedWins)
	fmt.Fprintf(&b, "Forfeits:        %d\n", s.Forfeits)
	fmt.Fprintf(&b, "Moves per game:  %.2f ± %.2f (max %d)\n", s.MeanMoves(), s.StdDevMoves(), s.MaxMoves)
	fmt.Fprintf(&b, "Automated moves: %.2f per game\n", s.MeanAutomatedMoves())
	return b.String()
}

// Report is the machine readable form of a simulation run.
type Report struct {
	Policy            string  `json:"policy"`
	Difficulty        string  `json:"difficulty"`
	PebblesCount      uint32  `json:"pebblesCount"`
	MaxPebblesPerTurn uint32  `json:"maxPebblesPerTurn"`
	Seed              int64   `json:"seed"`
	Games             int     `json:"games"`
	HumanFirst        int     `json:"humanFirst"`
	HumanWins         int     `json:"humanWins"`
	AutomatedWins     int     `json:"automatedWins"`
	Forfeits          int     `json:"forfeits"`
	HumanWinRate      float64 `json:"humanWinRate"`
	MeanMoves         float64 `json:"meanMoves"`
	StdDevMoves       float64 `json:"stdDevMoves"`
	MaxMoves          int     `json:"maxMoves"`
	MeanAutomated     float64 `json:"meanAutomatedMoves"`
}

// NewReport combines a run's configuration with its statistics.
func NewReport(cfg Config, s *Statistics) Report {
	r := Report{
		Difficulty:        cfg.Game.Difficulty.String(),
		PebblesCount:      cfg.Game.PebblesCount,
		MaxPebblesPerTurn: cfg.Game.MaxPebblesPerTurn,
		Seed:              cfg.Seed,
		Games:             s.Games,
		HumanFirst:        s.HumanFirst,
		HumanWins:         s.HumanWins,
		AutomatedWins:     s.AutomatedWins,
		Forfeits:          s.Forfeits,
		HumanWinRate:      s.HumanWinRate(),
		MeanMoves:         s.MeanMoves(),
		StdDevMoves:       s.StdDevMoves(),
		MaxMoves:          s.MaxMoves,
		MeanAutomated:     s.MeanAutomatedMoves(),
	}
	if cfg.Policy != nil {
		r.Policy = cfg.Policy.Name()
	}
	return r
}
