package simulator

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func run(t *testing.T, cfg Config) *Statistics {
	t.Helper()
	cfg.Logger = quietLogger()
	sim, err := New(cfg)
	require.NoError(t, err)
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, stats.Validate())
	return stats
}

func TestPolicyByName(t *testing.T) {
	for _, name := range []string{"random", "greedy", "optimal", "resign", " Optimal "} {
		p, err := PolicyByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, p)
	}

	_, err := PolicyByName("psychic")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
	assert.Equal(t, []string{"greedy", "optimal", "random", "resign"}, PolicyNames())
}

func TestPolicies_StayLegal(t *testing.T) {
	rng := randutil.New(9)
	for _, p := range []Policy{RandomPolicy{}, GreedyPolicy{}, OptimalPolicy{}} {
		for remaining := uint32(1); remaining <= 30; remaining++ {
			for maxPer := uint32(1); maxPer <= 6; maxPer++ {
				state := game.GameState{PebblesCount: 30, MaxPebblesPerTurn: maxPer, PebblesRemaining: remaining}
				n, giveUp := p.Choose(state, rng)
				assert.False(t, giveUp)
				assert.GreaterOrEqual(t, n, uint32(1), p.Name())
				assert.LessOrEqual(t, n, min(maxPer, remaining), p.Name())
			}
		}
	}
}

func TestGreedyAndOptimalChoices(t *testing.T) {
	state := game.GameState{MaxPebblesPerTurn: 3, PebblesRemaining: 14}

	n, _ := GreedyPolicy{}.Choose(state, nil)
	assert.Equal(t, uint32(3), n)

	n, _ = OptimalPolicy{}.Choose(state, nil)
	assert.Equal(t, uint32(2), n)

	state.PebblesRemaining = 12
	n, _ = OptimalPolicy{}.Choose(state, nil)
	assert.Equal(t, uint32(1), n)

	_, giveUp := ResignPolicy{}.Choose(state, nil)
	assert.True(t, giveUp)
}

func TestNew_Validation(t *testing.T) {
	valid := Config{Games: 1, Game: game.Config{PebblesCount: 10, MaxPebblesPerTurn: 3}, Policy: GreedyPolicy{}}

	_, err := New(valid)
	require.NoError(t, err)

	bad := valid
	bad.Games = 0
	_, err = New(bad)
	assert.Error(t, err)

	bad = valid
	bad.Policy = nil
	_, err = New(bad)
	assert.Error(t, err)

	bad = valid
	bad.Game.PebblesCount = 0
	_, err = New(bad)
	assert.ErrorIs(t, err, game.ErrInvalidConfiguration)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := Config{
		Games:  200,
		Game:   game.Config{Difficulty: game.Easy, PebblesCount: 40, MaxPebblesPerTurn: 5},
		Policy: RandomPolicy{},
		Seed:   1234,
	}

	cfg.Workers = 1
	a := run(t, cfg)
	cfg.Workers = 8
	b := run(t, cfg)

	assert.Equal(t, a, b)
	assert.Equal(t, 200, a.Games)
	assert.Greater(t, a.HumanFirst, 0)
	assert.Less(t, a.HumanFirst, 200)
}

func TestRun_OptimalHumanAgainstHard(t *testing.T) {
	// 15 is not a multiple of 4, so whoever moves first wins with perfect play.
	stats := run(t, Config{
		Games:  100,
		Game:   game.Config{Difficulty: game.Hard, PebblesCount: 15, MaxPebblesPerTurn: 3},
		Policy: OptimalPolicy{},
		Seed:   7,
	})

	assert.Equal(t, stats.HumanFirst, stats.HumanWins)
	assert.Equal(t, 0, stats.Forfeits)
}

func TestRun_ResignFromLostPosition(t *testing.T) {
	// 16 is a multiple of 4: the first mover is lost.
	stats := run(t, Config{
		Games:  100,
		Game:   game.Config{Difficulty: game.Hard, PebblesCount: 16, MaxPebblesPerTurn: 3},
		Policy: ResignPolicy{},
		Seed:   99,
	})

	assert.Equal(t, stats.HumanFirst, stats.Forfeits)
	assert.Equal(t, stats.Games-stats.HumanFirst, stats.HumanWins)
}

func TestRun_Cancelled(t *testing.T) {
	sim, err := New(Config{
		Games:  10,
		Game:   game.Config{PebblesCount: 10, MaxPebblesPerTurn: 3},
		Policy: GreedyPolicy{},
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatistics(t *testing.T) {
	var s Statistics
	s.Add(GameResult{FirstPlayer: game.Human, Winner: game.Human, HumanMoves: 2, AutomatedMoves: 1})
	s.Add(GameResult{FirstPlayer: game.Automated, Winner: game.Automated, Forfeited: true, AutomatedMoves: 1})
	s.Add(GameResult{FirstPlayer: game.Automated, Winner: game.Automated, HumanMoves: 2, AutomatedMoves: 3})

	require.NoError(t, s.Validate())
	assert.Equal(t, 3, s.Games)
	assert.Equal(t, 1, s.HumanFirst)
	assert.Equal(t, 1, s.Forfeits)
	assert.InDelta(t, 1.0/3, s.HumanWinRate(), 1e-9)
	assert.InDelta(t, 3.0, s.MeanMoves(), 1e-9)
	assert.InDelta(t, 5.0/3, s.MeanAutomatedMoves(), 1e-9)
	assert.Equal(t, 5, s.MaxMoves)
	assert.InDelta(t, 2.0, s.StdDevMoves(), 1e-9)

	lo, hi := s.WinRateInterval95()
	assert.GreaterOrEqual(t, lo, 0.0)
	assert.LessOrEqual(t, hi, 1.0)
	assert.Less(t, lo, hi)

	assert.Contains(t, s.Summary(), "Games:           3")

	s.AutomatedWins = 0
	assert.Error(t, s.Validate())
}

func TestNewReport(t *testing.T) {
	cfg := Config{
		Games:  20,
		Game:   game.Config{Difficulty: game.Hard, PebblesCount: 15, MaxPebblesPerTurn: 3},
		Policy: OptimalPolicy{},
		Seed:   5,
		Logger: quietLogger(),
	}
	sim, err := New(cfg)
	require.NoError(t, err)
	assert.Greater(t, sim.Config().Workers, 0)

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	r := NewReport(sim.Config(), stats)
	assert.Equal(t, "optimal", r.Policy)
	assert.Equal(t, "hard", r.Difficulty)
	assert.Equal(t, 20, r.Games)
	assert.Equal(t, stats.HumanWins, r.HumanWins)
	assert.Equal(t, int64(5), r.Seed)
}
