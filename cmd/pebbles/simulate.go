package main

import (
	"fmt"
	"os"

	"github.com/lox/pebbles/cmd/pebbles/shared"
	"github.com/lox/pebbles/internal/fileutil"
	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/randutil"
	"github.com/lox/pebbles/internal/simulator"
)

// SimulateCmd plays many games between a human policy and the engine
type SimulateCmd struct {
	Games      int    `kong:"default='1000',help='Number of games to play'"`
	Difficulty string `kong:"short='d',default='easy',help='Difficulty: easy or hard'"`
	Pebbles    uint32 `kong:"short='n',default='15',help='Pebbles in the initial pile'"`
	Max        uint32 `kong:"short='m',default='3',help='Most pebbles a player may take per turn'"`
	Policy     string `kong:"short='p',default='optimal',help='Human policy: greedy, optimal, random or resign'"`
	Seed       *int64 `kong:"help='Base seed; game i uses seed+i (optional)'"`
	Workers    int    `kong:"default='0',help='Concurrent games, 0 uses GOMAXPROCS'"`
	Output     string `kong:"short='o',help='Also write the report as JSON to this file'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger, err := shared.SetupLogger(os.Stderr, level)
	if err != nil {
		return err
	}

	difficulty, err := game.ParseDifficulty(c.Difficulty)
	if err != nil {
		return err
	}
	policy, err := simulator.PolicyByName(c.Policy)
	if err != nil {
		return err
	}

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}

	sim, err := simulator.New(simulator.Config{
		Games: c.Games,
		Game: game.Config{
			Difficulty:        difficulty,
			PebblesCount:      c.Pebbles,
			MaxPebblesPerTurn: c.Max,
		},
		Policy:  policy,
		Seed:    seed,
		Workers: c.Workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Policy %s vs %s engine, %d pebbles, take 1-%d, seed %d\n\n",
		policy.Name(), difficulty, c.Pebbles, c.Max, seed)
	fmt.Print(stats.Summary())

	if c.Output != "" {
		report := simulator.NewReport(sim.Config(), stats)
		if err := fileutil.WriteJSON(c.Output, report); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Output)
	}
	return nil
}
