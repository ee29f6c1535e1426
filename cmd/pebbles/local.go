package main

import (
	"github.com/lox/pebbles/cmd/pebbles/shared"
	"github.com/lox/pebbles/internal/randutil"
	"github.com/lox/pebbles/internal/server"
	"github.com/lox/pebbles/internal/tui"
)

// LocalCmd plays against an in-process engine
type LocalCmd struct {
	Seed      *int64 `kong:"help='Seed live randomness for a reproducible session (optional)'"`
	GameFlags `embed:""`
	UIFlags   `embed:""`
}

func (c *LocalCmd) Run() error {
	logger, closeLog, err := shared.SetupFileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("Starting local game", "seed", seed)

	// Every game of the session draws from one seeded stream.
	rng := randutil.New(seed)
	live := randutil.NewLive(rng)
	host := server.NewGameHost(server.DefaultConfig().DefaultGame, func() *randutil.Source {
		return live
	}, logger)

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	return tui.Run(ctx, tui.NewLocalBackend(host), c.params(), tui.Options{
		Logger:    logger,
		NoColor:   c.NoColor,
		AltScreen: !c.NoAltScreen,
	})
}
