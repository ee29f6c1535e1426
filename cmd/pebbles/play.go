package main

import (
	"context"
	"time"

	"github.com/lox/pebbles/cmd/pebbles/shared"
	"github.com/lox/pebbles/internal/client"
	"github.com/lox/pebbles/internal/server"
	"github.com/lox/pebbles/internal/tui"
)

const defaultServerURL = "http://localhost:8080"

// GameFlags are the game parameters shared by the interactive commands
type GameFlags struct {
	Difficulty string   `kong:"short='d',help='Difficulty: easy or hard'"`
	Pebbles    *uint32  `kong:"short='n',help='Pebbles in the initial pile'"`
	Max        *uint32  `kong:"short='m',help='Most pebbles a player may take per turn'"`
	Replay     []uint32 `kong:"sep=',',help='Replay this comma separated random sequence instead of live randomness'"`
}

func (f GameFlags) params() server.GameParams {
	params := server.GameParams{
		Difficulty:        f.Difficulty,
		PebblesCount:      f.Pebbles,
		MaxPebblesPerTurn: f.Max,
	}
	if len(f.Replay) > 0 {
		params.RandomSequence = f.Replay
	}
	return params
}

// UIFlags control the terminal and where logs go
type UIFlags struct {
	LogFile     string `kong:"help='Write logs to this file'"`
	LogLevel    string `kong:"default='info',help='Log level'"`
	NoColor     bool   `kong:"help='Disable colour output'"`
	NoAltScreen bool   `kong:"help='Render inline instead of in the alternate screen'"`
}

// PlayCmd plays against a remote server
type PlayCmd struct {
	Server    string `kong:"short='s',default='http://localhost:8080',env='PEBBLES_SERVER',help='Server URL'"`
	Token     string `kong:"env='PEBBLES_TOKEN',help='Auth token for the server'"`
	GameFlags `embed:""`
	UIFlags   `embed:""`
}

// serverURL returns the server to dial. An empty PEBBLES_SERVER still counts
// as set for kong, so it is treated as unset here.
func (c *PlayCmd) serverURL() string {
	if c.Server == "" {
		return defaultServerURL
	}
	return c.Server
}

func (c *PlayCmd) Run() error {
	logger, closeLog, err := shared.SetupFileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := client.Dial(dialCtx, c.serverURL(), logger, client.WithToken(c.Token))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	return tui.Run(ctx, conn, c.params(), tui.Options{
		Logger:    logger,
		NoColor:   c.NoColor,
		AltScreen: !c.NoAltScreen,
	})
}
