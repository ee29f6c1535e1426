package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lox/pebbles/cmd/pebbles/shared"
	"github.com/lox/pebbles/internal/randutil"
	"github.com/lox/pebbles/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServerCmd runs the websocket server
type ServerCmd struct {
	Config      string `kong:"short='c',default='pebbles.hcl',help='Path to HCL configuration file'"`
	Addr        string `kong:"short='a',env='PEBBLES_ADDR',help='Server address to bind to (overrides config)'"`
	LogLevel    string `kong:"short='l',env='PEBBLES_LOG_LEVEL',help='Log level (overrides config)'"`
	IdleTimeout string `kong:"env='PEBBLES_IDLE_TIMEOUT',help='Close sessions idle this long, 0 disables (overrides config)'"`
	AuthToken   string `kong:"env='PEBBLES_AUTH_TOKEN',help='Require this token from clients (adds to config auth_tokens)'"`
	Seed        *int64 `kong:"help='Deterministic RNG seed for the server (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.IdleTimeout != "" {
		cfg.Server.IdleTimeout = c.IdleTimeout
	}
	if c.AuthToken != "" {
		cfg.Server.AuthTokens = append(cfg.Server.AuthTokens, c.AuthToken)
	}

	serverCfg, err := cfg.ServerConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	validator, err := cfg.Validator()
	if err != nil {
		return err
	}

	logger, err := shared.SetupLogger(os.Stderr, cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = randutil.Seed()
		logger.Info("Using random seed", "seed", seed)
	}

	s := server.NewServer(logger, randutil.New(seed),
		server.WithConfig(serverCfg),
		server.WithValidator(validator))

	logger.Info("Starting pebbles server",
		"addr", addr,
		"idleTimeout", serverCfg.IdleTimeout,
		"auth", len(cfg.Server.AuthTokens) > 0,
		"difficulty", serverCfg.DefaultGame.Difficulty,
		"pebbles", serverCfg.DefaultGame.PebblesCount,
		"maxPerTurn", serverCfg.DefaultGame.MaxPebblesPerTurn)

	// Setup graceful shutdown
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
