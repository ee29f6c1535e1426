package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/pebbles/internal/auth"
	"github.com/lox/pebbles/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	src := []byte(`
server {
  address      = "0.0.0.0"
  port         = 9000
  log_level    = "debug"
  idle_timeout = "30s"
}

game {
  difficulty           = "hard"
  pebbles_count        = 21
  max_pebbles_per_turn = 4
}
`)

	cfg, err := ParseConfig(src, "pebbles.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	rt, err := cfg.ServerConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, rt.IdleTimeout)
	assert.Equal(t, game.Config{Difficulty: game.Hard, PebblesCount: 21, MaxPebblesPerTurn: 4}, rt.DefaultGame)
}

func TestParseConfig_Defaults(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(""), "empty.hcl")
		require.NoError(t, err)
		assert.Equal(t, DefaultFileConfig(), cfg)

		rt, err := cfg.ServerConfig()
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), rt)
	})

	t.Run("partial blocks", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("server {\n  port = 7000\n}\ngame {\n  pebbles_count = 50\n}\n"), "partial.hcl")
		require.NoError(t, err)
		assert.Equal(t, "localhost:7000", cfg.GetServerAddress())
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, 50, cfg.Game.PebblesCount)
		assert.Equal(t, 3, cfg.Game.MaxPebblesPerTurn)
		assert.Equal(t, "easy", cfg.Game.Difficulty)
	})

	t.Run("zero idle timeout disables expiry", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("server {\n  idle_timeout = \"0s\"\n}\n"), "idle.hcl")
		require.NoError(t, err)
		rt, err := cfg.ServerConfig()
		require.NoError(t, err)
		assert.Zero(t, rt.IdleTimeout)
	})
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("server {"), "broken.hcl")
	assert.Error(t, err)

	_, err = ParseConfig([]byte("bogus = 1\n"), "unknown.hcl")
	assert.Error(t, err)
}

func TestFileConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FileConfig)
	}{
		{"port too low", func(c *FileConfig) { c.Server.Port = -1 }},
		{"port too high", func(c *FileConfig) { c.Server.Port = 70000 }},
		{"bad duration", func(c *FileConfig) { c.Server.IdleTimeout = "soon" }},
		{"negative duration", func(c *FileConfig) { c.Server.IdleTimeout = "-1s" }},
		{"negative pebbles", func(c *FileConfig) { c.Game.PebblesCount = -5 }},
		{"negative max", func(c *FileConfig) { c.Game.MaxPebblesPerTurn = -1 }},
		{"unknown difficulty", func(c *FileConfig) { c.Game.Difficulty = "nightmare" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFileConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
			_, err := cfg.ServerConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
		require.NoError(t, err)
		assert.Equal(t, DefaultFileConfig(), cfg)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pebbles.hcl")
		require.NoError(t, os.WriteFile(path, []byte("game {\n  difficulty = \"hard\"\n}\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "hard", cfg.Game.Difficulty)
	})
}

func TestFileConfigValidator(t *testing.T) {
	cfg, err := ParseConfig([]byte("server {\n  auth_tokens = [\"s3cret\", \"other\"]\n}\n"), "auth.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	v, err := cfg.Validator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(context.Background(), "other"))
	assert.ErrorIs(t, v.Validate(context.Background(), "nope"), auth.ErrInvalidToken)

	open, err := DefaultFileConfig().Validator()
	require.NoError(t, err)
	assert.NoError(t, open.Validate(context.Background(), ""))

	cfg.Server.AuthTokens = []string{""}
	assert.Error(t, cfg.Validate())
}
