package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/pebbles/internal/auth"
	"github.com/lox/pebbles/internal/game"
)

const (
	defaultAddress     = "localhost"
	defaultPort        = 8080
	defaultLogLevel    = "info"
	defaultIdleTimeout = 10 * time.Minute
	defaultPingPeriod  = 54 * time.Second
)

// Config holds the runtime settings of a Server.
type Config struct {
	// IdleTimeout closes sessions that have not sent a message for this long.
	// Zero disables expiry.
	IdleTimeout time.Duration
	// PingPeriod is how often sessions ping the client. A pong must arrive
	// within 10/9 of it.
	PingPeriod time.Duration
	// DefaultGame fills any parameter an init or restart request leaves out.
	DefaultGame game.Config
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		IdleTimeout: defaultIdleTimeout,
		PingPeriod:  defaultPingPeriod,
		DefaultGame: game.Config{
			Difficulty:        game.Easy,
			PebblesCount:      15,
			MaxPebblesPerTurn: 3,
		},
	}
}

// FileConfig represents the HCL configuration file
type FileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address     string   `hcl:"address,optional"`
	Port        int      `hcl:"port,optional"`
	LogLevel    string   `hcl:"log_level,optional"`
	IdleTimeout string   `hcl:"idle_timeout,optional"`
	AuthTokens  []string `hcl:"auth_tokens,optional"`
}

// GameSettings contains the default game parameters
type GameSettings struct {
	Difficulty        string `hcl:"difficulty,optional"`
	PebblesCount      int    `hcl:"pebbles_count,optional"`
	MaxPebblesPerTurn int    `hcl:"max_pebbles_per_turn,optional"`
}

// DefaultFileConfig returns default file configuration
func DefaultFileConfig() *FileConfig {
	defaults := DefaultConfig()
	return &FileConfig{
		Server: &ServerSettings{
			Address:     defaultAddress,
			Port:        defaultPort,
			LogLevel:    defaultLogLevel,
			IdleTimeout: defaultIdleTimeout.String(),
		},
		Game: &GameSettings{
			Difficulty:        defaults.DefaultGame.Difficulty.String(),
			PebblesCount:      int(defaults.DefaultGame.PebblesCount),
			MaxPebblesPerTurn: int(defaults.DefaultGame.MaxPebblesPerTurn),
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*FileConfig, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultFileConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source and applies defaults for missing values.
func ParseConfig(src []byte, filename string) (*FileConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultFileConfig()
	if config.Server == nil {
		config.Server = defaults.Server
	}
	if config.Game == nil {
		config.Game = defaults.Game
	}

	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Server.IdleTimeout == "" {
		config.Server.IdleTimeout = defaults.Server.IdleTimeout
	}

	if config.Game.Difficulty == "" {
		config.Game.Difficulty = defaults.Game.Difficulty
	}
	if config.Game.PebblesCount == 0 {
		config.Game.PebblesCount = defaults.Game.PebblesCount
	}
	if config.Game.MaxPebblesPerTurn == 0 {
		config.Game.MaxPebblesPerTurn = defaults.Game.MaxPebblesPerTurn
	}

	return &config, nil
}

// Validate validates the file configuration
func (c *FileConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	idle, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil {
		return fmt.Errorf("invalid idle_timeout %q: %w", c.Server.IdleTimeout, err)
	}
	if idle < 0 {
		return fmt.Errorf("idle_timeout cannot be negative: %s", idle)
	}
	for i, token := range c.Server.AuthTokens {
		if token == "" {
			return fmt.Errorf("auth_tokens[%d] is empty", i)
		}
	}
	if c.Game.PebblesCount < 1 || int64(c.Game.PebblesCount) > int64(^uint32(0)) {
		return fmt.Errorf("game: pebbles_count out of range: %d", c.Game.PebblesCount)
	}
	if c.Game.MaxPebblesPerTurn < 1 || int64(c.Game.MaxPebblesPerTurn) > int64(^uint32(0)) {
		return fmt.Errorf("game: max_pebbles_per_turn out of range: %d", c.Game.MaxPebblesPerTurn)
	}
	if _, err := game.ParseDifficulty(c.Game.Difficulty); err != nil {
		return err
	}
	return nil
}

// ServerConfig converts a validated file configuration into runtime settings.
func (c *FileConfig) ServerConfig() (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	idle, _ := time.ParseDuration(c.Server.IdleTimeout)
	difficulty, _ := game.ParseDifficulty(c.Game.Difficulty)

	return Config{
		IdleTimeout: idle,
		PingPeriod:  defaultPingPeriod,
		DefaultGame: game.Config{
			Difficulty:        difficulty,
			PebblesCount:      uint32(c.Game.PebblesCount),
			MaxPebblesPerTurn: uint32(c.Game.MaxPebblesPerTurn),
		},
	}, nil
}

// GetServerAddress returns the full server address
func (c *FileConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Validator returns the connection validator for the configured tokens. With
// no tokens every connection is accepted.
func (c *FileConfig) Validator() (auth.Validator, error) {
	if len(c.Server.AuthTokens) == 0 {
		return auth.NoopValidator{}, nil
	}
	return auth.NewTokenValidator(c.Server.AuthTokens...)
}
