// Package config loads bot configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full bot configuration.
type Config struct {
	// Token authenticates the bot. DevToken, when set together with
	// Dev, replaces it so a second bot instance can run against a test
	// server.
	Token    string `env:"BOT_TOKEN"`
	DevToken string `env:"BOT_TOKEN_DEV"`
	Dev      bool   `env:"BOT_DEV" envDefault:"false"`

	GatewayURL string `env:"GATEWAY_URL" envDefault:"wss://gateway.example.chat/v1"`

	// DBPath is the sqlite file holding the rating ladder.
	DBPath string `env:"DB_PATH" envDefault:"elo.db"`

	// AdminIDs lists user IDs allowed to puppet either side of a game.
	AdminIDs []string `env:"ADMIN_IDS" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Dev && cfg.DevToken != "" {
		cfg.Token = cfg.DevToken
	}
	if cfg.Token == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}
	return cfg, nil
}
