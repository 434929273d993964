package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the client reads from the environment. The server
// address is the single remote collaborator; all endpoints hang off it.
type Config struct {
	ServerAddr string `env:"ICEBREAK_SERVER" envDefault:"localhost:5000"`

	RoomPollInterval    time.Duration `env:"ICEBREAK_ROOM_POLL" envDefault:"2s"`
	BrowserPollInterval time.Duration `env:"ICEBREAK_BROWSER_POLL" envDefault:"10s"`
	HTTPTimeout         time.Duration `env:"ICEBREAK_HTTP_TIMEOUT" envDefault:"10s"`

	// StateDir is where the persisted user record and logs live.
	// Empty means ~/.icebreak.
	StateDir string `env:"ICEBREAK_STATE_DIR"`
	LogFile  string `env:"ICEBREAK_LOG_FILE"`
}

// Load reads .env if present, then the process environment. A missing .env
// is not an error; a malformed one is.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".icebreak")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.StateDir, "icebreak.log")
	}
	return cfg, nil
}

// BaseURL normalizes the configured address into a usable http base URL.
func (c Config) BaseURL() string {
	return "http://" + c.ServerAddr
}
