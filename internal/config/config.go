package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Storage
	BaseDir      string `env:"KIOSK_BASE_DIR"`
	SettingsFile string `env:"KIOSK_SETTINGS_FILE" envDefault:".settings"`
	StagingFile  string `env:"KIOSK_STAGING_FILE" envDefault:"tmp.csv"`
	ArchiveDir   string `env:"KIOSK_ARCHIVE_DIR" envDefault:"sentences"`

	// Control channel
	ListenAddr string `env:"KIOSK_LISTEN_ADDR" envDefault:"127.0.0.1:7000"`

	// Forwarding channel
	ForwardBindAddr string        `env:"KIOSK_FORWARD_BIND_ADDR" envDefault:":0"`
	ForwardTimeout  time.Duration `env:"KIOSK_FORWARD_TIMEOUT" envDefault:"1s"`

	// Logging
	LogFile  string `env:"KIOSK_LOG_FILE" envDefault:"output.log"`
	LogLevel string `env:"KIOSK_LOG_LEVEL" envDefault:"debug"`

	// Status report, cron syntax; empty disables it
	StatusSchedule string `env:"KIOSK_STATUS_SCHEDULE" envDefault:"@hourly"`
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Load parses the environment and resolves the base directory. An empty
// KIOSK_BASE_DIR falls back to the user's public directory.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve base dir: %w", err)
		}
		cfg.BaseDir = filepath.Join(home, "Public")
	}
	return cfg, nil
}

// LogPath returns the absolute log file path, or "" when file logging is off.
func (c *Config) LogPath() string {
	if c.LogFile == "" {
		return ""
	}
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.BaseDir, c.LogFile)
}
