package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the galaxy knowledge store.
// Environment variables are parsed from the SPACEMOLT_ prefix.
type Config struct {
	// DataDir is where fleet state lives. Empty means ~/.spacemolt.
	DataDir string `envconfig:"DATA_DIR" default:""`

	// SnapshotPath overrides the snapshot file location. Empty means
	// <DataDir>/galaxy.json.
	SnapshotPath string `envconfig:"SNAPSHOT_PATH" default:""`

	// SaveDebounce is how long the persistence scheduler waits after a
	// mutation before writing the snapshot.
	SaveDebounce time.Duration `envconfig:"SAVE_DEBOUNCE" default:"5s"`

	// SaveMaxAttempts bounds retries of a failed snapshot write.
	SaveMaxAttempts int `envconfig:"SAVE_MAX_ATTEMPTS" default:"5"`

	// SaveMaxBackoff caps the exponential backoff between write retries.
	SaveMaxBackoff time.Duration `envconfig:"SAVE_MAX_BACKOFF" default:"30s"`

	// JournalPath enables the SQLite observation journal when non-empty.
	JournalPath string `envconfig:"JOURNAL_PATH" default:""`

	// PrettySnapshot controls snapshot indentation. The file doubles as a
	// debugging aid, so it defaults to human-readable.
	PrettySnapshot bool `envconfig:"PRETTY_SNAPSHOT" default:"true"`
}

// ResolveDefaults derives DataDir and SnapshotPath when unset.
func (c *Config) ResolveDefaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine user home: %w", err)
		}
		c.DataDir = filepath.Join(home, ".spacemolt")
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = filepath.Join(c.DataDir, "galaxy.json")
	}
	if c.SaveDebounce <= 0 {
		return fmt.Errorf("SAVE_DEBOUNCE must be positive, got %s", c.SaveDebounce)
	}
	if c.SaveMaxAttempts <= 0 {
		return fmt.Errorf("SAVE_MAX_ATTEMPTS must be positive, got %d", c.SaveMaxAttempts)
	}
	return nil
}

// New creates a Config by parsing SPACEMOLT_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("SPACEMOLT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
