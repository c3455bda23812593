// Package configfile reads and writes the .trackd/metadata.json database
// descriptor.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ConfigFileName = "metadata.json"

// Backend constants
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Database string `json:"database"`
	Backend  string `json:"backend,omitempty"` // "sqlite" (default) or "memory"
	Version  string `json:"version,omitempty"` // trackd version that created the store
}

func DefaultConfig() *Config {
	return &Config{
		Database: "trackd.db",
		Backend:  BackendSQLite,
	}
}

func ConfigPath(trackdDir string) string {
	return filepath.Join(trackdDir, ConfigFileName)
}

// Load reads metadata.json from trackdDir. Returns (nil, nil) when the
// file does not exist.
func Load(trackdDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(trackdDir)) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Save(trackdDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(trackdDir), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// DatabasePath resolves the database location relative to trackdDir.
func (c *Config) DatabasePath(trackdDir string) string {
	db := strings.TrimSpace(c.Database)
	if db == "" {
		db = "trackd.db"
	}
	if filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(trackdDir, db)
}

// GetBackend returns the configured backend type, defaulting to SQLite.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}
