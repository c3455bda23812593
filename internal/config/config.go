// Package config holds runtime configuration backed by viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Precedence: project .trackd/config.yaml > ~/.config/trackd/config.yaml
	configFileSet := false

	// Walk up from CWD to find a project .trackd/config.yaml, so commands
	// work from subdirectories.
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".trackd", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "trackd", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file.
	// E.g. TRACKD_ADDR, TRACKD_DB, TRACKD_PAGE_SIZE, TRACKD_LOG_JSON.
	v.SetEnvPrefix("TRACKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("dir", ".trackd")
	v.SetDefault("db", "")
	v.SetDefault("backend", "")
	v.SetDefault("page-size", 10)
	v.SetDefault("sessions-file", "")
	v.SetDefault("log-json", false)
	v.SetDefault("lock-timeout", "30s")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

func ensure() *viper.Viper {
	if v == nil {
		_ = Initialize()
	}
	return v
}

// GetString returns a string config value.
func GetString(key string) string {
	return ensure().GetString(key)
}

// GetInt returns an integer config value.
func GetInt(key string) int {
	return ensure().GetInt(key)
}

// GetBool returns a boolean config value.
func GetBool(key string) bool {
	return ensure().GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return ensure().GetDuration(key)
}

// Set overrides a config value (flag binding, tests).
func Set(key string, value interface{}) {
	ensure().Set(key, value)
}
