// Package config loads optional file-based defaults for the CLI.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/prospectval/config.toml
// unless an explicit path is given. Values from the file are defaults only;
// environment variables and command-line flags are applied on top by the
// commands layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/leadvet/prospectval/internal/fetch"
)

// Config mirrors the layout of the TOML file. Zero values mean "not set".
type Config struct {
	Log    LogConfig    `toml:"log"`
	Fetch  FetchConfig  `toml:"fetch"`
	Batch  BatchConfig  `toml:"batch"`
	Store  StoreConfig  `toml:"store"`
	Serve  ServeConfig  `toml:"serve"`
	Deploy DeployConfig `toml:"deploy"`
}

// LogConfig selects the logger's verbosity and output encoding.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// FetchConfig tunes the shared HTTP fetcher. Timeouts are in seconds.
type FetchConfig struct {
	TimeoutSeconds          int    `toml:"timeout_seconds"`
	SecondaryTimeoutSeconds int    `toml:"secondary_timeout_seconds"`
	ProbeTimeoutSeconds     int    `toml:"probe_timeout_seconds"`
	MaxRedirects            int    `toml:"max_redirects"`
	UserAgent               string `toml:"user_agent"`
}

// BatchConfig sets worker-pool defaults for batch runs.
type BatchConfig struct {
	Workers int     `toml:"workers"`
	Rate    float64 `toml:"rate"`
}

// StoreConfig selects a default persistence backend.
type StoreConfig struct {
	File           string `toml:"file"`
	SQLite         string `toml:"sqlite"`
	DynamoTable    string `toml:"dynamo_table"`
	DynamoEndpoint string `toml:"dynamo_endpoint"`
}

// ServeConfig sets defaults for the HTTP API server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DeployConfig sets defaults for talking to an n8n instance.
type DeployConfig struct {
	Host     string `toml:"host"`
	APIKey   string `toml:"api_key"`
	Registry string `toml:"registry"`
}

// DefaultPath returns the conventional config file location for the
// current user.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "prospectval", "config.toml"), nil
}

// Load reads and parses the TOML file at path. The file must exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault loads the config file from DefaultPath. A missing file is not
// an error; it yields an empty Config.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return &Config{}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// ApplyFetch overlays the file's fetch settings onto base, leaving fields
// the file does not set untouched.
func (c FetchConfig) ApplyFetch(base fetch.Config) fetch.Config {
	if c.TimeoutSeconds > 0 {
		base.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	if c.SecondaryTimeoutSeconds > 0 {
		base.SecondaryTimeout = time.Duration(c.SecondaryTimeoutSeconds) * time.Second
	}
	if c.ProbeTimeoutSeconds > 0 {
		base.ProbeTimeout = time.Duration(c.ProbeTimeoutSeconds) * time.Second
	}
	if c.MaxRedirects > 0 {
		base.MaxRedirects = c.MaxRedirects
	}
	if c.UserAgent != "" {
		base.UserAgent = c.UserAgent
	}
	return base
}
