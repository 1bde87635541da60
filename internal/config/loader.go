package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables that override file values.
const (
	EnvMCPMode    = "MCP_MODE"
	EnvTavilyKey  = "TAVILY_API_KEY"
	EnvSQLitePath = "TOOLFORGE_SQLITE_PATH"
)

// ConfigPath returns the default configuration file path: ~/.toolforge/config.json.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// DataDir returns the toolforge data directory: ~/.toolforge.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".toolforge"
	}
	return filepath.Join(home, ".toolforge")
}

// Load reads and parses the config file at path, then applies environment
// overrides. If path is empty, ConfigPath() is used. A missing file yields
// DefaultConfig(); a malformed one logs a warning and falls back to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			slog.Warn("failed to parse config, using defaults", "path", path, "err", err)
			cfg = DefaultConfig()
		}
	}

	ApplyEnv(&cfg, os.Getenv)
	return &cfg, nil
}

// ApplyEnv overrides cfg with values from getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvMCPMode); v != "" {
		cfg.Server.MCPMode = ParseBool(v)
	}
	if v := getenv(EnvTavilyKey); v != "" {
		cfg.Tools.Web.TavilyAPIKey = v
	}
	if v := getenv(EnvSQLitePath); v != "" {
		cfg.Tools.SQLite.Path = v
	}
}

// ParseBool accepts 1, true and yes (case-insensitive) as true.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Save writes cfg to path as indented JSON.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
