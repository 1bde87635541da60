// Package config defines the configuration schema for toolforge.
//
// JSON keys use camelCase. Environment variables override file values so the
// server can be toggled without editing the file (MCP_MODE=true).
package config

import (
	"github.com/toolforge/toolforge/internal/config/server"
	"github.com/toolforge/toolforge/internal/config/tool"
)

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

func defaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}

// Config is the root configuration object, loaded from ~/.toolforge/config.json.
type Config struct {
	Server server.ServerConfig `json:"server"`
	Tools  tool.ToolsConfig    `json:"tools"`
	Log    LogConfig           `json:"log"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Server: server.DefaultServerConfig(),
		Tools:  tool.DefaultToolConfigs(),
		Log:    defaultLogConfig(),
	}
}
