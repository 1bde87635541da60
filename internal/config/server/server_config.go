package server

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// MCPMode exposes the streamable HTTP JSON-RPC routes on /mcp.
	MCPMode bool `json:"mcpMode"`
	// Keepalive is the cron schedule for heartbeat comments on GET /mcp.
	Keepalive string `json:"keepalive"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{Host: "127.0.0.1", Port: 8000, Keepalive: "@every 15s"}
}
