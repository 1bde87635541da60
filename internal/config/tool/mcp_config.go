package tool

// MCPServerConfig describes one upstream MCP server whose tools are mounted
// into the local catalogue (stdio subprocess or HTTP endpoint).
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}
