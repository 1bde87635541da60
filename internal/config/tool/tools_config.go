package tool

// ToolsConfig groups all tool-level settings.
type ToolsConfig struct {
	// Kits lists the kits to register; empty means every known kit.
	Kits       []string                   `json:"kits"`
	SQLite     SQLiteConfig               `json:"sqlite"`
	Web        WebConfig                  `json:"web"`
	Dnd        DndConfig                  `json:"dnd"`
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
}

func DefaultToolConfigs() ToolsConfig {
	return ToolsConfig{
		Kits:       []string{},
		SQLite:     DefaultSQLiteConfig(),
		Web:        DefaultWebConfig(),
		MCPServers: map[string]MCPServerConfig{},
	}
}

// KitEnabled reports whether the named kit should be registered.
func (c ToolsConfig) KitEnabled(name string) bool {
	if len(c.Kits) == 0 {
		return true
	}
	for _, k := range c.Kits {
		if k == name {
			return true
		}
	}
	return false
}
