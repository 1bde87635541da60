package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"

	toolcfg "github.com/toolforge/toolforge/internal/config/tool"
	"github.com/toolforge/toolforge/internal/schema"
)

// RemotePrefix starts the local name of every mounted upstream tool.
const RemotePrefix = "mcp_"

var emptyInputSchema = json.RawMessage(`{"type":"object","properties":{},"required":[]}`)

// Manager owns the connections to all configured upstream MCP servers.
type Manager struct {
	servers map[string]toolcfg.MCPServerConfig
	info    ServerInfo

	mu      sync.Mutex
	clients []*client
	once    sync.Once
}

// NewManager returns a Manager for the given servers. info is sent as
// clientInfo during the handshake.
func NewManager(servers map[string]toolcfg.MCPServerConfig, info ServerInfo) *Manager {
	return &Manager{servers: servers, info: info}
}

// ConnectOnce connects to every configured server in name order and adds
// each discovered tool to ts as mcp_<server>_<tool>. Connection happens at
// most once; failed servers are logged and skipped.
func (m *Manager) ConnectOnce(ctx context.Context, ts schema.ToolRegistrar) {
	m.once.Do(func() {
		for _, name := range slices.Sorted(maps.Keys(m.servers)) {
			c := newClient(name, m.servers[name], m.info)
			if err := c.connect(ctx); err != nil {
				slog.Error("MCP server connect failed", "server", name, "err", err)
				continue
			}

			remote, err := c.listTools(ctx)
			if err != nil {
				slog.Error("MCP server tools/list failed", "server", name, "err", err)
				c.close()
				continue
			}

			for _, rt := range remote {
				if rt.Name == "" {
					continue
				}
				params := rt.InputSchema
				if len(params) == 0 || string(params) == "null" {
					params = emptyInputSchema
				}
				w := &toolWrapper{
					client:      c,
					name:        RemotePrefix + name + "_" + rt.Name,
					origName:    rt.Name,
					description: rt.Description,
					parameters:  params,
				}
				ts.Add(w)
				slog.Debug("MCP tool registered", "server", name, "tool", w.name)
			}
			slog.Info("MCP server connected", "server", name, "tools", len(remote))

			m.mu.Lock()
			m.clients = append(m.clients, c)
			m.mu.Unlock()
		}
	})
}

// Close stops every subprocess owned by this manager.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		c.close()
	}
	m.clients = nil
}
