// Package dependency wires core toolforge services using go.uber.org/dig.
package dependency

import (
	"context"
	"fmt"
	"net"
	"strconv"

	robfigcron "github.com/robfig/cron/v3"
	"go.uber.org/dig"

	"github.com/toolforge/toolforge/internal/config"
	"github.com/toolforge/toolforge/internal/heartbeat"
	"github.com/toolforge/toolforge/internal/kits"
	"github.com/toolforge/toolforge/internal/mcp"
	"github.com/toolforge/toolforge/internal/server"
	"github.com/toolforge/toolforge/internal/tools"
)

// ServerName is reported in initialize results and upstream handshakes.
const ServerName = "toolforge"

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg        *config.Config
	gateway    *tools.Gateway
	dispatcher *mcp.Dispatcher
	stdio      *mcp.StdioServer
	httpServer *server.Server
	upstream   *mcp.Manager
	closers    kits.Closers
}

func (c *Container) Config() *config.Config        { return c.cfg }
func (c *Container) Gateway() *tools.Gateway       { return c.gateway }
func (c *Container) Registry() *tools.Registry     { return c.gateway.Registry() }
func (c *Container) Dispatcher() *mcp.Dispatcher   { return c.dispatcher }
func (c *Container) StdioServer() *mcp.StdioServer { return c.stdio }
func (c *Container) HTTPServer() *server.Server    { return c.httpServer }

// Close releases kit resources and stops upstream subprocesses.
func (c *Container) Close() error {
	c.upstream.Close()
	return c.closers.Close()
}

// Version is a named string so dig can tell it apart from other strings.
type Version string

// New runs tool discovery and wires every transport from cfg. ctx bounds
// upstream connections and their subprocesses.
func New(ctx context.Context, cfg *config.Config, version Version) (*Container, error) {
	d := dig.New()

	provides := []any{
		func() context.Context { return ctx },
		func() *config.Config { return cfg },
		func() Version { return version },
		newServerInfo,
		newUpstreamManager,
		newRegistry,
		tools.NewGateway,
		mcp.NewDispatcher,
		mcp.NewStdioServer,
		newKeepaliveSchedule,
		newMCPHandler,
		newHTTPServer,
	}
	for _, p := range provides {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		g *tools.Gateway,
		disp *mcp.Dispatcher,
		stdio *mcp.StdioServer,
		srv *server.Server,
		upstream *mcp.Manager,
		closers kits.Closers,
	) {
		result = &Container{
			cfg:        cfg,
			gateway:    g,
			dispatcher: disp,
			stdio:      stdio,
			httpServer: srv,
			upstream:   upstream,
			closers:    closers,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newServerInfo(v Version) mcp.ServerInfo {
	return mcp.ServerInfo{Name: ServerName, Version: string(v)}
}

func newUpstreamManager(cfg *config.Config, info mcp.ServerInfo) *mcp.Manager {
	return mcp.NewManager(cfg.Tools.MCPServers, info)
}

// newRegistry is the discovery phase: builtin kits first, then upstream
// servers. The registry is immutable once this returns.
func newRegistry(ctx context.Context, cfg *config.Config, upstream *mcp.Manager) (*tools.Registry, kits.Closers, error) {
	b := tools.NewRegistryBuilder()
	closers, err := kits.Discover(ctx, kits.Builtin, cfg.Tools, b)
	if err != nil {
		return nil, nil, err
	}
	upstream.ConnectOnce(ctx, b)
	return b.Build(), closers, nil
}

func newKeepaliveSchedule(cfg *config.Config) (robfigcron.Schedule, error) {
	return heartbeat.ParseSchedule(cfg.Server.Keepalive)
}

// newMCPHandler returns nil when MCP mode is off so the routes are never mounted.
func newMCPHandler(cfg *config.Config, disp *mcp.Dispatcher, keepalive robfigcron.Schedule) *mcp.HTTPHandler {
	if !cfg.Server.MCPMode {
		return nil
	}
	return mcp.NewHTTPHandler(disp, keepalive)
}

func newHTTPServer(cfg *config.Config, g *tools.Gateway, h *mcp.HTTPHandler) (*server.Server, error) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	return server.New(addr, server.Routes(g, h)), nil
}
