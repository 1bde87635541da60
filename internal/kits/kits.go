// Package kits runs the tool discovery phase: every known kit is asked to
// register its tools before any transport starts serving.
package kits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	toolcfg "github.com/toolforge/toolforge/internal/config/tool"
	"github.com/toolforge/toolforge/internal/kits/dnd"
	"github.com/toolforge/toolforge/internal/kits/sqlite"
	"github.com/toolforge/toolforge/internal/kits/web"
	"github.com/toolforge/toolforge/internal/schema"
)

// RegisterFunc is a kit entry point. A returned Closer is released at shutdown.
type RegisterFunc func(ctx context.Context, cfg toolcfg.ToolsConfig, r schema.ToolRegistrar) (io.Closer, error)

// Kit names one entry point.
type Kit struct {
	Name     string
	Register RegisterFunc
}

// Builtin lists the kits compiled into the binary, in registration order.
var Builtin = []Kit{
	{Name: "dnd", Register: func(_ context.Context, cfg toolcfg.ToolsConfig, r schema.ToolRegistrar) (io.Closer, error) {
		return nil, dnd.Register(r, cfg.Dnd)
	}},
	{Name: "sqlite", Register: func(_ context.Context, cfg toolcfg.ToolsConfig, r schema.ToolRegistrar) (io.Closer, error) {
		return sqlite.Register(r, cfg.SQLite)
	}},
	{Name: "web", Register: func(_ context.Context, cfg toolcfg.ToolsConfig, r schema.ToolRegistrar) (io.Closer, error) {
		web.Register(r, cfg.Web)
		return nil, nil
	}},
}

// Names returns the names of the builtin kits.
func Names() []string {
	out := make([]string, len(Builtin))
	for i, k := range Builtin {
		out[i] = k.Name
	}
	return out
}

// Closers releases kit resources in reverse registration order.
type Closers []io.Closer

// Close closes every resource and joins their errors.
func (c Closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discover registers every enabled kit from available into r. A failing kit
// aborts discovery; resources opened so far are released.
func Discover(ctx context.Context, available []Kit, cfg toolcfg.ToolsConfig, r schema.ToolRegistrar) (Closers, error) {
	known := make(map[string]bool, len(available))
	for _, k := range available {
		known[k.Name] = true
	}
	for _, name := range cfg.Kits {
		if !known[name] {
			slog.Warn("unknown kit in config", "kit", name)
		}
	}

	var closers Closers
	for _, k := range available {
		if !cfg.KitEnabled(k.Name) {
			slog.Debug("kit disabled", "kit", k.Name)
			continue
		}
		c, err := k.Register(ctx, cfg, r)
		if err != nil {
			_ = closers.Close()
			return nil, fmt.Errorf("register kit %s: %w", k.Name, err)
		}
		if c != nil {
			closers = append(closers, c)
		}
		slog.Debug("kit registered", "kit", k.Name)
	}
	return closers, nil
}
