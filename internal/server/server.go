package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/toolforge/toolforge/internal/mcp"
	"github.com/toolforge/toolforge/internal/tools"
)

const shutdownTimeout = 5 * time.Second

// Routes assembles the HTTP surface. The MCP routes are mounted only when
// mcpHandler is non-nil; otherwise /mcp is simply not registered.
func Routes(g *tools.Gateway, mcpHandler *mcp.HTTPHandler) *http.ServeMux {
	mux := http.NewServeMux()
	NewSimpleHandler(g, mcpHandler != nil).Register(mux)
	if mcpHandler != nil {
		mcpHandler.Register(mux)
	}
	return mux
}

// Server runs an http.Server until its context is cancelled.
type Server struct {
	addr    string
	handler http.Handler
}

// New returns a Server listening on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{addr: addr, handler: handler}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. Open
// keepalive streams end because their request contexts are cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}
