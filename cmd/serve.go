package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveHost string
	servePort int
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (/list_tools, /run_tool and, in MCP mode, /mcp)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Expose the MCP streamable HTTP routes on /mcp")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("mcp") {
		cfg.Server.MCPMode = serveMCP
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := buildContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	fmt.Printf("%s Starting toolforge on %s:%d...\n", logo, cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("✓ %d tools registered\n", container.Registry().Len())
	if cfg.Server.MCPMode {
		fmt.Println("✓ MCP mode: POST/GET /mcp enabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return container.HTTPServer().Run(gctx) })

	fmt.Printf("%s Server running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
