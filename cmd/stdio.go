package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve MCP JSON-RPC over stdin/stdout",
	Long: "Serve MCP JSON-RPC over stdin/stdout, one message per line.\n" +
		"Nothing but protocol frames is written to stdout; logs go to stderr.",
	RunE: runStdio,
}

func runStdio(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := buildContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	err = container.StdioServer().Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
