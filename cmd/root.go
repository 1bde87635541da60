// Package cmd implements the toolforge CLI using cobra.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolforge/toolforge/internal/config"
	"github.com/toolforge/toolforge/internal/dependency"
	"github.com/toolforge/toolforge/internal/observability"
)

const version = "0.1.0"
const logo = "🛠"

var (
	configPath string
	verbose    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "toolforge",
	Short: logo + " toolforge - tool registry and MCP server",
	Long: logo + " toolforge - register tools once, serve them over a function-calling HTTP API,\n" +
		"MCP stdio, and MCP streamable HTTP.",
	SilenceUsage: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.toolforge/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stdioCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(statusCmd)
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

// loadConfig reads the config file and sets up logging. Logs always go to
// stderr so stdout stays free for protocol output.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	observability.Setup(level, cfg.Log.Format)
	return cfg, nil
}

// buildContainer runs discovery and wires the transports.
func buildContainer(ctx context.Context, cfg *config.Config) (*dependency.Container, error) {
	c, err := dependency.New(ctx, cfg, version)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	return c, nil
}
