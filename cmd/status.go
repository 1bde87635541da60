package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/toolforge/toolforge/internal/config"
	"github.com/toolforge/toolforge/internal/kits"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show toolforge status",
	RunE:  runStatus,
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s toolforge Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	fmt.Printf("Config:    %s %s\n", cfgPath, mark(statErr == nil))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Listen:    %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("MCP mode:  %s\n", mark(cfg.Server.MCPMode))
	fmt.Printf("Keepalive: %s\n\n", cfg.Server.Keepalive)

	fmt.Println("Kits:")
	for _, name := range kits.Names() {
		fmt.Printf("  %-10s %s\n", name, mark(cfg.Tools.KitEnabled(name)))
	}

	_, dbErr := os.Stat(cfg.Tools.SQLite.Path)
	fmt.Printf("\nSQLite:    %s %s\n", cfg.Tools.SQLite.Path, mark(dbErr == nil))
	if cfg.Tools.Web.TavilyAPIKey != "" {
		fmt.Println("Tavily:    ✓")
	} else {
		fmt.Println("Tavily:    (not set, local extraction only)")
	}

	if len(cfg.Tools.MCPServers) > 0 {
		names := make([]string, 0, len(cfg.Tools.MCPServers))
		for name := range cfg.Tools.MCPServers {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("\nUpstream MCP servers:")
		for _, name := range names {
			s := cfg.Tools.MCPServers[name]
			target := s.URL
			if s.Command != "" {
				target = s.Command
			}
			fmt.Printf("  %-20s %s\n", name, target)
		}
	}
	return nil
}
