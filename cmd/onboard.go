package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolforge/toolforge/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		existing, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	fmt.Printf("\n%s toolforge is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Optional: add a Tavily key (tools.web.tavilyApiKey) to %s\n", cfgPath)
	fmt.Println("  2. List tools:  toolforge tools")
	fmt.Println("  3. Serve HTTP:  toolforge serve --mcp")
	fmt.Println("  4. MCP stdio:   toolforge stdio")
	return nil
}
