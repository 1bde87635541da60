package cmd

import (
	"context"
	"errors"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/toolforge/toolforge/internal/mcp"
	"github.com/toolforge/toolforge/internal/shared/stringutils"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tools",
	RunE:  runTools,
}

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Invoke a tool directly and print its result",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCall,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print function-calling definitions as JSON")
}

func runTools(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	container, err := buildContainer(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	reg := container.Registry()
	if toolsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"tools": reg.Definitions()})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARAMETERS\tDESCRIPTION")
	for _, d := range reg.Descriptors() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, paramSummary(d.InputSchema), stringutils.Truncate(stringutils.FirstLine(d.Description), 80))
	}
	return w.Flush()
}

// paramSummary renders "a, b?" with optional parameters marked.
func paramSummary(raw json.RawMessage) string {
	var s struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "?"
	}
	required := make(map[string]bool, len(s.Required))
	parts := make([]string, 0, len(s.Properties))
	for _, r := range s.Required {
		required[r] = true
		parts = append(parts, r)
	}
	optional := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !required[name] {
			optional = append(optional, name+"?")
		}
	}
	sort.Strings(optional)
	parts = append(parts, optional...)
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func runCall(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	container, err := buildContainer(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	arguments := map[string]any{}
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &arguments); err != nil {
			return fmt.Errorf("arguments must be a JSON object: %w", err)
		}
	}

	out := container.Gateway().Invoke(context.Background(), args[0], arguments)
	if !out.OK() {
		return errors.New(out.Failure.Text())
	}
	text, err := mcp.RenderText(out.Value)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(text)
	return nil
}
