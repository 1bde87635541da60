// Package schema contains the core contracts shared across toolforge packages.
// Concrete implementations live in their respective packages.
package schema

import (
	"context"
	"encoding/json"
)

// Tool is the interface every invocable tool must satisfy.
// Local kit tools and tools mounted from upstream MCP servers both implement it.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	// Call runs the tool. The returned value must be JSON-serializable.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolRegistrar is the write side of a tool catalogue, used during discovery.
type ToolRegistrar interface {
	Add(t Tool)
}
