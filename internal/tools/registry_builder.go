package tools

import "github.com/toolforge/toolforge/internal/schema"

// RegistryBuilder accumulates tools during the discovery phase.
// Call Build() to produce an immutable Registry ready for serving.
type RegistryBuilder struct {
	order []string
	tools map[string]schema.Tool
}

// NewRegistryBuilder returns a fresh RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{tools: make(map[string]schema.Tool)}
}

// WithTool adds a tool and returns the builder, enabling chaining.
// Registering a name twice replaces the earlier tool but keeps its position.
func (b *RegistryBuilder) WithTool(tool schema.Tool) *RegistryBuilder {
	if _, exists := b.tools[tool.Name()]; !exists {
		b.order = append(b.order, tool.Name())
	}
	b.tools[tool.Name()] = tool

	return b
}

// Add implements schema.ToolRegistrar.
func (b *RegistryBuilder) Add(tool schema.Tool) { b.WithTool(tool) }

// Build produces an immutable Registry from the accumulated tools.
func (b *RegistryBuilder) Build() *Registry {
	tools := make(map[string]schema.Tool, len(b.tools))
	for k, v := range b.tools {
		tools[k] = v
	}
	return &Registry{order: append([]string(nil), b.order...), tools: tools}
}
