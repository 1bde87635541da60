package tools

import (
	"github.com/toolforge/toolforge/internal/schema"
)

// Registry holds the immutable tool catalogue shared by every transport.
// It is built once during discovery and only read afterwards, so lookups
// need no locking.
type Registry struct {
	order []string
	tools map[string]schema.Tool
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (schema.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns every tool in registration order.
func (r *Registry) List() []schema.Tool {
	list := make([]schema.Tool, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tools[name])
	}
	return list
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.order) }
