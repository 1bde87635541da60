package tools

import (
	"encoding/json"
)

var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{},"required":[]}`)

// FunctionDefinition is one entry in the function-calling tool list used by
// chat-completion APIs.
type FunctionDefinition struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the inner object of a FunctionDefinition.
type FunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Descriptor is the MCP tools/list shape of a tool.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Definitions returns all tool definitions in function-calling format.
func (r *Registry) Definitions() []FunctionDefinition {
	list := make([]FunctionDefinition, 0, r.Len())
	for _, t := range r.List() {
		list = append(list, FunctionDefinition{
			Type: "function",
			Function: FunctionSpec{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  parametersOf(t.Parameters()),
			},
		})
	}
	return list
}

// Descriptors returns all tools as MCP descriptors.
func (r *Registry) Descriptors() []Descriptor {
	list := make([]Descriptor, 0, r.Len())
	for _, t := range r.List() {
		list = append(list, Descriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: parametersOf(t.Parameters()),
		})
	}
	return list
}

func parametersOf(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return emptyObjectSchema
	}
	return raw
}
