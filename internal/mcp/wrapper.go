package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/toolforge/toolforge/internal/schema"
)

// RemoteError is an upstream tool failure reported with isError.
type RemoteError struct {
	Server  string
	Tool    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Server, e.Tool, e.Message)
}

// Kind implements schema.KindError.
func (e *RemoteError) Kind() string { return "RemoteError" }

// toolWrapper exposes a single upstream tool as a schema.Tool.
type toolWrapper struct {
	client      *client
	name        string
	origName    string
	description string
	parameters  json.RawMessage
}

func (w *toolWrapper) Name() string                { return w.name }
func (w *toolWrapper) Description() string         { return w.description }
func (w *toolWrapper) Parameters() json.RawMessage { return w.parameters }

func (w *toolWrapper) Call(ctx context.Context, args map[string]any) (any, error) {
	return w.client.callTool(ctx, w.origName, args)
}

var (
	_ schema.Tool      = (*toolWrapper)(nil)
	_ schema.KindError = (*RemoteError)(nil)
)
