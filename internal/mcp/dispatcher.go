// Package mcp implements the JSON-RPC 2.0 tool protocol over stdio, HTTP
// (plain JSON or server-sent events) and WebSocket, all backed by one shared
// Dispatcher. It also contains the client used to mount tools from upstream
// MCP servers.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/toolforge/toolforge/internal/schema"
	"github.com/toolforge/toolforge/internal/tools"
)

// LatestProtocolVersion is returned when the client asks for nothing we know.
const LatestProtocolVersion = "2025-03-26"

var supportedProtocolVersions = map[string]bool{
	"2025-03-26": true,
	"2024-11-05": true,
}

// methodHandler handles one JSON-RPC method.
type methodHandler func(d *Dispatcher, ctx context.Context, req *Request) *Response

// methodHandlers maps method names to their handlers.
var methodHandlers = map[string]methodHandler{
	"initialize": (*Dispatcher).handleInitialize,
	"tools/list": (*Dispatcher).handleToolsList,
	"tools/call": (*Dispatcher).handleToolsCall,
	"ping":       (*Dispatcher).handlePing,
}

// Dispatcher routes JSON-RPC requests to the tool gateway. It is safe for
// concurrent use: the only shared state is the read-only registry.
type Dispatcher struct {
	gateway *tools.Gateway
	info    ServerInfo
}

// NewDispatcher returns a Dispatcher serving the tools behind g.
func NewDispatcher(g *tools.Gateway, info ServerInfo) *Dispatcher {
	return &Dispatcher{gateway: g, info: info}
}

// Handle processes one request. It returns nil for notifications and
// exactly one response otherwise; a panic becomes an internal error.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) (resp *Response) {
	if req.IsNotification() {
		slog.Debug("notification received", "method", req.Method)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatch panicked", "method", req.Method, "panic", r, "stack", string(debug.Stack()))
			resp = errorResponse(req.ID, CodeInternalError, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	handler, ok := methodHandlers[req.Method]
	if !ok {
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found: "+req.Method)
	}
	return handler(d, ctx, req)
}

func (d *Dispatcher) handleInitialize(_ context.Context, req *Request) *Response {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	// Initialize takes no required input; unreadable params fall back to defaults.
	_ = json.Unmarshal(req.Params, &params)

	version := LatestProtocolVersion
	if supportedProtocolVersions[params.ProtocolVersion] {
		version = params.ProtocolVersion
	}
	return resultResponse(req.ID, InitializeResult{
		ProtocolVersion: version,
		Capabilities:    Capabilities{Tools: ToolsCapability{ListChanged: false}},
		ServerInfo:      d.info,
	})
}

func (d *Dispatcher) handlePing(_ context.Context, req *Request) *Response {
	return resultResponse(req.ID, struct{}{})
}

func (d *Dispatcher) handleToolsList(_ context.Context, req *Request) *Response {
	return resultResponse(req.ID, map[string]any{"tools": d.gateway.Registry().Descriptors()})
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params CallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params: missing tool name")
	}

	out := d.gateway.Invoke(ctx, params.Name, params.Arguments)
	if !out.OK() {
		if out.Failure.Kind == schema.KindNotFound {
			return errorResponse(req.ID, CodeMethodNotFound, out.Failure.Message)
		}
		return resultResponse(req.ID, TextResult(out.Failure.Text(), true))
	}

	text, err := RenderText(out.Value)
	if err != nil {
		return resultResponse(req.ID, TextResult("MarshalError: "+err.Error(), true))
	}
	return resultResponse(req.ID, TextResult(text, false))
}

// RenderText returns strings verbatim and JSON-encodes everything else.
func RenderText(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
