// Package server hosts the HTTP surfaces: the simple function-calling
// transport, the health probe and, when MCP mode is on, the JSON-RPC routes.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/toolforge/toolforge/internal/tools"
)

const maxRunToolBody = 4 << 20

// runToolRequest is the body of POST /run_tool.
type runToolRequest struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// SimpleHandler serves GET /list_tools and POST /run_tool. Tool failures and
// malformed bodies are reported as {"error": …} with status 200.
type SimpleHandler struct {
	gateway *tools.Gateway
	mcpMode bool
}

// NewSimpleHandler returns a handler over g. mcpMode is only reported by
// the health probe.
func NewSimpleHandler(g *tools.Gateway, mcpMode bool) *SimpleHandler {
	return &SimpleHandler{gateway: g, mcpMode: mcpMode}
}

// Register mounts the routes on mux.
func (h *SimpleHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /list_tools", h.handleListTools)
	mux.HandleFunc("POST /run_tool", h.handleRunTool)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *SimpleHandler) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"tools": h.gateway.Registry().Definitions()})
}

func (h *SimpleHandler) handleRunTool(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRunToolBody))
	if err != nil {
		writeJSON(w, map[string]any{"error": "invalid request body: " + err.Error()})
		return
	}
	var req runToolRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, map[string]any{"error": "invalid request body: " + err.Error()})
		return
	}

	out := h.gateway.Invoke(r.Context(), req.Tool, req.Arguments)
	if !out.OK() {
		writeJSON(w, map[string]any{"error": out.Failure.Text()})
		return
	}
	writeJSON(w, map[string]any{"result": out.Value})
}

func (h *SimpleHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"tools":   h.gateway.Registry().Len(),
		"mcpMode": h.mcpMode,
	})
}

// writeJSON always answers 200; an unencodable payload becomes an error body.
func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("server: encode response failed", "err", err)
		data, _ = json.Marshal(map[string]any{"error": "encode result: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}
