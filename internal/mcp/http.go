package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	robfigcron "github.com/robfig/cron/v3"

	"github.com/toolforge/toolforge/internal/heartbeat"
)

// MaxBodyBytes caps the size of a POST /mcp request body.
const MaxBodyBytes = 4 << 20

const eventStreamType = "text/event-stream"

// HTTPHandler serves the streamable HTTP transport on /mcp and the WebSocket
// transport on /mcp/ws.
type HTTPHandler struct {
	dispatcher *Dispatcher
	keepalive  robfigcron.Schedule
}

// NewHTTPHandler returns a handler backed by d. keepalive drives the heartbeat
// comments on GET /mcp and the pings on /mcp/ws; nil means every 15 seconds.
func NewHTTPHandler(d *Dispatcher, keepalive robfigcron.Schedule) *HTTPHandler {
	return &HTTPHandler{dispatcher: d, keepalive: keepalive}
}

// Register mounts the MCP routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /mcp", h.handlePost)
	mux.HandleFunc("GET /mcp", h.handleStream)
	mux.HandleFunc("GET /mcp/ws", h.handleWebSocket)
}

func (h *HTTPHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("mcp: request body too large", "limit", tooLarge.Limit)
		}
		writeJSON(w, http.StatusBadRequest, ParseErrorResponse())
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ParseErrorResponse())
		return
	}

	resp := h.dispatcher.Handle(r.Context(), &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if acceptsEventStream(r) {
		writeEvent(w, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStream keeps a server-to-client channel open, emitting a heartbeat
// comment on every keepalive tick until the client goes away.
func (h *HTTPHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	streamID := uuid.NewString()
	setEventStreamHeaders(w)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": stream %s\n\n", streamID)
	flusher.Flush()

	slog.Debug("mcp: keepalive stream opened", "stream", streamID)
	defer slog.Debug("mcp: keepalive stream closed", "stream", streamID)

	beat := heartbeat.NewService(h.keepalive, func(context.Context) error {
		if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err := beat.Start(r.Context()); err != nil && !errors.Is(err, context.Canceled) {
		slog.Debug("mcp: keepalive stream ended", "stream", streamID, "err", err)
	}
}

func acceptsEventStream(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept") {
		for _, part := range strings.Split(v, ",") {
			mediaType, _, _ := strings.Cut(part, ";")
			if strings.EqualFold(strings.TrimSpace(mediaType), eventStreamType) {
				return true
			}
		}
	}
	return false
}

func setEventStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", eventStreamType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func writeEvent(w http.ResponseWriter, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse(resp.ID, CodeInternalError, "Internal error"))
		return
	}
	setEventStreamHeaders(w)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("mcp: write response failed", "err", err)
	}
}
