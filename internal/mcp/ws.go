package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/toolforge/toolforge/internal/heartbeat"
)

const pingWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket carries one JSON-RPC envelope per text message. Requests on
// a connection are answered in order; notifications get no reply.
func (h *HTTPHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("mcp: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	slog.Debug("mcp: websocket connected", "conn", connID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// WriteControl may run concurrently with the writer below.
	beat := heartbeat.NewService(h.keepalive, func(context.Context) error {
		return conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(pingWriteWait))
	})
	go func() {
		if err := beat.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Debug("mcp: websocket ping failed", "conn", connID, "err", err)
			_ = conn.Close()
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("mcp: websocket read ended", "conn", connID, "err", err)
			}
			return
		}
		msg = bytes.TrimSpace(msg)
		if len(msg) == 0 {
			continue
		}

		var resp *Response
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			resp = ParseErrorResponse()
		} else {
			resp = h.dispatcher.Handle(ctx, &req)
		}
		if resp == nil {
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			slog.Debug("mcp: websocket write failed", "conn", connID, "err", err)
			return
		}
	}
}
