package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// StdioServer speaks newline-delimited JSON-RPC over a pair of streams.
// Standard output carries protocol frames only; logs go to stderr.
type StdioServer struct {
	dispatcher *Dispatcher
}

// NewStdioServer returns a StdioServer backed by d.
func NewStdioServer(d *Dispatcher) *StdioServer {
	return &StdioServer{dispatcher: d}
}

// Serve reads one request per line from in and writes one compact JSON
// response per line to out. It returns nil when in reaches EOF and ctx.Err()
// as soon as the context is cancelled, even while a read is blocked. A read
// blocked at that point is abandoned; it ends when in is closed.
func (s *StdioServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan readResult)
	go readLines(ctx, bufio.NewReader(in), lines)
	writer := bufio.NewWriter(out)

	for {
		var res readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res = <-lines:
		}

		if len(bytes.TrimSpace(res.line)) > 0 {
			if resp := s.handleLine(ctx, res.line); resp != nil {
				if err := writeLine(writer, resp); err != nil {
					return fmt.Errorf("write response: %w", err)
				}
			}
		}

		if res.err != nil {
			if errors.Is(res.err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read request: %w", res.err)
		}
	}
}

// readResult is one line read from the input, with the error that ended it.
type readResult struct {
	line []byte
	err  error
}

// readLines feeds lines until the input fails or ctx is done.
func readLines(ctx context.Context, r *bufio.Reader, lines chan<- readResult) {
	for {
		line, err := r.ReadBytes('\n')
		select {
		case lines <- readResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *StdioServer) handleLine(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		slog.Warn("stdio: malformed message", "err", err)
		return ParseErrorResponse()
	}
	return s.dispatcher.Handle(ctx, &req)
}

func writeLine(w *bufio.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
