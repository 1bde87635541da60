package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	toolcfg "github.com/toolforge/toolforge/internal/config/tool"
)

const sessionHeader = "Mcp-Session-Id"

// client manages JSON-RPC communication with a single upstream MCP server
// (stdio subprocess or HTTP). Command wins over URL when both are set.
type client struct {
	name       string
	cfg        toolcfg.MCPServerConfig
	httpClient *http.Client
	clientInfo ServerInfo

	// Stdio fields (non-nil when command-based)
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu        sync.Mutex
	nextID    int64
	sessionID atomic.Value
}

func newClient(name string, cfg toolcfg.MCPServerConfig, info ServerInfo) *client {
	return &client{
		name:       name,
		cfg:        cfg,
		clientInfo: info,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// connect starts the subprocess when command-based, then runs the
// initialize handshake.
func (c *client) connect(ctx context.Context) error {
	switch {
	case c.cfg.Command != "":
		if err := c.startProcess(ctx); err != nil {
			return err
		}
	case c.cfg.URL != "":
	default:
		return fmt.Errorf("MCP server %q: no command or url configured", c.name)
	}

	if err := c.initialize(ctx); err != nil {
		c.close()
		return fmt.Errorf("initialize: %w", err)
	}
	return nil
}

func (c *client) startProcess(ctx context.Context) error {
	c.cmd = exec.CommandContext(ctx, c.cfg.Command, c.cfg.Args...)
	if len(c.cfg.Env) > 0 {
		c.cmd.Env = os.Environ()
		for k, v := range c.cfg.Env {
			c.cmd.Env = append(c.cmd.Env, k+"="+v)
		}
	}
	c.cmd.Stderr = os.Stderr

	stdinPipe, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdoutPipe, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	c.stdin = stdinPipe
	c.stdout = bufio.NewReader(stdoutPipe)

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("start MCP server: %w", err)
	}
	return nil
}

func (c *client) overHTTP() bool { return c.cfg.Command == "" }

func (c *client) close() {
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
}

// remoteTool is one entry of an upstream tools/list result.
type remoteTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// listTools returns the tools exposed by the upstream server.
func (c *client) listTools(ctx context.Context) ([]remoteTool, error) {
	resp, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Tools []remoteTool `json:"tools"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("decode tools/list: %w", err)
	}
	return result.Tools, nil
}

// callTool invokes a named tool upstream. A result flagged isError comes back
// as a *RemoteError carrying the joined text.
func (c *client) callTool(ctx context.Context, toolName string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	resp, err := c.call(ctx, "tools/call", CallParams{Name: toolName, Arguments: args})
	if err != nil {
		return "", err
	}

	var result ToolResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return string(resp), nil
	}

	var parts []string
	for _, block := range result.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	out := strings.Join(parts, "\n")
	if result.IsError {
		return "", &RemoteError{Server: c.name, Tool: toolName, Message: out}
	}
	if out == "" {
		out = "(no output)"
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// JSON-RPC plumbing
// ---------------------------------------------------------------------------

func (c *client) initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": LatestProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      c.clientInfo,
	}
	if _, err := c.call(ctx, "initialize", params); err != nil {
		return err
	}
	return c.notify(ctx, "notifications/initialized")
}

func (c *client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	data, err := encodeRequest(id, method, params)
	if err != nil {
		return nil, err
	}
	if c.overHTTP() {
		return c.callHTTP(ctx, data)
	}
	return c.callStdio(ctx, id, data)
}

func (c *client) notify(ctx context.Context, method string) error {
	data, err := json.Marshal(Request{JSONRPC: JSONRPCVersion, Method: method})
	if err != nil {
		return err
	}
	if c.overHTTP() {
		resp, err := c.post(ctx, data)
		if err != nil {
			return err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Body.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintf(c.stdin, "%s\n", data)
	return err
}

func encodeRequest(id int64, method string, params any) ([]byte, error) {
	req := Request{JSONRPC: JSONRPCVersion, ID: json.RawMessage(fmt.Sprint(id)), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = raw
	}
	return json.Marshal(req)
}

func (c *client) callStdio(ctx context.Context, id int64, data []byte) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.stdin, "%s\n", data); err != nil {
		return nil, fmt.Errorf("write to MCP stdin: %w", err)
	}

	// Read response lines until we get one with our id.
	want := fmt.Sprint(id)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := c.stdout.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read MCP stdout: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			continue // skip non-JSON lines (server log output)
		}
		if string(resp.ID) != want {
			continue
		}
		return resultOf(&resp)
	}
}

func (c *client) post(ctx context.Context, data []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, "+eventStreamType)
	if sid, _ := c.sessionID.Load().(string); sid != "" {
		httpReq.Header.Set(sessionHeader, sid)
	}
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if sid := resp.Header.Get(sessionHeader); sid != "" {
		c.sessionID.Store(sid)
	}
	return resp, nil
}

func (c *client) callHTTP(ctx context.Context, data []byte) (json.RawMessage, error) {
	resp, err := c.post(ctx, data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body []byte
	if strings.HasPrefix(resp.Header.Get("Content-Type"), eventStreamType) {
		body, err = firstEventData(resp.Body)
	} else {
		body, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	}
	if err != nil {
		return nil, fmt.Errorf("read MCP response: %w", err)
	}

	var rpcResp Response
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("decode MCP response (HTTP %d): %w", resp.StatusCode, err)
	}
	return resultOf(&rpcResp)
}

// firstEventData returns the data of the first SSE event in r, joining
// multi-line data fields with newlines.
func firstEventData(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxBodyBytes)

	var data [][]byte
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			if len(data) > 0 {
				break
			}
			continue
		}
		if payload, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			data = append(data, bytes.Clone(bytes.TrimPrefix(payload, []byte(" "))))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return bytes.Join(data, []byte("\n")), nil
}

func resultOf(resp *Response) (json.RawMessage, error) {
	if resp.Error != nil {
		return nil, fmt.Errorf("MCP error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return resp.Result, nil
}
