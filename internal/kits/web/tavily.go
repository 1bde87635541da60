package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoAPIKey is returned by Tavily calls when no key is configured.
var ErrNoAPIKey = errors.New("TAVILY_API_KEY is not configured")

const maxResponseBytes = 8 << 20

// TavilyClient is a minimal client for the Tavily REST API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClient returns a client for baseURL authenticated with apiKey.
func NewTavilyClient(apiKey, baseURL string, timeout time.Duration) *TavilyClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// HasKey reports whether an API key is configured.
func (c *TavilyClient) HasKey() bool { return c.apiKey != "" }

// Search runs a web search.
func (c *TavilyClient) Search(ctx context.Context, query string) (map[string]any, error) {
	return c.post(ctx, "/search", map[string]any{"query": query})
}

// Extract returns the content of a single page.
func (c *TavilyClient) Extract(ctx context.Context, url string) (map[string]any, error) {
	return c.post(ctx, "/extract", map[string]any{"urls": []string{url}})
}

// Crawl follows links from url up to maxDepth and extracts each page.
func (c *TavilyClient) Crawl(ctx context.Context, url string, maxDepth int) (map[string]any, error) {
	return c.post(ctx, "/crawl", map[string]any{"url": url, "max_depth": maxDepth})
}

// Map discovers the site structure reachable from url.
func (c *TavilyClient) Map(ctx context.Context, url string, maxBreadth, maxDepth int) (map[string]any, error) {
	return c.post(ctx, "/map", map[string]any{"url": url, "max_breadth": maxBreadth, "max_depth": maxDepth})
}

func (c *TavilyClient) post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	if !c.HasKey() {
		return nil, ErrNoAPIKey
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorDetail(raw))
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// errorDetail pulls the message out of a Tavily error body when it has one.
func errorDetail(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
		Error  any `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, v := range []any{body.Detail, body.Error} {
			switch d := v.(type) {
			case string:
				return d
			case map[string]any:
				if msg, ok := d["error"].(string); ok {
					return msg
				}
			}
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
