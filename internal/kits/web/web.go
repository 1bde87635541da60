// Package web provides search, extraction, crawling and site mapping tools
// backed by the Tavily API. Page extraction falls back to a local
// readability pass when no API key is configured. Remote failures come back
// as {"error": …} payloads rather than tool failures.
package web

import (
	"context"
	"log/slog"
	"time"

	toolcfg "github.com/toolforge/toolforge/internal/config/tool"
	"github.com/toolforge/toolforge/internal/schema"
	"github.com/toolforge/toolforge/internal/tools"
)

// Hard limits so a model cannot ask for an unbounded crawl.
const (
	crawlMaxDepth = 5
	mapMaxBreadth = 5
	mapMaxDepth   = 3
)

// Kit bundles the Tavily client and the local fallback fetcher.
type Kit struct {
	tavily  *TavilyClient
	fetcher *Fetcher
}

// New builds a Kit from cfg.
func New(cfg toolcfg.WebConfig) *Kit {
	timeout := time.Duration(cfg.Timeout) * time.Second
	return &Kit{
		tavily:  NewTavilyClient(cfg.TavilyAPIKey, cfg.BaseURL, timeout),
		fetcher: NewFetcher(timeout),
	}
}

// Register adds the kit's tools to r.
func Register(r schema.ToolRegistrar, cfg toolcfg.WebConfig) {
	k := New(cfg)
	if !k.tavily.HasKey() {
		slog.Info("web kit: no Tavily key, extract_page_content uses local fetch")
	}
	k.Register(r)
}

// Register adds the kit's tools to r.
func (k *Kit) Register(r schema.ToolRegistrar) {
	r.Add(tools.NewFuncTool("extract_page_content", "Extract the main content of a single web page.", k.extractPage))
	r.Add(tools.NewFuncTool("web_search", "Search the web and return ranked results.", k.search))
	r.Add(tools.NewFuncTool("web_crawl", "Crawl multiple pages starting from a single URL.", k.crawl))
	r.Add(tools.NewFuncTool("web_map", "Generate structured summaries + relationships across many URLs.", k.siteMap))
}

type urlArgs struct {
	URL string `json:"url"`
}

type queryArgs struct {
	Query string `json:"query"`
}

func failed(op string, err error) map[string]any {
	return map[string]any{"error": "Tavily " + op + " failed: " + err.Error()}
}

func (k *Kit) extractPage(ctx context.Context, in urlArgs) (any, error) {
	if !k.tavily.HasKey() {
		page, err := k.fetcher.Fetch(ctx, in.URL)
		if err != nil {
			return map[string]any{"error": "Page fetch failed: " + err.Error()}, nil
		}
		return map[string]any{
			"results":        []Page{page},
			"failed_results": []any{},
			"extractor":      "readability",
		}, nil
	}

	out, err := k.tavily.Extract(ctx, in.URL)
	if err != nil {
		return failed("extract", err), nil
	}
	return out, nil
}

func (k *Kit) search(ctx context.Context, in queryArgs) (any, error) {
	out, err := k.tavily.Search(ctx, in.Query)
	if err != nil {
		return failed("search", err), nil
	}
	return out, nil
}

func (k *Kit) crawl(ctx context.Context, in urlArgs) (any, error) {
	out, err := k.tavily.Crawl(ctx, in.URL, crawlMaxDepth)
	if err != nil {
		return failed("crawl", err), nil
	}
	return out, nil
}

func (k *Kit) siteMap(ctx context.Context, in urlArgs) (any, error) {
	out, err := k.tavily.Map(ctx, in.URL, mapMaxBreadth, mapMaxDepth)
	if err != nil {
		return failed("map", err), nil
	}
	return out, nil
}
