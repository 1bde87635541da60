package dependency

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toolforge/toolforge/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Tools.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	return &cfg
}

func TestNew_WiresEverything(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MCPMode = true

	c, err := New(context.Background(), cfg, "1.2.3")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if c.Registry().Len() == 0 {
		t.Fatal("expected kit tools to be registered")
	}
	if _, ok := c.Registry().Lookup("roll_dice"); !ok {
		t.Error("expected roll_dice")
	}
	if c.HTTPServer() == nil || c.StdioServer() == nil || c.Dispatcher() == nil {
		t.Error("expected every transport to be wired")
	}

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n")
	var out bytes.Buffer
	if err := c.StdioServer().Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	var resp struct {
		Result struct {
			ServerInfo struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.ServerInfo.Name != ServerName || resp.Result.ServerInfo.Version != "1.2.3" {
		t.Errorf("unexpected server info %+v", resp.Result.ServerInfo)
	}
}

func TestNew_KitSelection(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tools.Kits = []string{"web"}

	c, err := New(context.Background(), cfg, "dev")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if got := strings.Join(c.Registry().Names(), ","); got != "extract_page_content,web_search,web_crawl,web_map" {
		t.Errorf("unexpected tools %s", got)
	}
}

func TestNew_BadKeepalive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Keepalive = "every now and then"
	if _, err := New(context.Background(), cfg, "dev"); err == nil {
		t.Fatal("expected schedule error")
	}
}

func TestNew_KeepaliveThatNeverFires(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Keepalive = "0 0 30 2 *"
	_, err := New(context.Background(), cfg, "dev")
	if err == nil || !strings.Contains(err.Error(), "never fires") {
		t.Fatalf("expected never-fires error, got %v", err)
	}
}

func TestNew_BadPort(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 70000
	_, err := New(context.Background(), cfg, "dev")
	if err == nil || !strings.Contains(err.Error(), "invalid port") {
		t.Fatalf("expected invalid port error, got %v", err)
	}
}
