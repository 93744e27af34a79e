package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 8080
engine:
  short_window: 10
  long_window: 30
redis:
  addr: localhost:6379
quotes:
  api_key: key
  websocket_url: wss://example.com
  assets: ["BTC-USD"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("unexpected environment %s", cfg.Environment)
	}
	if cfg.Engine.RSIWindow != 14 || cfg.Engine.SupportResistanceWindow != 20 {
		t.Fatalf("engine windows not defaulted: %+v", cfg.Engine)
	}
	if cfg.Engine.MinConfirmations != 2 || cfg.Engine.HistoryDepth != 100 {
		t.Fatalf("engine defaults missing: %+v", cfg.Engine)
	}
	if cfg.Engine.Interval != 5*time.Minute {
		t.Fatalf("interval not defaulted: %v", cfg.Engine.Interval)
	}
}

func TestLoadMissingAssets(t *testing.T) {
	body := `
environment: test
redis:
  addr: localhost:6379
quotes:
  api_key: key
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for missing assets")
	}
}

func TestLoadWindowOrdering(t *testing.T) {
	body := validYAML + `
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.ShortWindow >= cfg.Engine.LongWindow {
		t.Fatalf("short window must stay below long window")
	}

	bad := `
environment: test
engine:
  short_window: 30
  long_window: 10
redis:
  addr: localhost:6379
quotes:
  api_key: key
  assets: ["BTC-USD"]
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected error for inverted windows")
	}
}

func TestLoadHistoryDepthCoversLongWindow(t *testing.T) {
	bad := `
environment: test
engine:
  short_window: 10
  long_window: 30
  history_depth: 20
redis:
  addr: localhost:6379
quotes:
  api_key: key
  assets: ["BTC-USD"]
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected error when history_depth is below long_window")
	}
}

func TestLoadCacheBackend(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.Backend != "memory" {
		t.Fatalf("cache backend not defaulted: %s", cfg.Cache.Backend)
	}

	cfg, err = Load(writeConfig(t, validYAML + `
cache:
  backend: redis
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.Backend != "redis" {
		t.Fatalf("redis backend not accepted: %s", cfg.Cache.Backend)
	}

	if _, err := Load(writeConfig(t, validYAML + `
cache:
  backend: memcached
`)); err == nil {
		t.Fatalf("expected error for unknown cache backend")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("QUOTES_API_KEY", "env-key")
	t.Setenv("ASSETS", "BTC-USD,ETH-USD")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Quotes.APIKey != "env-key" {
		t.Fatalf("api key not overridden: %s", cfg.Quotes.APIKey)
	}
	if len(cfg.Quotes.Assets) != 2 || cfg.Quotes.Assets[1] != "ETH-USD" {
		t.Fatalf("assets not overridden: %v", cfg.Quotes.Assets)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("redis addr not overridden: %s", cfg.Redis.Addr)
	}
}
