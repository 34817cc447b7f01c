package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Fetcher.RequestTimeout = 0 }},
		{"inverted delay", func(c *Config) { c.Fetcher.DelayMin = 5 * time.Second }},
		{"bad renderer", func(c *Config) { c.Browser.Renderer = "selenium" }},
		{"bad window", func(c *Config) { c.Browser.WindowSize = "1920x1080" }},
		{"zero results", func(c *Config) { c.Aggregator.MaxResults = 0 }},
		{"results above cap", func(c *Config) { c.Aggregator.MaxResults = MaxResultsLimit + 1 }},
		{"bad proxy scheme", func(c *Config) { c.Fetcher.Proxies = []string{"ftp://10.0.0.1:21"} }},
		{"proxy without host", func(c *Config) { c.Fetcher.Proxies = []string{"http://"} }},
		{"bad proxy rotation", func(c *Config) { c.Fetcher.ProxyRotation = "sticky" }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad metrics port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsResultsCapAndProxies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Aggregator.MaxResults = MaxResultsLimit
	cfg.Fetcher.Proxies = []string{"http://10.0.0.1:3128", "socks5://user:pw@10.0.0.2:1080"}
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBrowserDisabledSkipsRendererChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser.Enabled = false
	cfg.Browser.Renderer = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newscascade.yaml")
	data := []byte(`
fetcher:
  request_timeout: 5s
  delay_min: 0s
  delay_max: 0s
browser:
  renderer: chromedp
aggregator:
  max_results: 10
logging:
  format: tint
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Fetcher.RequestTimeout != 5*time.Second {
		t.Errorf("request_timeout = %s, want 5s", cfg.Fetcher.RequestTimeout)
	}
	if cfg.Browser.Renderer != "chromedp" {
		t.Errorf("renderer = %q, want chromedp", cfg.Browser.Renderer)
	}
	if cfg.Aggregator.MaxResults != 10 {
		t.Errorf("max_results = %d, want 10", cfg.Aggregator.MaxResults)
	}
	// untouched keys keep defaults
	if cfg.Feed.MaxEntries != 20 {
		t.Errorf("feed.max_entries = %d, want 20", cfg.Feed.MaxEntries)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestParseWindowSize(t *testing.T) {
	w, h, err := ParseWindowSize("1366, 768")
	if err != nil || w != 1366 || h != 768 {
		t.Errorf("got %d,%d,%v", w, h, err)
	}
	if _, _, err := ParseWindowSize("0,10"); err == nil {
		t.Error("expected error for zero width")
	}
}
