package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// MaxResultsLimit is the most records a category run may return.
const MaxResultsLimit = 25

// Config is the root configuration for newscascade.
type Config struct {
	Fetcher    FetcherConfig    `mapstructure:"fetcher"    yaml:"fetcher"`
	Browser    BrowserConfig    `mapstructure:"browser"    yaml:"browser"`
	Aggregator AggregatorConfig `mapstructure:"aggregator" yaml:"aggregator"`
	Feed       FeedConfig       `mapstructure:"feed"       yaml:"feed"`
	Article    ArticleConfig    `mapstructure:"article"    yaml:"article"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    yaml:"metrics"`
	Watch      WatchConfig      `mapstructure:"watch"      yaml:"watch"`
}

// FetcherConfig controls the plain HTTP fetcher.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	DelayMin        time.Duration `mapstructure:"delay_min"         yaml:"delay_min"`
	DelayMax        time.Duration `mapstructure:"delay_max"         yaml:"delay_max"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	AcceptLanguage  string        `mapstructure:"accept_language"   yaml:"accept_language"`
	Proxies         []string      `mapstructure:"proxies"           yaml:"proxies"`        // empty = direct or $HTTP(S)_PROXY
	ProxyRotation   string        `mapstructure:"proxy_rotation"    yaml:"proxy_rotation"` // round_robin, random
}

// BrowserConfig controls the headless-browser renderer.
type BrowserConfig struct {
	Enabled         bool          `mapstructure:"enabled"           yaml:"enabled"`
	Renderer        string        `mapstructure:"renderer"          yaml:"renderer"` // rod, chromedp
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout" yaml:"page_load_timeout"`
	ReadyTimeout    time.Duration `mapstructure:"ready_timeout"     yaml:"ready_timeout"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"      yaml:"settle_delay"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
	WindowSize      string        `mapstructure:"window_size"       yaml:"window_size"`
	BinPath         string        `mapstructure:"bin_path"          yaml:"bin_path"`
}

// AggregatorConfig controls category runs.
type AggregatorConfig struct {
	SourceDelayMin time.Duration `mapstructure:"source_delay_min" yaml:"source_delay_min"`
	SourceDelayMax time.Duration `mapstructure:"source_delay_max" yaml:"source_delay_max"`
	MaxResults     int           `mapstructure:"max_results"      yaml:"max_results"`
}

// FeedConfig controls the feed adapter.
type FeedConfig struct {
	MaxEntries        int `mapstructure:"max_entries"        yaml:"max_entries"`
	DescriptionLength int `mapstructure:"description_length" yaml:"description_length"`
}

// ArticleConfig controls full-text and preview extraction.
type ArticleConfig struct {
	PreviewLength int `mapstructure:"preview_length" yaml:"preview_length"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, json, tint
}

// MetricsConfig controls the Prometheus-style metrics endpoint of the watch command.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// WatchConfig controls periodic category runs.
type WatchConfig struct {
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			RequestTimeout:  15 * time.Second,
			DelayMin:        1 * time.Second,
			DelayMax:        3 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
			AcceptLanguage:  "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3",
			ProxyRotation:   "round_robin",
		},
		Browser: BrowserConfig{
			Enabled:         true,
			Renderer:        "rod",
			PageLoadTimeout: 30 * time.Second,
			ReadyTimeout:    10 * time.Second,
			SettleDelay:     3 * time.Second,
			Stealth:         true,
			WindowSize:      "1920,1080",
		},
		Aggregator: AggregatorConfig{
			SourceDelayMin: 2 * time.Second,
			SourceDelayMax: 4 * time.Second,
			MaxResults:     MaxResultsLimit,
		},
		Feed: FeedConfig{
			MaxEntries:        20,
			DescriptionLength: 200,
		},
		Article: ArticleConfig{
			PreviewLength: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		Watch: WatchConfig{
			Schedule: "*/30 * * * *",
		},
	}
}
