package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("NEWSCASCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("newscascade")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".newscascade"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.delay_min", cfg.Fetcher.DelayMin)
	v.SetDefault("fetcher.delay_max", cfg.Fetcher.DelayMax)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.user_agents", cfg.Fetcher.UserAgents)
	v.SetDefault("fetcher.accept_language", cfg.Fetcher.AcceptLanguage)
	v.SetDefault("fetcher.proxies", cfg.Fetcher.Proxies)
	v.SetDefault("fetcher.proxy_rotation", cfg.Fetcher.ProxyRotation)

	v.SetDefault("browser.enabled", cfg.Browser.Enabled)
	v.SetDefault("browser.renderer", cfg.Browser.Renderer)
	v.SetDefault("browser.page_load_timeout", cfg.Browser.PageLoadTimeout)
	v.SetDefault("browser.ready_timeout", cfg.Browser.ReadyTimeout)
	v.SetDefault("browser.settle_delay", cfg.Browser.SettleDelay)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)
	v.SetDefault("browser.bin_path", cfg.Browser.BinPath)

	v.SetDefault("aggregator.source_delay_min", cfg.Aggregator.SourceDelayMin)
	v.SetDefault("aggregator.source_delay_max", cfg.Aggregator.SourceDelayMax)
	v.SetDefault("aggregator.max_results", cfg.Aggregator.MaxResults)

	v.SetDefault("feed.max_entries", cfg.Feed.MaxEntries)
	v.SetDefault("feed.description_length", cfg.Feed.DescriptionLength)

	v.SetDefault("article.preview_length", cfg.Article.PreviewLength)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)

	v.SetDefault("watch.schedule", cfg.Watch.Schedule)
}
