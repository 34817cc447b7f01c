package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.DelayMin < 0 || cfg.Fetcher.DelayMax < cfg.Fetcher.DelayMin {
		return fmt.Errorf("fetcher.delay_min/delay_max must satisfy 0 <= min <= max, got %s/%s",
			cfg.Fetcher.DelayMin, cfg.Fetcher.DelayMax)
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	switch cfg.Fetcher.ProxyRotation {
	case "round_robin", "random":
	default:
		return fmt.Errorf("fetcher.proxy_rotation must be 'round_robin' or 'random', got %q", cfg.Fetcher.ProxyRotation)
	}
	for _, p := range cfg.Fetcher.Proxies {
		if err := validateProxyURL(p); err != nil {
			return fmt.Errorf("fetcher.proxies: %w", err)
		}
	}

	if cfg.Browser.Enabled {
		if cfg.Browser.Renderer != "rod" && cfg.Browser.Renderer != "chromedp" {
			return fmt.Errorf("browser.renderer must be 'rod' or 'chromedp', got %q", cfg.Browser.Renderer)
		}
		if cfg.Browser.PageLoadTimeout <= 0 {
			return fmt.Errorf("browser.page_load_timeout must be > 0")
		}
		if cfg.Browser.SettleDelay < 0 {
			return fmt.Errorf("browser.settle_delay must be >= 0")
		}
		if _, _, err := ParseWindowSize(cfg.Browser.WindowSize); err != nil {
			return fmt.Errorf("browser.window_size: %w", err)
		}
	}

	if cfg.Aggregator.SourceDelayMin < 0 || cfg.Aggregator.SourceDelayMax < cfg.Aggregator.SourceDelayMin {
		return fmt.Errorf("aggregator.source_delay_min/source_delay_max must satisfy 0 <= min <= max")
	}
	if cfg.Aggregator.MaxResults < 1 || cfg.Aggregator.MaxResults > MaxResultsLimit {
		return fmt.Errorf("aggregator.max_results must be 1-%d, got %d", MaxResultsLimit, cfg.Aggregator.MaxResults)
	}

	if cfg.Feed.MaxEntries < 1 {
		return fmt.Errorf("feed.max_entries must be >= 1, got %d", cfg.Feed.MaxEntries)
	}
	if cfg.Feed.DescriptionLength < 0 {
		return fmt.Errorf("feed.description_length must be >= 0")
	}
	if cfg.Article.PreviewLength < 1 {
		return fmt.Errorf("article.preview_length must be >= 1, got %d", cfg.Article.PreviewLength)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json", "tint":
	default:
		return fmt.Errorf("logging.format must be 'text', 'json' or 'tint', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is usable as an article or source URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// validateProxyURL accepts http, https and socks5 proxy URLs with a host.
func validateProxyURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("proxy URL %q: scheme must be http, https or socks5", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("proxy URL %q must have a host", rawURL)
	}
	return nil
}

// ParseWindowSize parses a "width,height" pair.
func ParseWindowSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected \"width,height\", got %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return width, height, nil
}
