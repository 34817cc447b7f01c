// Package newscascade provides a public SDK for collecting the latest
// Russian news on politics, science and health.
//
// Example usage:
//
//	client, err := newscascade.New(
//	    newscascade.WithBrowser(false),
//	    newscascade.WithMaxResults(10),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res := client.LatestNews(ctx, "politics")
//	for _, n := range res.News {
//	    fmt.Println(n.Title, n.Link)
//	}
//
//	preview := client.ArticlePreview(ctx, res.News[0].Link, 300)
package newscascade

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hhton/newscascade/internal/article"
	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/engine"
	"github.com/hhton/newscascade/internal/fetcher"
	"github.com/hhton/newscascade/internal/observability"
	"github.com/hhton/newscascade/internal/types"
)

type (
	// Result is the outcome of a category run.
	Result = types.AggregationResult
	// NewsRecord is a single news item.
	NewsRecord = types.NewsRecord
	// Statistics summarizes a category run.
	Statistics = types.Statistics
	// Article is an extracted article with its metadata.
	Article = article.Article
)

// Categories understood by LatestNews.
const (
	Politics = string(types.Politics)
	Science  = string(types.Science)
	Health   = string(types.Health)
)

// Client is the high-level API for using newscascade as a library.
type Client struct {
	cfg      *config.Config
	logger   *slog.Logger
	static   *fetcher.HTTPFetcher
	browser  *fetcher.BrowserFetcher
	engine   *engine.Engine
	articles *article.Extractor
}

// Option configures a Client.
type Option func(*config.Config)

// WithBrowser enables or disables the headless-browser fallback.
func WithBrowser(enabled bool) Option {
	return func(c *config.Config) { c.Browser.Enabled = enabled }
}

// WithRenderer selects the browser backend: "rod" or "chromedp".
func WithRenderer(name string) Option {
	return func(c *config.Config) { c.Browser.Renderer = name }
}

// WithMaxResults caps the number of records a category run returns.
func WithMaxResults(n int) Option {
	return func(c *config.Config) { c.Aggregator.MaxResults = n }
}

// WithRequestDelay sets the jittered pause before every HTTP request.
func WithRequestDelay(min, max time.Duration) Option {
	return func(c *config.Config) {
		c.Fetcher.DelayMin = min
		c.Fetcher.DelayMax = max
	}
}

// WithSourceDelay sets the jittered pause between sources of a run.
func WithSourceDelay(min, max time.Duration) Option {
	return func(c *config.Config) {
		c.Aggregator.SourceDelayMin = min
		c.Aggregator.SourceDelayMax = max
	}
}

// WithUserAgent pins a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.Fetcher.UserAgents = []string{ua} }
}

// WithPreviewLength sets the default preview length.
func WithPreviewLength(n int) Option {
	return func(c *config.Config) { c.Article.PreviewLength = n }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// New creates a Client from defaults and options.
func New(opts ...Option) (*Client, error) {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	level := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return NewWithConfig(cfg, logger)
}

// NewWithConfig creates a Client from an explicit configuration.
func NewWithConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	static, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	browser := fetcher.NewBrowserFetcher(cfg, logger)

	return &Client{
		cfg:      cfg,
		logger:   logger,
		static:   static,
		browser:  browser,
		engine:   engine.New(cfg, static, browser, logger),
		articles: article.NewExtractor(static, browser, logger),
	}, nil
}

// LatestNews aggregates the latest news of a category. Unknown categories
// yield an empty result whose statistics carry the error marker.
func (c *Client) LatestNews(ctx context.Context, category string) *Result {
	return c.engine.Run(ctx, types.Category(category))
}

// Article downloads an article and returns its text and metadata.
func (c *Client) Article(ctx context.Context, url string) (*Article, error) {
	return c.articles.Fetch(ctx, url)
}

// FullArticleText returns the formatted text of an article, or "".
func (c *Client) FullArticleText(ctx context.Context, url string) string {
	return c.articles.FullText(ctx, url)
}

// ArticlePreview returns a teaser of an article. A non-positive length
// uses the configured default.
func (c *Client) ArticlePreview(ctx context.Context, url string, length int) string {
	if length <= 0 {
		length = c.cfg.Article.PreviewLength
	}
	return c.articles.Preview(ctx, url, length)
}

// Metrics returns the client's counters.
func (c *Client) Metrics() *observability.Metrics {
	return c.engine.Metrics()
}

// Close releases network resources and any running browser.
func (c *Client) Close() error {
	berr := c.browser.Close()
	serr := c.static.Close()
	if berr != nil {
		return berr
	}
	return serr
}
