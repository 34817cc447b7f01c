package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/types"
)

// renderer drives one running headless browser.
type renderer interface {
	// Render navigates to rawURL and returns the rendered markup and final URL.
	Render(ctx context.Context, rawURL string) (html string, finalURL string, err error)
	Close() error
}

// rendererFactory starts a browser identifying itself with the given User-Agent.
type rendererFactory func(cfg config.BrowserConfig, userAgent string, logger *slog.Logger) (renderer, error)

// BrowserFetcher implements Fetcher with a headless browser session that is
// started on the first Fetch and reused until Close. Close tears the browser
// down; a later Fetch starts a fresh one. Not safe for concurrent callers.
type BrowserFetcher struct {
	cfg     config.BrowserConfig
	agents  *userAgentPool
	logger  *slog.Logger
	factory rendererFactory

	mu       sync.Mutex
	session  renderer
	launches int
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// withRendererFactory replaces the browser backend.
func withRendererFactory(f rendererFactory) BrowserOption {
	return func(bf *BrowserFetcher) { bf.factory = f }
}

// NewBrowserFetcher creates a browser fetcher. No browser is launched until
// the first Fetch.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger, opts ...BrowserOption) *BrowserFetcher {
	bf := &BrowserFetcher{
		cfg:    cfg.Browser,
		agents: newUserAgentPool(cfg.Fetcher.UserAgents),
		logger: logger.With("component", "browser_fetcher"),
	}
	switch cfg.Browser.Renderer {
	case "chromedp":
		bf.factory = newChromedpRenderer
	default:
		bf.factory = newRodRenderer
	}
	for _, opt := range opts {
		opt(bf)
	}
	return bf
}

// Fetch renders the page and returns the resulting markup.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if !bf.cfg.Enabled {
		return nil, &types.FetchError{URL: req.URLString(), Err: types.ErrBrowserDisabled, Rendered: true}
	}

	session, err := bf.acquire()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Rendered: true}
	}

	start := time.Now()
	html, finalURL, err := session.Render(ctx, req.URLString())
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err, Rendered: true}
	}
	if finalURL == "" {
		finalURL = req.URLString()
	}
	duration := time.Since(start)

	bf.logger.Debug("browser fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewBrowserResponse(req, []byte(html), finalURL), nil
}

// acquire returns the running session, starting one if needed.
func (bf *BrowserFetcher) acquire() (renderer, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.session != nil {
		return bf.session, nil
	}

	session, err := bf.factory(bf.cfg, bf.agents.Next(), bf.logger)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	bf.session = session
	bf.launches++
	bf.logger.Info("browser session started", "renderer", bf.cfg.Renderer, "stealth", bf.cfg.Stealth)
	return session, nil
}

// Active reports whether a browser session is currently running.
func (bf *BrowserFetcher) Active() bool {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	return bf.session != nil
}

// Close shuts the browser session down if one is running.
func (bf *BrowserFetcher) Close() error {
	bf.mu.Lock()
	session := bf.session
	bf.session = nil
	bf.mu.Unlock()

	if session == nil {
		return nil
	}
	bf.logger.Info("browser session released")
	return session.Close()
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
