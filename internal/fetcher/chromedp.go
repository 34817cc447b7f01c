package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/hhton/newscascade/internal/config"
)

// chromedpRenderer renders pages through a Chrome instance driven by chromedp.
type chromedpRenderer struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	cfg           config.BrowserConfig
	script        string
	logger        *slog.Logger
}

func newChromedpRenderer(cfg config.BrowserConfig, userAgent string, logger *slog.Logger) (renderer, error) {
	width, height, err := config.ParseWindowSize(cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(width, height),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if cfg.BinPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BinPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	r := &chromedpRenderer{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		cfg:           cfg,
		logger:        logger,
	}
	if cfg.Stealth {
		r.script = stealthScript()
	}
	return r, nil
}

// Render implements renderer.
func (r *chromedpRenderer) Render(ctx context.Context, rawURL string) (string, string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	budget := r.cfg.PageLoadTimeout + r.cfg.ReadyTimeout + r.cfg.SettleDelay
	tabCtx, cancel := context.WithTimeout(tabCtx, budget)
	defer cancel()

	var html, finalURL string
	var actions []chromedp.Action
	if r.script != "" {
		script := r.script
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}))
	}
	actions = append(actions,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.cfg.SettleDelay),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", "", fmt.Errorf("render %s: %w", rawURL, err)
	}
	return html, finalURL, nil
}

// Close implements renderer.
func (r *chromedpRenderer) Close() error {
	r.browserCancel()
	r.allocCancel()
	return nil
}
