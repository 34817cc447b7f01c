package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hhton/newscascade/internal/config"
)

// rodRenderer renders pages through a Chromium instance controlled by Rod.
type rodRenderer struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	cfg       config.BrowserConfig
	userAgent string
	logger    *slog.Logger
}

func newRodRenderer(cfg config.BrowserConfig, userAgent string, logger *slog.Logger) (renderer, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", cfg.WindowSize)

	if cfg.BinPath != "" {
		l = l.Bin(cfg.BinPath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &rodRenderer{
		browser:   browser,
		launcher:  l,
		cfg:       cfg,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

func (r *rodRenderer) newPage() (*rod.Page, error) {
	if r.cfg.Stealth {
		return stealth.Page(r.browser)
	}
	return r.browser.Page(proto.TargetCreateTarget{})
}

// Render implements renderer.
func (r *rodRenderer) Render(ctx context.Context, rawURL string) (string, string, error) {
	page, err := r.newPage()
	if err != nil {
		return "", "", fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if r.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
			r.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if err := page.Timeout(r.cfg.PageLoadTimeout).Navigate(rawURL); err != nil {
		return "", "", fmt.Errorf("navigate: %w", err)
	}
	if err := page.Timeout(r.cfg.PageLoadTimeout).WaitLoad(); err != nil {
		r.logger.Warn("page load timeout, continuing", "url", rawURL, "error", err)
	}
	if _, err := page.Timeout(r.cfg.ReadyTimeout).Element("body"); err != nil {
		return "", "", fmt.Errorf("wait for body: %w", err)
	}

	if err := Sleep(ctx, r.cfg.SettleDelay); err != nil {
		return "", "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", "", fmt.Errorf("read html: %w", err)
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}
	return html, finalURL, nil
}

// Close implements renderer.
func (r *rodRenderer) Close() error {
	err := r.browser.Close()
	r.launcher.Kill()
	return err
}
