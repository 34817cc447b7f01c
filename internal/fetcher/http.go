package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/types"
)

// HTTPFetcher implements Fetcher using net/http. Every request is preceded by
// a jittered politeness delay and carries a freshly randomized User-Agent.
type HTTPFetcher struct {
	client *http.Client
	cfg    *config.FetcherConfig
	agents  *userAgentPool
	proxies *ProxyManager
	logger  *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy: proxyFunc,
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: max(cfg.Fetcher.MaxIdleConns/2, 1),
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // decompression (including brotli) happens in decompressReader
	}

	client := &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   cfg.Fetcher.RequestTimeout,
	}

	return &HTTPFetcher{
		client:  client,
		cfg:     &cfg.Fetcher,
		agents:  newUserAgentPool(cfg.Fetcher.UserAgents),
		proxies: NewProxyManager(cfg.Fetcher.Proxies, cfg.Fetcher.ProxyRotation, logger),
		logger:  logger.With("component", "http_fetcher"),
	}, nil
}

// Fetch executes an HTTP GET and returns the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if err := Sleep(ctx, Jitter(f.cfg.DelayMin, f.cfg.DelayMax)); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	proxy := f.proxies.Next()
	if proxy != nil {
		ctx = withProxy(ctx, proxy)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URLString(), nil)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	httpReq.Header.Set("User-Agent", f.agents.Next())
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}
	applyBrowserHeaders(httpReq.Header, f.cfg.AcceptLanguage)

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		if proxy != nil && ctx.Err() == nil {
			f.proxies.MarkFailed(proxy, err)
		}
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	defer httpResp.Body.Close()
	if proxy != nil {
		f.proxies.MarkHealthy(proxy)
	}

	if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &types.FetchError{
			URL:        req.URLString(),
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, body),
		}
	}

	var reader io.Reader = httpResp.Body
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, f.cfg.MaxBodySize)
	}

	reader, err = decompressReader(httpResp, reader)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: httpResp.StatusCode, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: httpResp.StatusCode, Err: err}
	}

	resp := types.NewResponse(req, httpResp, body)

	f.logger.Debug("fetch complete",
		"url", req.URLString(),
		"status", resp.StatusCode,
		"size", len(body),
		"feed", resp.Feed,
		"duration", duration,
	)

	return resp, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
