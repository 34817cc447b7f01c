package fetcher

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
)

// ProxyManager rotates outgoing requests across the configured proxies.
// A proxy that fails a request is benched until every proxy has failed,
// at which point the whole list is tried again.
type ProxyManager struct {
	proxies  []*proxyEntry
	rotation string
	index    atomic.Int64
	mu       sync.Mutex
	logger   *slog.Logger
}

type proxyEntry struct {
	URL     *url.URL
	Healthy bool
	LastErr error
}

// NewProxyManager parses the proxy list. Unparsable entries are skipped.
func NewProxyManager(rawURLs []string, rotation string, logger *slog.Logger) *ProxyManager {
	pm := &ProxyManager{
		proxies:  make([]*proxyEntry, 0, len(rawURLs)),
		rotation: rotation,
		logger:   logger.With("component", "proxy_manager"),
	}
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			pm.logger.Warn("invalid proxy URL", "url", raw, "error", err)
			continue
		}
		pm.proxies = append(pm.proxies, &proxyEntry{URL: u, Healthy: true})
	}
	if len(pm.proxies) > 0 {
		pm.logger.Info("proxy rotation enabled", "count", len(pm.proxies), "rotation", rotation)
	}
	return pm
}

// Next returns the proxy for the next request, or nil for a direct connection.
func (pm *ProxyManager) Next() *url.URL {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) == 0 {
		return nil
	}
	healthy := pm.healthyLocked()
	if len(healthy) == 0 {
		for _, p := range pm.proxies {
			p.Healthy = true
		}
		healthy = pm.proxies
		pm.logger.Warn("all proxies failed, retrying the full list")
	}

	if pm.rotation == "random" {
		return healthy[rand.Intn(len(healthy))].URL
	}
	idx := (pm.index.Add(1) - 1) % int64(len(healthy))
	return healthy[idx].URL
}

// MarkFailed benches a proxy after a failed request.
func (pm *ProxyManager) MarkFailed(proxyURL *url.URL, err error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, p := range pm.proxies {
		if p.URL.String() == proxyURL.String() {
			p.Healthy = false
			p.LastErr = err
			pm.logger.Warn("proxy marked unhealthy", "proxy", proxyURL.Host, "error", err)
			return
		}
	}
}

// MarkHealthy restores a proxy after a successful request.
func (pm *ProxyManager) MarkHealthy(proxyURL *url.URL) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, p := range pm.proxies {
		if p.URL.String() == proxyURL.String() {
			p.Healthy = true
			p.LastErr = nil
			return
		}
	}
}

// Count returns the number of configured proxies.
func (pm *ProxyManager) Count() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.proxies)
}

// HealthyCount returns the number of proxies not currently benched.
func (pm *ProxyManager) HealthyCount() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.healthyLocked())
}

func (pm *ProxyManager) healthyLocked() []*proxyEntry {
	healthy := make([]*proxyEntry, 0, len(pm.proxies))
	for _, p := range pm.proxies {
		if p.Healthy {
			healthy = append(healthy, p)
		}
	}
	return healthy
}

type proxyKey struct{}

// withProxy pins the proxy chosen for one request.
func withProxy(ctx context.Context, u *url.URL) context.Context {
	return context.WithValue(ctx, proxyKey{}, u)
}

// proxyFunc feeds http.Transport.Proxy. Requests without a pinned proxy
// fall back to the environment (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
func proxyFunc(req *http.Request) (*url.URL, error) {
	if u, ok := req.Context().Value(proxyKey{}).(*url.URL); ok && u != nil {
		return u, nil
	}
	return http.ProxyFromEnvironment(req)
}
