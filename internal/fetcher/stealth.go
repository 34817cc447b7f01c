package fetcher

import (
	"fmt"
	"math/rand"
	"net/http"
)

// applyBrowserHeaders sets the header set a desktop browser sends on a
// top-level navigation. Headers already present are left alone.
func applyBrowserHeaders(h http.Header, acceptLanguage string) {
	defaults := [][2]string{
		{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
		{"Accept-Language", acceptLanguage},
		{"Accept-Encoding", "gzip, deflate, br"},
		{"Connection", "keep-alive"},
		{"Upgrade-Insecure-Requests", "1"},
	}
	for _, kv := range defaults {
		if kv[1] != "" && h.Get(kv[0]) == "" {
			h.Set(kv[0], kv[1])
		}
	}
}

// stealthScript returns JavaScript that hides the usual headless markers. It
// is evaluated before page scripts by renderers without a stealth plugin.
func stealthScript() string {
	platforms := []string{"Win32", "MacIntel", "Linux x86_64"}
	platform := platforms[rand.Intn(len(platforms))]
	cores := 4 + rand.Intn(13)

	return fmt.Sprintf(`
Object.defineProperty(navigator, 'webdriver', { get: () => false });
Object.defineProperty(navigator, 'platform', { get: () => '%s' });
Object.defineProperty(navigator, 'languages', { get: () => ['ru-RU', 'ru', 'en-US', 'en'] });
Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => %d });
window.chrome = {
	runtime: { onMessage: { addListener: () => {} }, sendMessage: () => {} },
	loadTimes: () => ({}),
	csi: () => ({}),
};
Object.defineProperty(navigator, 'plugins', {
	get: () => {
		const plugins = [
			{ name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer' },
			{ name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai' },
			{ name: 'Native Client', filename: 'internal-nacl-plugin' },
		];
		plugins.length = 3;
		return plugins;
	}
});
`, platform, cores)
}
