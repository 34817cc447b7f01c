package fetcher

import (
	"math/rand"
	"strings"

	browser "github.com/EDDYCJY/fake-useragent"
)

// builtinUserAgents is the rotation used when neither a configured list nor
// the fake-useragent database yields an agent.
var builtinUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 YaBrowser/24.1.0.0 Safari/537.36",
}

// userAgentPool hands out identifying User-Agent strings. A configured list
// takes precedence over the fake-useragent database, which takes precedence
// over the built-in rotation.
type userAgentPool struct {
	agents []string
	random func() string
}

func newUserAgentPool(agents []string) *userAgentPool {
	return &userAgentPool{
		agents: agents,
		random: browser.Random,
	}
}

// Next returns a randomly chosen User-Agent.
func (p *userAgentPool) Next() string {
	if len(p.agents) > 0 {
		return p.agents[rand.Intn(len(p.agents))]
	}
	if ua := strings.TrimSpace(p.random()); ua != "" {
		return ua
	}
	return builtinUserAgents[rand.Intn(len(builtinUserAgents))]
}
