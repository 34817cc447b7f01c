// Package cascade decides, per source URL, which extraction strategy runs
// and in what order the remaining ones are tried.
package cascade

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/feed"
	"github.com/hhton/newscascade/internal/fetcher"
	"github.com/hhton/newscascade/internal/observability"
	"github.com/hhton/newscascade/internal/parser"
	"github.com/hhton/newscascade/internal/types"
)

// State is a step of the fallback chain.
type State int

const (
	StateSpecialized State = iota
	StateFeed
	StateStatic
	StateRendered
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSpecialized:
		return "specialized"
	case StateFeed:
		return "feed"
	case StateStatic:
		return "static"
	case StateRendered:
		return "rendered"
	default:
		return "done"
	}
}

// Step records one visited state and how many records it produced.
type Step struct {
	State   State
	Records int
}

// Outcome is the result of running the chain for one URL.
type Outcome struct {
	URL     string
	Records []types.NewsRecord
	// Answered is the state that produced Records, or StateDone when every
	// strategy came back empty.
	Answered State
	Trace    []Step
}

// Controller runs the fallback chain: specialized, feed, static, rendered.
type Controller struct {
	static   fetcher.Fetcher
	rendered fetcher.Fetcher
	feeds    *feed.Reader
	parser   *parser.Parser
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a Controller. static serves plain GETs (feeds included);
// rendered serves headless-browser fetches.
func New(cfg *config.Config, static, rendered fetcher.Fetcher, p *parser.Parser, metrics *observability.Metrics, logger *slog.Logger) *Controller {
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	static = &metered{Fetcher: static, metrics: metrics}
	rendered = &metered{Fetcher: rendered, metrics: metrics}
	return &Controller{
		static:   static,
		rendered: rendered,
		feeds:    feed.NewReader(static, cfg.Feed, logger),
		parser:   p,
		metrics:  metrics,
		logger:   logger.With("component", "cascade"),
	}
}

// entryState picks where the chain starts for a URL.
func entryState(rawURL string) State {
	if parser.KindForURL(rawURL) == parser.KindRIA && !riaFeedURL(rawURL) {
		return StateSpecialized
	}
	if types.LooksLikeFeed(rawURL) {
		return StateFeed
	}
	return StateStatic
}

func riaFeedURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.Contains(lower, "rss") || strings.Contains(lower, "export")
}

// Run walks the chain for rawURL and returns the first non-empty result.
// A specialized source ends the chain even when it finds nothing.
func (c *Controller) Run(ctx context.Context, rawURL string) Outcome {
	out := Outcome{URL: rawURL, Answered: StateDone}
	log := c.logger.With("url", rawURL)

	state := entryState(rawURL)
	for state != StateDone {
		if ctx.Err() != nil {
			log.Warn("cascade interrupted", "state", state.String(), "error", ctx.Err())
			break
		}

		var records []types.NewsRecord
		next := StateDone

		switch state {
		case StateSpecialized:
			records = c.specialized(ctx, rawURL)
			// terminal regardless of emptiness
		case StateFeed:
			records = c.feeds.Extract(ctx, rawURL)
			c.metrics.FeedsParsed.Add(1)
			next = StateStatic
		case StateStatic:
			records = c.dispatch(ctx, c.static, rawURL)
			next = StateRendered
		case StateRendered:
			records = c.dispatch(ctx, c.rendered, rawURL)
		}

		out.Trace = append(out.Trace, Step{State: state, Records: len(records)})
		log.Debug("cascade step", "state", state.String(), "records", len(records))

		if len(records) > 0 || state == StateSpecialized {
			out.Records = records
			if len(records) > 0 {
				out.Answered = state
			}
			break
		}
		state = next
	}

	c.record(out)
	return out
}

func (c *Controller) specialized(ctx context.Context, rawURL string) []types.NewsRecord {
	resp, ok := c.fetch(ctx, c.static, rawURL)
	if !ok {
		return nil
	}
	return c.parser.Extract(resp, parser.AdapterFor(parser.KindForURL(rawURL)))
}

func (c *Controller) dispatch(ctx context.Context, f fetcher.Fetcher, rawURL string) []types.NewsRecord {
	resp, ok := c.fetch(ctx, f, rawURL)
	if !ok {
		return nil
	}
	return c.parser.Dispatch(resp)
}

// fetch absorbs failures: they are logged and reported as "no document".
func (c *Controller) fetch(ctx context.Context, f fetcher.Fetcher, rawURL string) (*types.Response, bool) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		c.logger.Warn("invalid source URL", "url", rawURL, "error", err)
		return nil, false
	}
	resp, err := f.Fetch(ctx, req)
	if err != nil {
		c.logger.Warn("fetch failed", "url", rawURL, "fetcher", f.Type(), "error", err)
		return nil, false
	}
	if !resp.IsSuccess() {
		c.logger.Warn("unusable response", "url", rawURL, "status", resp.StatusCode)
		return nil, false
	}
	return resp, true
}

func (c *Controller) record(out Outcome) {
	c.metrics.RecordsExtracted.Add(int64(len(out.Records)))
	switch out.Answered {
	case StateSpecialized:
		c.metrics.SpecializedHits.Add(1)
	case StateFeed:
		c.metrics.FeedHits.Add(1)
	case StateStatic:
		c.metrics.StaticHits.Add(1)
	case StateRendered:
		c.metrics.RenderedHits.Add(1)
	default:
		c.metrics.EmptySources.Add(1)
	}
}

// metered counts fetches passing through a Fetcher.
type metered struct {
	fetcher.Fetcher
	metrics *observability.Metrics
}

func (m *metered) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	m.metrics.FetchesTotal.Add(1)
	resp, err := m.Fetcher.Fetch(ctx, req)
	if err != nil {
		m.metrics.FetchesFailed.Add(1)
		return nil, err
	}
	if resp.Rendered {
		m.metrics.FetchesRendered.Add(1)
	}
	m.metrics.BytesDownloaded.Add(int64(len(resp.Body)))
	return resp, nil
}
