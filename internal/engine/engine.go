// Package engine runs category aggregations: every configured source goes
// through the cascade, results are merged, deduplicated and counted.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/hhton/newscascade/internal/cascade"
	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/fetcher"
	"github.com/hhton/newscascade/internal/observability"
	"github.com/hhton/newscascade/internal/parser"
	"github.com/hhton/newscascade/internal/pipeline"
	"github.com/hhton/newscascade/internal/types"
)

// Engine aggregates news for a category. Runs are sequential; an Engine
// must not be shared by concurrent callers.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	rendered fetcher.Fetcher
	parser   *parser.Parser
	pipeline *pipeline.Pipeline
	cascade  *cascade.Controller
	metrics  *observability.Metrics

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics shares a metrics registry with the engine.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithParser overrides the listing parser.
func WithParser(p *parser.Parser) Option {
	return func(e *Engine) { e.parser = p }
}

// WithPipeline replaces the record post-processing pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// New creates an Engine. static serves plain GETs; rendered is the browser
// session the engine releases at the end of every run.
func New(cfg *config.Config, static, rendered fetcher.Fetcher, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		logger:   logger.With("component", "engine"),
		rendered: rendered,
		sleep:    fetcher.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = observability.NewMetrics(logger)
	}
	if e.parser == nil {
		e.parser = parser.New(logger)
	}
	if e.pipeline == nil {
		e.pipeline = pipeline.Default(logger)
	}
	e.cascade = cascade.New(cfg, static, rendered, e.parser, e.metrics, logger)
	return e
}

// Metrics returns the engine's metrics registry.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Run aggregates the latest news of a category. An unknown category is
// reported in the statistics, not as an error.
func (e *Engine) Run(ctx context.Context, category types.Category) *types.AggregationResult {
	sources, ok := Sources(category)
	if !ok {
		e.metrics.RunsRejected.Add(1)
		e.logger.Warn("unknown category", "category", string(category))
		return &types.AggregationResult{
			Category:   category,
			News:       []types.NewsRecord{},
			Statistics: types.Statistics{Error: types.UnknownCategoryMarker},
		}
	}

	e.metrics.RunsTotal.Add(1)
	start := time.Now()
	log := e.logger.With("category", string(category))
	log.Info("category run started", "sources", len(sources))

	defer func() {
		if err := e.rendered.Close(); err != nil {
			log.Warn("failed to release browser", "error", err)
		}
	}()

	stats := types.Statistics{
		TotalSources: len(sources),
		Sources:      make(map[string]int, len(sources)),
	}
	var collected []types.NewsRecord

	for i, src := range sources {
		if i > 0 {
			if err := e.sleep(ctx, fetcher.Jitter(e.cfg.Aggregator.SourceDelayMin, e.cfg.Aggregator.SourceDelayMax)); err != nil {
				log.Warn("run interrupted", "error", err)
				break
			}
		}

		key := src.Key()
		out := e.cascade.Run(ctx, src.URL)
		records := e.pipeline.Apply(out.Records)
		count := len(records)
		stats.Sources[key] = count
		stats.TotalCollected += count
		if count > 0 {
			stats.SuccessfulSources++
			collected = append(collected, records...)
		}

		log.Info("source processed",
			"source", key,
			"url", src.URL,
			"records", count,
			"strategy", out.Answered.String(),
		)
	}

	unique, dropped := Dedupe(collected)
	e.metrics.DuplicatesDropped.Add(int64(dropped))
	stats.TotalUnique = len(unique)

	news := unique
	if limit := e.cfg.Aggregator.MaxResults; limit > 0 && len(news) > limit {
		news = news[:limit]
	}

	log.Info("category run finished",
		"collected", stats.TotalCollected,
		"unique", stats.TotalUnique,
		"successful_sources", stats.SuccessfulSources,
		"total_sources", stats.TotalSources,
		"duration", time.Since(start),
		"metrics", e.metrics.Snapshot(),
	)

	return &types.AggregationResult{
		Category:   category,
		News:       news,
		Statistics: stats,
	}
}
