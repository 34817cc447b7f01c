package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics tracks counters across category runs.
type Metrics struct {
	// Fetch metrics
	FetchesTotal    atomic.Int64
	FetchesFailed   atomic.Int64
	FetchesRendered atomic.Int64
	BytesDownloaded atomic.Int64

	// Extraction metrics
	FeedsParsed       atomic.Int64
	RecordsExtracted  atomic.Int64
	DuplicatesDropped atomic.Int64

	// Cascade outcomes: which strategy produced a source's records.
	SpecializedHits atomic.Int64
	FeedHits        atomic.Int64
	StaticHits      atomic.Int64
	RenderedHits    atomic.Int64
	EmptySources    atomic.Int64

	// Run metrics
	RunsTotal    atomic.Int64
	RunsRejected atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type metric struct {
	name  string
	help  string
	value int64
}

func (m *Metrics) all() []metric {
	return []metric{
		{"newscascade_fetches_total", "Total fetches attempted", m.FetchesTotal.Load()},
		{"newscascade_fetches_failed_total", "Total failed fetches", m.FetchesFailed.Load()},
		{"newscascade_fetches_rendered_total", "Total headless-browser fetches", m.FetchesRendered.Load()},
		{"newscascade_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
		{"newscascade_feeds_parsed_total", "Total feeds parsed", m.FeedsParsed.Load()},
		{"newscascade_records_extracted_total", "Total news records extracted", m.RecordsExtracted.Load()},
		{"newscascade_duplicates_dropped_total", "Total duplicate records dropped", m.DuplicatesDropped.Load()},
		{"newscascade_cascade_specialized_total", "Sources answered by a specialized adapter", m.SpecializedHits.Load()},
		{"newscascade_cascade_feed_total", "Sources answered by the feed adapter", m.FeedHits.Load()},
		{"newscascade_cascade_static_total", "Sources answered from static markup", m.StaticHits.Load()},
		{"newscascade_cascade_rendered_total", "Sources answered from rendered markup", m.RenderedHits.Load()},
		{"newscascade_cascade_empty_total", "Sources that yielded nothing", m.EmptySources.Load()},
		{"newscascade_runs_total", "Total category runs", m.RunsTotal.Load()},
		{"newscascade_runs_rejected_total", "Category runs rejected for an unknown category", m.RunsRejected.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, metric := range m.all() {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server. It stops when ctx is done.
func (m *Metrics) StartServer(ctx context.Context, port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"fetches_total":      m.FetchesTotal.Load(),
		"fetches_failed":     m.FetchesFailed.Load(),
		"fetches_rendered":   m.FetchesRendered.Load(),
		"bytes_downloaded":   m.BytesDownloaded.Load(),
		"feeds_parsed":       m.FeedsParsed.Load(),
		"records_extracted":  m.RecordsExtracted.Load(),
		"duplicates_dropped": m.DuplicatesDropped.Load(),
		"specialized_hits":   m.SpecializedHits.Load(),
		"feed_hits":          m.FeedHits.Load(),
		"static_hits":        m.StaticHits.Load(),
		"rendered_hits":      m.RenderedHits.Load(),
		"empty_sources":      m.EmptySources.Load(),
		"runs_total":         m.RunsTotal.Load(),
		"runs_rejected":      m.RunsRejected.Load(),
	}
}
