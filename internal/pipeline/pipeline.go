// Package pipeline post-processes records produced by the source adapters
// before they are merged into a category result.
package pipeline

import (
	"log/slog"

	"github.com/hhton/newscascade/internal/types"
)

// Middleware processes a record and returns the (possibly modified) record.
// Return nil to drop the record from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a record. Return nil to drop it.
	Process(rec *types.NewsRecord) (*types.NewsRecord, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates an empty Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Default returns the pipeline every category run uses.
func Default(logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(NewHTMLSanitizeMiddleware())
	p.Use(&TrimMiddleware{})
	p.Use(&RequiredFieldsMiddleware{})
	p.Use(&SourceDefaultMiddleware{})
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the record through all middleware in order.
func (p *Pipeline) Process(rec *types.NewsRecord) (*types.NewsRecord, error) {
	current := rec

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:  mw.Name(),
				Record: current,
				Err:    err,
			}
		}
		if result == nil {
			p.logger.Debug("record dropped", "stage", mw.Name(), "link", rec.Link)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Apply processes a batch and returns the surviving records in order.
// Records that fail a stage are logged and dropped.
func (p *Pipeline) Apply(records []types.NewsRecord) []types.NewsRecord {
	out := make([]types.NewsRecord, 0, len(records))
	for i := range records {
		rec := records[i]
		result, err := p.Process(&rec)
		if err != nil {
			p.logger.Warn("record rejected", "error", err)
			continue
		}
		if result != nil {
			out = append(out, *result)
		}
	}
	return out
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
