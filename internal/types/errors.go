package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyResponse   = errors.New("empty response body")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrBrowserDisabled = errors.New("browser rendering disabled")
)

// UnknownCategoryMarker is the statistics error marker for categories outside the source table.
const UnknownCategoryMarker = "Unknown category"

// FetchError wraps errors that occur during fetching (timeouts, connection errors,
// unusable status codes).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Rendered   bool
}

func (e *FetchError) Error() string {
	mode := "http"
	if e.Rendered {
		mode = "browser"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s fetch error for %s (status %d): %v", mode, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch error for %s: %v", mode, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur during parsing of markup or feeds.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PipelineError wraps errors raised by a record middleware.
type PipelineError struct {
	Stage  string
	Record *NewsRecord
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
