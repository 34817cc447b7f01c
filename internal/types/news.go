package types

import (
	"encoding/json"
	"net/url"
)

// Category is one of the configured topical news categories.
type Category string

const (
	Politics Category = "politics"
	Science  Category = "science"
	Health   Category = "health"
)

// Categories lists the configured categories in display order.
func Categories() []Category {
	return []Category{Politics, Science, Health}
}

// Format is the expected format of a configured source URL.
type Format string

const (
	FormatHTML Format = "HTML"
	FormatRSS  Format = "RSS"
)

// TodayLabel is the placeholder date for items published "today" whose
// exact date the listing does not show.
const TodayLabel = "Сегодня"

// Layouts of NewsRecord.Date and NewsRecord.Time.
const (
	DateLayout  = "02.01.2006"
	ClockLayout = "15:04"
)

// NewsRecord is a single normalized news item. Records are created once per
// fetch cycle and never mutated after they leave an adapter.
type NewsRecord struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Image       string `json:"image"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
}

// HasAbsoluteLink reports whether Link carries both a scheme and a host.
func (n NewsRecord) HasAbsoluteLink() bool {
	u, err := url.Parse(n.Link)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Statistics summarizes one category run.
type Statistics struct {
	TotalCollected    int            `json:"total_collected"`
	TotalUnique       int            `json:"total_unique"`
	SuccessfulSources int            `json:"successful_sources"`
	TotalSources      int            `json:"total_sources"`
	Sources           map[string]int `json:"sources"`
	Error             string         `json:"error,omitempty"`
}

// AggregationResult is the outcome of a category run.
type AggregationResult struct {
	Category   Category     `json:"category"`
	News       []NewsRecord `json:"news"`
	Statistics Statistics   `json:"statistics"`
}

// ToJSON serializes the result with indentation.
func (r *AggregationResult) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
