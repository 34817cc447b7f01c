package pipeline

import (
	"html"
	"regexp"
	"strings"

	"github.com/hhton/newscascade/internal/parser"
	"github.com/hhton/newscascade/internal/types"
)

// HTMLSanitizeMiddleware strips markup from titles and descriptions.
// Feed descriptions frequently carry inline HTML.
type HTMLSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(rec *types.NewsRecord) (*types.NewsRecord, error) {
	rec.Title = m.clean(rec.Title)
	rec.Description = m.clean(rec.Description)
	return rec, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	cleaned := m.stripRe.ReplaceAllString(s, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// TrimMiddleware trims whitespace from every field.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(rec *types.NewsRecord) (*types.NewsRecord, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Date = strings.TrimSpace(rec.Date)
	rec.Time = strings.TrimSpace(rec.Time)
	rec.Image = strings.TrimSpace(rec.Image)
	rec.Link = strings.TrimSpace(rec.Link)
	rec.Source = strings.TrimSpace(rec.Source)
	rec.Description = strings.TrimSpace(rec.Description)
	return rec, nil
}

// RequiredFieldsMiddleware drops records without a title or an absolute link.
type RequiredFieldsMiddleware struct{}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(rec *types.NewsRecord) (*types.NewsRecord, error) {
	if rec.Title == "" || !rec.HasAbsoluteLink() {
		return nil, nil
	}
	return rec, nil
}

// SourceDefaultMiddleware fills a missing source label from the link host.
type SourceDefaultMiddleware struct{}

func (m *SourceDefaultMiddleware) Name() string { return "source_default" }

func (m *SourceDefaultMiddleware) Process(rec *types.NewsRecord) (*types.NewsRecord, error) {
	if rec.Source == "" {
		rec.Source = parser.SourceName(rec.Link)
	}
	return rec, nil
}
