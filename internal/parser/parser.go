// Package parser turns fetched listing pages into news records. Each known
// source has a dedicated adapter; everything else goes through the generic
// heuristics.
package parser

import (
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hhton/newscascade/internal/types"
)

// Reasons an item is skipped. They never leave the package.
var (
	errNoTitle    = errors.New("no usable title")
	errNoLink     = errors.New("no usable link")
	errOffDomain  = errors.New("link leaves source domain")
	errSeenLink   = errors.New("link already extracted")
	errBadPageURL = errors.New("page URL is not absolute")
)

// scanPolicy controls how an adapter walks its item selectors.
type scanPolicy struct {
	// accumulate gathers items from every selector before extracting.
	accumulate bool
	// perSelector caps the items taken from one selector (0 = all).
	perSelector int
	// enough stops the selector scan once this many records are accepted.
	enough int
	// uniqueLinks drops items whose link was already extracted on the page.
	uniqueLinks bool
}

// Adapter extracts the fields of one news item for a particular source.
type Adapter interface {
	Kind() Kind
	ItemSelectors() []string
	Title(item *goquery.Selection) (string, error)
	Link(item *goquery.Selection, page *url.URL) (string, error)
	Image(item *goquery.Selection, page *url.URL) string
	DateTime(item *goquery.Selection, today string) (date, clock string)

	policy() scanPolicy
}

// Parser dispatches documents to source adapters.
type Parser struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the clock used for "today" dates.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a Parser.
func New(logger *slog.Logger, opts ...Option) *Parser {
	p := &Parser{
		logger: logger.With("component", "parser"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Today returns the current date in DD.MM.YYYY form.
func (p *Parser) Today() string {
	return p.now().Format(types.DateLayout)
}

// AdapterFor returns the adapter registered for kind.
func AdapterFor(kind Kind) Adapter {
	switch kind {
	case KindRIA:
		return riaAdapter{}
	case KindTASS:
		return tassAdapter
	case KindInterfax:
		return interfaxAdapter
	case KindDoctorPiter:
		return doctorPiterAdapter
	default:
		return genericAdapter{}
	}
}

// Dispatch picks the adapter by the page host and extracts records.
func (p *Parser) Dispatch(resp *types.Response) []types.NewsRecord {
	return p.Extract(resp, AdapterFor(KindForURL(resp.Request.URLString())))
}

// Extract runs one adapter over a response. Failures are logged and yield
// no records.
func (p *Parser) Extract(resp *types.Response, a Adapter) []types.NewsRecord {
	pageURL := resp.Request.URLString()
	log := p.logger.With("url", pageURL, "adapter", a.Kind().String())

	doc, err := resp.Document()
	if err != nil {
		log.Warn("document unavailable", "error", &types.ParseError{URL: pageURL, Err: err})
		return nil
	}

	page := resp.Request.URL
	if page == nil || !page.IsAbs() {
		log.Warn("cannot extract", "error", errBadPageURL)
		return nil
	}

	pol := a.policy()
	today := p.Today()
	seen := make(map[string]bool)
	var records []types.NewsRecord

	extract := func(items *goquery.Selection, selector string) {
		if pol.perSelector > 0 && items.Length() > pol.perSelector {
			items = items.Slice(0, pol.perSelector)
		}
		items.Each(func(_ int, item *goquery.Selection) {
			rec, err := p.item(a, item, page, today, seen, pol.uniqueLinks)
			if err != nil {
				log.Debug("item skipped", "error", &types.ParseError{URL: pageURL, Selector: selector, Err: err})
				return
			}
			records = append(records, rec)
		})
	}

	if pol.accumulate {
		var all []*goquery.Selection
		var from []string
		for _, sel := range a.ItemSelectors() {
			found := doc.Find(sel)
			if found.Length() == 0 {
				continue
			}
			log.Debug("items matched", "selector", sel, "count", found.Length())
			found.Each(func(_ int, s *goquery.Selection) {
				all = append(all, s)
				from = append(from, sel)
			})
		}
		for i, item := range all {
			extract(item, from[i])
		}
	} else {
		for _, sel := range a.ItemSelectors() {
			found := doc.Find(sel)
			if found.Length() == 0 {
				continue
			}
			log.Debug("items matched", "selector", sel, "count", found.Length())
			extract(found, sel)
			if pol.enough > 0 && len(records) >= pol.enough {
				break
			}
		}
	}

	log.Debug("extraction finished", "records", len(records))
	return records
}

// item builds one record. Adapter errors skip only this item.
func (p *Parser) item(a Adapter, item *goquery.Selection, page *url.URL, today string, seen map[string]bool, unique bool) (types.NewsRecord, error) {
	title, err := a.Title(item)
	if err != nil {
		return types.NewsRecord{}, err
	}

	link, err := a.Link(item, page)
	if err != nil {
		return types.NewsRecord{}, err
	}
	if unique {
		if seen[link] {
			return types.NewsRecord{}, errSeenLink
		}
		seen[link] = true
	}

	date, clock := a.DateTime(item, today)

	source := a.Kind().Label()
	if source == "" {
		source = SourceName(page.String())
	}

	return types.NewsRecord{
		Title:  ClampTitle(title),
		Date:   date,
		Time:   clock,
		Image:  a.Image(item, page),
		Link:   link,
		Source: source,
	}, nil
}

// firstAttr returns the first non-empty attribute among names.
func firstAttr(s *goquery.Selection, names ...string) string {
	for _, n := range names {
		if v, ok := s.Attr(n); ok && v != "" {
			return v
		}
	}
	return ""
}
