// Package feed extracts news records from RSS and Atom documents.
package feed

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/fetcher"
	"github.com/hhton/newscascade/internal/parser"
	"github.com/hhton/newscascade/internal/types"
)

var (
	errNoTitle = errors.New("entry has no title")
	errNoLink  = errors.New("entry has no usable link")
)

// Reader fetches feeds and turns their entries into news records.
type Reader struct {
	fetcher fetcher.Fetcher
	cfg     config.FeedConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewReader creates a feed reader that downloads through f.
func NewReader(f fetcher.Fetcher, cfg config.FeedConfig, logger *slog.Logger) *Reader {
	return &Reader{
		fetcher: f,
		cfg:     cfg,
		logger:  logger.With("component", "feed"),
		now:     time.Now,
	}
}

// Extract downloads feedURL and returns records for its leading entries.
// Fetch or parse failures yield an empty result.
func (r *Reader) Extract(ctx context.Context, feedURL string) []types.NewsRecord {
	req, err := types.NewRequest(feedURL)
	if err != nil {
		r.logger.Warn("invalid feed URL", "url", feedURL, "error", err)
		return nil
	}

	resp, err := r.fetcher.Fetch(ctx, req)
	if err != nil {
		r.logger.Warn("feed fetch failed", "url", feedURL, "error", err)
		return nil
	}

	return r.Parse(feedURL, resp.Body)
}

// Parse converts a raw feed document. feedURL labels the records and
// resolves relative entry links.
func (r *Reader) Parse(feedURL string, body []byte) []types.NewsRecord {
	if len(bytes.TrimSpace(body)) == 0 {
		r.logger.Warn("feed is empty", "url", feedURL)
		return nil
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		r.logger.Warn("feed parse failed", "error", &types.ParseError{URL: feedURL, Err: err})
		return nil
	}
	if len(parsed.Items) == 0 {
		r.logger.Warn("feed has no entries", "url", feedURL)
		return nil
	}

	base, _ := url.Parse(feedURL)
	source := parser.SourceName(feedURL)

	items := parsed.Items
	if r.cfg.MaxEntries > 0 && len(items) > r.cfg.MaxEntries {
		items = items[:r.cfg.MaxEntries]
	}

	records := make([]types.NewsRecord, 0, len(items))
	for _, item := range items {
		rec, err := r.entry(item, base, source)
		if err != nil {
			r.logger.Debug("entry skipped", "url", feedURL, "error", err)
			continue
		}
		records = append(records, rec)
	}

	r.logger.Debug("feed parsed", "url", feedURL, "entries", len(parsed.Items), "records", len(records))
	return records
}

func (r *Reader) entry(item *gofeed.Item, base *url.URL, source string) (types.NewsRecord, error) {
	if item == nil {
		return types.NewsRecord{}, errNoTitle
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return types.NewsRecord{}, errNoTitle
	}

	link := absoluteLink(item, base)
	if link == "" {
		return types.NewsRecord{}, errNoLink
	}

	date, clock := r.timestamp(item)

	return types.NewsRecord{
		Title:       title,
		Date:        date,
		Time:        clock,
		Image:       imageURL(item),
		Link:        link,
		Source:      source,
		Description: truncate(plainText(item.Description), r.cfg.DescriptionLength),
	}, nil
}

// timestamp prefers the published time, then the updated time. Only the
// published time yields a clock value.
func (r *Reader) timestamp(item *gofeed.Item) (date, clock string) {
	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		return t.Format(types.DateLayout), t.Format(types.ClockLayout)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC().Format(types.DateLayout), ""
	default:
		return r.now().Format(types.DateLayout), ""
	}
}

func absoluteLink(item *gofeed.Item, base *url.URL) string {
	candidates := append([]string{item.Link}, item.Links...)
	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		ref, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if (ref.Scheme == "http" || ref.Scheme == "https") && ref.Host != "" {
			return ref.String()
		}
	}
	return ""
}

// imageURL looks at enclosures first, then inline media content, then
// media thumbnails.
func imageURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}

	media := item.Extensions["media"]
	for _, c := range media["content"] {
		typ := c.Attrs["type"]
		if (strings.HasPrefix(typ, "image/") || c.Attrs["medium"] == "image") && c.Attrs["url"] != "" {
			return c.Attrs["url"]
		}
	}
	for _, th := range media["thumbnail"] {
		if u := th.Attrs["url"]; u != "" {
			return u
		}
	}

	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

// plainText drops the markup and entities feeds embed in descriptions and
// collapses whitespace. It runs before truncation so a cut never lands
// inside a tag.
func plainText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Find("body").Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
