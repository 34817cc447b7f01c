// Package article extracts the full text of a news article and builds
// previews from it.
package article

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/hhton/newscascade/internal/fetcher"
	"github.com/hhton/newscascade/internal/parser"
	"github.com/hhton/newscascade/internal/types"
)

// Article is an extracted news article.
type Article struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Published string `json:"published,omitempty"`
	Canonical string `json:"canonical,omitempty"`
	Text      string `json:"text"`
}

// Content container candidates, in order of preference.
var (
	riaContentSelectors = []string{
		"div.article__body",
		"div.article__text",
		"article",
		".content",
		".post-content",
		`[class*="article"]`,
		`[class*="content"]`,
	}
	contentSelectors = []string{
		"div.article__body",
		"div.article-text",
		"div.b-text",
		"article",
		"div.content",
		"div.post-content",
		`[class*="article"]`,
		`[class*="content"]`,
	}
)

// noiseSelector matches elements removed from a content container.
const noiseSelector = "script, style, .ad, .banner, .social, .share, " +
	".article__info, .article__meta, .article__tags, " +
	".recommended, .related, .comments, .advertisement"

// Extractor fetches article pages and pulls out their text.
type Extractor struct {
	static   fetcher.Fetcher
	rendered fetcher.Fetcher
	logger   *slog.Logger
}

// NewExtractor creates an Extractor. rendered is only used when a static
// fetch of a non-RIA page fails, and is released after that use.
func NewExtractor(static, rendered fetcher.Fetcher, logger *slog.Logger) *Extractor {
	return &Extractor{
		static:   static,
		rendered: rendered,
		logger:   logger.With("component", "article"),
	}
}

// Fetch downloads an article and extracts its metadata and text.
func (x *Extractor) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := x.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: rawURL, Err: err}
	}

	meta, err := readMetadata(resp.Body)
	if err != nil {
		x.logger.Debug("metadata unavailable", "url", rawURL, "error", err)
	}
	fillFromJSONLD(&meta, doc)
	art := &Article{
		URL:       rawURL,
		Title:     meta.Title,
		Published: meta.Published,
		Canonical: meta.Canonical,
	}

	selectors := contentSelectors
	if parser.KindForURL(rawURL) == parser.KindRIA {
		selectors = riaContentSelectors
	}

	text, selector := ContentText(doc, selectors)
	if selector == "" {
		text = x.readable(resp)
		selector = "readability"
	}
	art.Text = text

	x.logger.Debug("article extracted", "url", rawURL, "container", selector, "length", len(text))
	return art, nil
}

// FullText returns the formatted text of an article, or "" when it cannot
// be extracted.
func (x *Extractor) FullText(ctx context.Context, rawURL string) string {
	art, err := x.Fetch(ctx, rawURL)
	if err != nil {
		x.logger.Warn("full text unavailable", "url", rawURL, "error", err)
		return ""
	}
	return art.Text
}

// Preview returns a teaser of the article text, or "" when there is no text.
func (x *Extractor) Preview(ctx context.Context, rawURL string, length int) string {
	text := x.FullText(ctx, rawURL)
	if text == "" {
		return ""
	}
	return Preview(text, length)
}

// fetch uses a static GET; pages of sources other than RIA fall back to a
// rendered fetch when it fails.
func (x *Extractor) fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	resp, err := x.static.Fetch(ctx, req)
	if err == nil && !resp.IsSuccess() {
		err = &types.FetchError{URL: req.URLString(), StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	if err == nil {
		return resp, nil
	}
	if parser.KindForURL(req.URLString()) == parser.KindRIA || x.rendered == nil {
		return nil, err
	}

	x.logger.Debug("static fetch failed, rendering", "url", req.URLString(), "error", err)
	defer func() {
		if cerr := x.rendered.Close(); cerr != nil {
			x.logger.Warn("failed to release browser", "error", cerr)
		}
	}()
	return x.rendered.Fetch(ctx, req)
}

// ContentText locates the first matching content container, strips noise
// and formats it. It returns the selector that matched, or "" when none did.
func ContentText(doc *goquery.Document, selectors []string) (string, string) {
	for _, sel := range selectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		container.Find(noiseSelector).Remove()
		return FormatText(container), sel
	}
	return "", ""
}

// readable falls back to readability scoring when no container matched.
func (x *Extractor) readable(resp *types.Response) string {
	art, err := readability.FromReader(bytes.NewReader(resp.Body), resp.Request.URL)
	if err != nil {
		x.logger.Debug("readability failed", "url", resp.Request.URLString(), "error", err)
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(art.Content))
	if err != nil {
		return strings.TrimSpace(art.TextContent)
	}
	return FormatText(doc.Find("body"))
}
