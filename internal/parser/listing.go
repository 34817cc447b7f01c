package parser

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// listingAdapter covers the sources whose listings share one shape: a
// handful of candidate item selectors, a combined title selector and a list
// of image locations.
type listingAdapter struct {
	kind          Kind
	items         []string
	title         string
	minTitle      int
	maxTitle      int // 0 = unbounded
	images        []string
	requireDomain bool
	scan          scanPolicy
}

var tassAdapter = listingAdapter{
	kind: KindTASS,
	items: []string{
		".news-line__item",
		".news-list__item",
		".content-big-newslist__item",
		".b-material-list__item",
		"article",
	},
	title:    ".news-line__title, .news-list__title, .b-material-list__title, h2, h3, h4, a",
	minTitle: 5,
	images:   []string{"img", ".news-line__image img", ".b-material-list__image img", "[data-src]"},
	scan:     scanPolicy{perSelector: 20, enough: 1},
}

var interfaxAdapter = listingAdapter{
	kind: KindInterfax,
	items: []string{
		".newsPage__list .timeline__item",
		".newsList .newsItem",
		".main-newslist .news-item",
		".news-feed-list .news-feed-item",
		"article",
		".news",
	},
	title:    ".timeline__item-title, .newsItem__title, .news-item__title, h3, h4, .title, a",
	minTitle: 10,
	maxTitle: 300,
	images: []string{
		"img",
		".timeline__item-img img",
		".newsItem__image img",
		".news-item__image img",
		"[data-src]",
	},
	requireDomain: true,
	scan:          scanPolicy{perSelector: 20, enough: 5},
}

var doctorPiterAdapter = listingAdapter{
	kind: KindDoctorPiter,
	items: []string{
		".news-item",
		".article-preview",
		".news-list-item",
		".item-news",
		"article.news",
		".b-news-item",
	},
	title: ".news-item__title, .article-preview__title, .news-list-item__title, " +
		".item-news__title, h2, h3, h4, .title, a",
	minTitle: 10,
	maxTitle: 300,
	images: []string{
		"img",
		".news-item__image img",
		".article-preview__image img",
		".news-list-item__image img",
		".item-news__image img",
		"[data-src]",
	},
	requireDomain: true,
	scan:          scanPolicy{perSelector: 20, enough: 5},
}

func (a listingAdapter) Kind() Kind { return a.kind }

func (a listingAdapter) ItemSelectors() []string { return a.items }

func (a listingAdapter) policy() scanPolicy { return a.scan }

func (a listingAdapter) Title(item *goquery.Selection) (string, error) {
	node := item.Find(a.title).First()
	if node.Length() == 0 {
		return "", errNoTitle
	}
	title := cleanText(node.Text())
	n := runeLen(title)
	if n < a.minTitle || (a.maxTitle > 0 && n > a.maxTitle) {
		return "", errNoTitle
	}
	return title, nil
}

func (a listingAdapter) Link(item *goquery.Selection, _ *url.URL) (string, error) {
	anchor := item.Find("a[href]").First()
	if anchor.Length() == 0 {
		return "", errNoLink
	}
	link := NormalizeURL(firstAttr(anchor, "href"), a.kind.BaseURL())
	if link == "" {
		return "", errNoLink
	}
	if a.requireDomain && !onDomain(link, a.kind.Domain()) {
		return "", errOffDomain
	}
	return link, nil
}

func (a listingAdapter) Image(item *goquery.Selection, _ *url.URL) string {
	for _, sel := range a.images {
		node := item.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if src := firstAttr(node, "src", "data-src"); src != "" {
			return NormalizeURL(src, a.kind.BaseURL())
		}
	}
	return ""
}

func (listingAdapter) DateTime(_ *goquery.Selection, today string) (string, string) {
	return today, ""
}
