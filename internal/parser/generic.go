package parser

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

var genericItemSelectors = []string{
	"article",
	".news-item",
	".item",
	".card",
	".post",
	`[class*="news"]`,
	`[class*="article"]`,
	".news",
}

const genericTitleSelector = `h1, h2, h3, h4, h5, .title, .heading, [class*="title"], [class*="heading"]`

// genericAdapter handles pages of unknown sources with broad heuristics.
// Relative links resolve against the page they were found on.
type genericAdapter struct{}

func (genericAdapter) Kind() Kind { return KindGeneric }

func (genericAdapter) ItemSelectors() []string { return genericItemSelectors }

func (genericAdapter) policy() scanPolicy {
	return scanPolicy{perSelector: 15, enough: 1}
}

func (genericAdapter) Title(item *goquery.Selection) (string, error) {
	node := item.Find(genericTitleSelector).First()
	if node.Length() == 0 {
		return "", errNoTitle
	}
	title := cleanText(node.Text())
	if n := runeLen(title); n < 5 || n > 500 {
		return "", errNoTitle
	}
	return title, nil
}

func (genericAdapter) Link(item *goquery.Selection, page *url.URL) (string, error) {
	anchor := item.Find("a[href]").First()
	if anchor.Length() == 0 {
		return "", errNoLink
	}
	link := resolveAgainst(page, firstAttr(anchor, "href"))
	if link == "" {
		return "", errNoLink
	}
	return link, nil
}

func (genericAdapter) Image(item *goquery.Selection, page *url.URL) string {
	src := firstAttr(item.Find("img").First(), "src")
	if src == "" {
		return ""
	}
	return resolveAgainst(page, src)
}

func (genericAdapter) DateTime(_ *goquery.Selection, today string) (string, string) {
	return today, ""
}
