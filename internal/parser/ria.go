package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hhton/newscascade/internal/types"
)

const riaMinTitle = 10

var (
	riaItemSelectors  = []string{".cell-list__item", ".list-item", ".news-item", `[data-type="news"]`}
	riaTitleSelectors = []string{".cell-list__item-title", ".list-item__title", "h2", "h3", ".news-item__title"}
	riaDateSelectors  = []string{".cell-info__date", `[data-type="date"]`, ".list-item__info"}
)

// riaAdapter reads RIA listing pages. It is the most lenient adapter: items
// from every selector are collected and repeated links are dropped.
type riaAdapter struct{}

func (riaAdapter) Kind() Kind { return KindRIA }

func (riaAdapter) ItemSelectors() []string { return riaItemSelectors }

func (riaAdapter) policy() scanPolicy {
	return scanPolicy{accumulate: true, uniqueLinks: true}
}

func (riaAdapter) Title(item *goquery.Selection) (string, error) {
	node := item
	for _, sel := range riaTitleSelectors {
		if found := item.Find(sel).First(); found.Length() > 0 {
			node = found
			break
		}
	}
	title := cleanText(node.Text())
	if runeLen(title) < riaMinTitle {
		return "", errNoTitle
	}
	return title, nil
}

func (riaAdapter) Link(item *goquery.Selection, _ *url.URL) (string, error) {
	href := firstAttr(item, "href")
	if href == "" {
		href = firstAttr(item.Find("a[href]").First(), "href")
	}
	link := NormalizeURL(href, KindRIA.BaseURL())
	if link == "" {
		return "", errNoLink
	}
	return link, nil
}

// DateTime parses labels such as "12.03.2025, 14:30", "14:30" or "12 марта".
func (riaAdapter) DateTime(item *goquery.Selection, today string) (string, string) {
	var label *goquery.Selection
	for _, sel := range riaDateSelectors {
		if found := item.Find(sel).First(); found.Length() > 0 {
			label = found
			break
		}
	}
	if label == nil {
		return today, ""
	}
	return ParseDateLabel(strings.TrimSpace(label.Text()), today)
}

// ParseDateLabel splits a listing date label into date and clock parts.
// A time without a date means the item is from today.
func ParseDateLabel(text, today string) (date, clock string) {
	if before, after, ok := strings.Cut(text, ","); ok {
		date = strings.TrimSpace(before)
		clock = ExtractTime(strings.TrimSpace(after))
	} else if strings.Contains(text, ":") {
		clock = ExtractTime(text)
		if clock != "" {
			date = types.TodayLabel
		}
	} else {
		date = text
	}

	if clock != "" && date == "" {
		date = types.TodayLabel
	}
	if date == "" {
		date = today
	}
	return date, clock
}

func (riaAdapter) Image(item *goquery.Selection, _ *url.URL) string {
	image := firstAttr(item.Find(".cell-list__item-img img").First(), "src", "data-src")
	if image == "" {
		image = firstAttr(item.Find("img").First(), "src", "data-src")
	}
	if image == "" {
		style := firstAttr(item.Find(`[style*="background-image"]`).First(), "style")
		image = backgroundImage(style)
	}
	if image == "" {
		return ""
	}
	return NormalizeURL(image, KindRIA.BaseURL())
}

// backgroundImage pulls the url(...) value out of an inline style.
func backgroundImage(style string) string {
	start := strings.Index(style, "url(")
	if start < 0 {
		return ""
	}
	rest := style[start+len("url("):]
	end := strings.Index(rest, ")")
	if end < 0 {
		return ""
	}
	return strings.Trim(rest[:end], `"' `)
}
