package article

import (
	"bytes"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// metadata is what an article page declares about itself.
type metadata struct {
	Title     string
	Published string
	Canonical string
}

// XPath candidates, most specific first.
var (
	titlePaths = []string{
		`//meta[@property='og:title']/@content`,
		`//h1`,
		`//title`,
	}
	publishedPaths = []string{
		`//meta[@property='article:published_time']/@content`,
		`//meta[@itemprop='datePublished']/@content`,
		`//time[@datetime]/@datetime`,
	}
	canonicalPaths = []string{
		`//link[@rel='canonical']/@href`,
		`//meta[@property='og:url']/@content`,
	}
)

func readMetadata(body []byte) (metadata, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return metadata{}, err
	}
	return metadata{
		Title:     firstValue(doc, titlePaths),
		Published: firstValue(doc, publishedPaths),
		Canonical: firstValue(doc, canonicalPaths),
	}, nil
}

func firstValue(doc *html.Node, paths []string) string {
	for _, expr := range paths {
		node, err := htmlquery.Query(doc, expr)
		if err != nil || node == nil {
			continue
		}
		if v := strings.Join(strings.Fields(htmlquery.InnerText(node)), " "); v != "" {
			return v
		}
	}
	return ""
}
