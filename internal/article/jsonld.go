package article

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// articleTypes are the schema.org types that describe a news story.
var articleTypes = map[string]bool{
	"NewsArticle":   true,
	"Article":       true,
	"ReportageNews": true,
	"BlogPosting":   true,
}

// readJSONLD collects the schema.org article objects declared in
// <script type="application/ld+json"> blocks, flattening arrays and @graph.
func readJSONLD(doc *goquery.Document) []map[string]any {
	var objects []map[string]any

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			objects = append(objects, data)
			if graph, ok := data["@graph"].([]any); ok {
				for _, g := range graph {
					if m, ok := g.(map[string]any); ok {
						objects = append(objects, m)
					}
				}
			}
			return
		}

		var dataArr []map[string]any
		if err := json.Unmarshal([]byte(raw), &dataArr); err == nil {
			objects = append(objects, dataArr...)
		}
	})

	var out []map[string]any
	for _, obj := range objects {
		if isArticleType(obj["@type"]) {
			out = append(out, obj)
		}
	}
	return out
}

func isArticleType(v any) bool {
	switch t := v.(type) {
	case string:
		return articleTypes[t]
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}

// fillFromJSONLD completes missing metadata from the first article object.
func fillFromJSONLD(meta *metadata, doc *goquery.Document) {
	objs := readJSONLD(doc)
	if len(objs) == 0 {
		return
	}
	obj := objs[0]
	if meta.Title == "" {
		meta.Title = stringField(obj, "headline")
	}
	if meta.Published == "" {
		meta.Published = stringField(obj, "datePublished")
	}
	if meta.Canonical == "" {
		meta.Canonical = stringField(obj, "url")
		if meta.Canonical == "" {
			if page, ok := obj["mainEntityOfPage"].(map[string]any); ok {
				meta.Canonical = stringField(page, "@id")
			}
		}
	}
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}
