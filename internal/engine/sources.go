package engine

import (
	"github.com/hhton/newscascade/internal/parser"
	"github.com/hhton/newscascade/internal/types"
)

// SourceConfig is one configured source of a category.
type SourceConfig struct {
	URL    string       `json:"url"`
	Format types.Format `json:"format"`
}

// Key identifies the source in run statistics, e.g. "TASS_RSS".
func (s SourceConfig) Key() string {
	return parser.SourceName(s.URL) + "_" + string(s.Format)
}

var sourceTable = map[types.Category][]SourceConfig{
	types.Politics: {
		{URL: "https://ria.ru/politics/", Format: types.FormatHTML},
		{URL: "https://tass.ru/rss/v2.xml", Format: types.FormatRSS},
		{URL: "https://tass.ru/politika", Format: types.FormatHTML},
		{URL: "https://www.interfax.ru/rss.asp", Format: types.FormatRSS},
		{URL: "https://www.interfax.ru/politics/", Format: types.FormatHTML},
	},
	types.Science: {
		{URL: "https://ria.ru/science/", Format: types.FormatHTML},
		{URL: "https://tass.ru/rss/v2.xml", Format: types.FormatRSS},
		{URL: "https://tass.ru/nauka", Format: types.FormatHTML},
		{URL: "https://www.interfax.ru/rss.asp", Format: types.FormatRSS},
		{URL: "https://www.interfax.ru/science/", Format: types.FormatHTML},
	},
	types.Health: {
		{URL: "https://ria.ru/health/", Format: types.FormatHTML},
		{URL: "https://doctorpiter.ru/rss/", Format: types.FormatRSS},
		{URL: "https://doctorpiter.ru/news/", Format: types.FormatHTML},
		{URL: "https://www.interfax.ru/rss.asp", Format: types.FormatRSS},
		{URL: "https://www.interfax.ru/health/", Format: types.FormatHTML},
	},
}

// Sources returns a copy of the configured sources of a category.
func Sources(category types.Category) ([]SourceConfig, bool) {
	list, ok := sourceTable[category]
	if !ok {
		return nil, false
	}
	return append([]SourceConfig(nil), list...), true
}
