package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hhton/newscascade/internal/config"
	"github.com/hhton/newscascade/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type stubFetcher struct {
	body string
	err  error
}

func (s *stubFetcher) Fetch(_ context.Context, req *types.Request) (*types.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.Response{Request: req, StatusCode: 200, Body: []byte(s.body)}, nil
}

func (s *stubFetcher) Close() error { return nil }
func (s *stubFetcher) Type() string { return "stub" }

func newTestReader(body string, err error) *Reader {
	r := NewReader(&stubFetcher{body: body, err: err}, config.DefaultConfig().Feed, testLogger)
	r.now = func() time.Time { return time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC) }
	return r
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>TASS</title>
  <item>
    <title>Первая новость ленты</title>
    <link>https://tass.ru/politika/1</link>
    <pubDate>Wed, 12 Mar 2025 14:30:00 +0000</pubDate>
    <enclosure url="https://tass.ru/img/1.jpg" type="image/jpeg" length="100"/>
    <description>Короткое описание</description>
  </item>
  <item>
    <title>Вторая новость ленты</title>
    <link>/politika/2</link>
    <media:thumbnail url="https://tass.ru/img/2-thumb.jpg"/>
  </item>
  <item>
    <title></title>
    <link>https://tass.ru/politika/3</link>
  </item>
</channel>
</rss>`

func TestParseEntries(t *testing.T) {
	r := newTestReader("", nil)
	records := r.Parse("https://tass.ru/rss/v2.xml", []byte(sampleRSS))

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Date != "12.03.2025" || first.Time != "14:30" {
		t.Errorf("unexpected date/time %q %q", first.Date, first.Time)
	}
	if first.Image != "https://tass.ru/img/1.jpg" {
		t.Errorf("unexpected enclosure image %q", first.Image)
	}
	if first.Source != "TASS" {
		t.Errorf("unexpected source %q", first.Source)
	}
	if first.Description != "Короткое описание" {
		t.Errorf("unexpected description %q", first.Description)
	}

	second := records[1]
	if second.Link != "https://tass.ru/politika/2" {
		t.Errorf("expected resolved link, got %q", second.Link)
	}
	if second.Image != "https://tass.ru/img/2-thumb.jpg" {
		t.Errorf("unexpected thumbnail image %q", second.Image)
	}
	if second.Date != "12.03.2025" || second.Time != "" {
		t.Errorf("expected today's date without time, got %q %q", second.Date, second.Time)
	}
}

func TestEmptyFeedIsNotAnError(t *testing.T) {
	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`
	for name, body := range map[string]string{"no entries": empty, "blank": "", "garbage": "<<<"} {
		t.Run(name, func(t *testing.T) {
			got := newTestReader(body, nil).Extract(context.Background(), "https://doctorpiter.ru/rss/")
			if len(got) != 0 {
				t.Errorf("expected no records, got %d", len(got))
			}
		})
	}
}

func TestFetchFailureYieldsNothing(t *testing.T) {
	r := newTestReader("", errors.New("connection refused"))
	if got := r.Extract(context.Background(), "https://www.interfax.ru/rss.asp"); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestEntryCapAndDescriptionTruncation(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>`)
	long := strings.Repeat("д", 250)
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<item><title>Новость %d</title><link>https://www.interfax.ru/n/%d</link><description>%s</description><updated>2025-03-10T08:00:00Z</updated></item>`, i, i, long)
	}
	b.WriteString(`</channel></rss>`)

	records := newTestReader(b.String(), nil).Extract(context.Background(), "https://www.interfax.ru/rss.asp")
	if len(records) != 20 {
		t.Fatalf("expected 20 records, got %d", len(records))
	}
	d := records[0].Description
	if !strings.HasSuffix(d, "...") || len([]rune(d)) != 203 {
		t.Errorf("unexpected description length %d", len([]rune(d)))
	}
	if records[0].Source != "Интерфакс" {
		t.Errorf("unexpected source %q", records[0].Source)
	}
}

func TestDescriptionMarkupStrippedBeforeTruncation(t *testing.T) {
	src := "https://cdn.example.ru/" + strings.Repeat("a", 190) + ".jpg"
	rss := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>
<item><title>Новость с картинкой</title><link>https://doctorpiter.ru/news/1</link>
<description><![CDATA[<p><img src="` + src + `"/>Суть новости &amp; коротко</p>]]></description></item>
</channel></rss>`

	records := newTestReader("", nil).Parse("https://doctorpiter.ru/rss/", []byte(rss))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].Description; got != "Суть новости & коротко" {
		t.Errorf("unexpected description %q", got)
	}
}

func TestAtomEntryDate(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example</title>
  <entry>
    <title>Atom запись</title>
    <link href="https://example.org/a/1"/>
    <updated>2025-03-10T08:00:00Z</updated>
  </entry>
</feed>`
	records := newTestReader("", nil).Parse("https://example.org/feed", []byte(atom))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Date != "10.03.2025" {
		t.Errorf("unexpected date %q", records[0].Date)
	}
	if records[0].Source != "example.org" {
		t.Errorf("unexpected source %q", records[0].Source)
	}
}
