package parser

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hhton/newscascade/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var fixedNow = func() time.Time { return time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC) }

func makeResp(url, body string) *types.Response {
	req, _ := types.NewRequest(url)
	return &types.Response{
		Request:     req,
		StatusCode:  200,
		Body:        []byte(body),
		ContentType: "text/html",
		FinalURL:    url,
	}
}

func newTestParser() *Parser {
	return New(testLogger, WithClock(fixedNow))
}

// --- Source kinds ---

func TestKindForHost(t *testing.T) {
	tests := []struct {
		host string
		want Kind
	}{
		{"ria.ru", KindRIA},
		{"RIA.ru", KindRIA},
		{"tass.ru", KindTASS},
		{"www.interfax.ru", KindInterfax},
		{"doctorpiter.ru", KindDoctorPiter},
		{"gloria.ru", KindGeneric},
		{"example.com", KindGeneric},
	}
	for _, tt := range tests {
		if got := KindForHost(tt.host); got != tt.want {
			t.Errorf("KindForHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestSourceName(t *testing.T) {
	tests := map[string]string{
		"https://ria.ru/politics/":       "RIA.ru",
		"https://tass.ru/rss/v2.xml":     "TASS",
		"https://www.interfax.ru/rss.asp": "Интерфакс",
		"https://doctorpiter.ru/rss/":    "Доктор Питер",
		"https://lenta.ru/rss":           "lenta.ru",
		"not a url":                      "Unknown",
	}
	for in, want := range tests {
		if got := SourceName(in); got != want {
			t.Errorf("SourceName(%q) = %q, want %q", in, got, want)
		}
	}
}

// --- Normalization helpers ---

func TestNormalizeURL(t *testing.T) {
	base := "https://tass.ru"
	tests := []struct {
		in, want string
	}{
		{"//cdn.tass.ru/a.jpg", "https://cdn.tass.ru/a.jpg"},
		{"/politika/123", "https://tass.ru/politika/123"},
		{"politika/123", "https://tass.ru/politika/123"},
		{"https://tass.ru/x", "https://tass.ru/x"},
		{"javascript:void(0)", ""},
		{"", ""},
		{"  /spaced  ", "https://tass.ru/spaced"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in, base); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractTime(t *testing.T) {
	tests := map[string]string{
		"14:30":         "14:30",
		"14:305":        "14:30",
		"9:05 мск":      "9:05",
		"вчера":         "",
		"12:3":          "12:3",
		"14:30, 12.03":  "14:30",
	}
	for in, want := range tests {
		if got := ExtractTime(in); got != want {
			t.Errorf("ExtractTime(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDateLabel(t *testing.T) {
	today := "12.03.2025"
	tests := []struct {
		in, date, clock string
	}{
		{"11.03.2025, 14:30", "11.03.2025", "14:30"},
		{"14:30", types.TodayLabel, "14:30"},
		{"11 марта", "11 марта", ""},
		{"", today, ""},
		{", 08:15", types.TodayLabel, "08:15"},
	}
	for _, tt := range tests {
		date, clock := ParseDateLabel(tt.in, today)
		if date != tt.date || clock != tt.clock {
			t.Errorf("ParseDateLabel(%q) = (%q, %q), want (%q, %q)", tt.in, date, clock, tt.date, tt.clock)
		}
	}
}

func TestClampTitle(t *testing.T) {
	long := strings.Repeat("я", 150)
	got := ClampTitle(long)
	if n := runeLen(got); n != MaxTitleLength+3 {
		t.Errorf("expected %d runes, got %d", MaxTitleLength+3, n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis")
	}
	if ClampTitle("short") != "short" {
		t.Error("short titles must be untouched")
	}
}

// --- RIA adapter ---

const riaHTML = `<html><body>
<div class="list">
  <div class="list-item">
    <a class="list-item__title" href="/20250312/politika-1.html">Совет Федерации одобрил новый закон о выборах</a>
    <div class="list-item__info">12.03.2025, 14:30</div>
    <div class="cell-list__item-img"><img src="//cdn.ria.ru/img/1.jpg"></div>
  </div>
  <div class="list-item">
    <a class="list-item__title" href="/20250312/politika-2.html">Коротко</a>
  </div>
  <div class="list-item">
    <a class="list-item__title" href="https://ria.ru/20250312/politika-3.html">Министр провёл переговоры с коллегами</a>
    <div class="list-item__info">09:15</div>
    <div style="background-image: url('/img/bg.jpg')"></div>
  </div>
</div>
<div class="news-item">
  <h3>Повтор уже найденной новости из списка</h3>
  <a href="/20250312/politika-1.html">ещё раз</a>
</div>
<div class="news-item">
  <h3>Новость без ссылки, которую надо пропустить</h3>
</div>
</body></html>`

func TestRIAAdapter(t *testing.T) {
	p := newTestParser()
	records := p.Dispatch(makeResp("https://ria.ru/politics/", riaHTML))

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Link != "https://ria.ru/20250312/politika-1.html" {
		t.Errorf("unexpected link %q", first.Link)
	}
	if first.Date != "12.03.2025" || first.Time != "14:30" {
		t.Errorf("unexpected date/time %q %q", first.Date, first.Time)
	}
	if first.Image != "https://cdn.ria.ru/img/1.jpg" {
		t.Errorf("unexpected image %q", first.Image)
	}
	if first.Source != "RIA.ru" {
		t.Errorf("unexpected source %q", first.Source)
	}

	second := records[1]
	if second.Date != types.TodayLabel || second.Time != "09:15" {
		t.Errorf("unexpected date/time %q %q", second.Date, second.Time)
	}
	if second.Image != "https://ria.ru/img/bg.jpg" {
		t.Errorf("unexpected background image %q", second.Image)
	}
}

func TestRIANoDateLabelUsesToday(t *testing.T) {
	html := `<div class="cell-list__item"><a href="/a.html"><span class="cell-list__item-title">Длинный заголовок новости</span></a></div>`
	records := newTestParser().Dispatch(makeResp("https://ria.ru/science/", html))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Date != "12.03.2025" || records[0].Time != "" {
		t.Errorf("expected today's date, got %q %q", records[0].Date, records[0].Time)
	}
}

// --- Listing adapters ---

func TestTASSStopsAtFirstProductiveSelector(t *testing.T) {
	html := `<html><body>
<div class="news-line__item"><a href="/politika/1"><span class="news-line__title">Первая новость</span></a><img data-src="/img/1.jpg"></div>
<div class="news-line__item"><a href="/politika/2"><span class="news-line__title">abc</span></a></div>
<article><h2>Статья из другого блока</h2><a href="/politika/3">x</a></article>
</body></html>`

	records := newTestParser().Dispatch(makeResp("https://tass.ru/politika", html))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(records), records)
	}
	r := records[0]
	if r.Link != "https://tass.ru/politika/1" || r.Source != "TASS" {
		t.Errorf("unexpected record %+v", r)
	}
	if r.Image != "https://tass.ru/img/1.jpg" {
		t.Errorf("unexpected image %q", r.Image)
	}
	if r.Date != "12.03.2025" || r.Time != "" {
		t.Errorf("unexpected date/time %q %q", r.Date, r.Time)
	}
}

func TestTASSCapsItemsPerSelector(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<div class="news-list__item"><a href="/n/%d">Новость номер %d</a></div>`, i, i)
	}
	records := newTestParser().Dispatch(makeResp("https://tass.ru/nauka", b.String()))
	if len(records) != 20 {
		t.Errorf("expected 20 records, got %d", len(records))
	}
}

func TestInterfaxRequiresDomainAndFiveRecords(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div class="newsList">`)
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, `<div class="newsItem"><a href="/politics/%d"><h3>Заголовок новости Интерфакс %d</h3></a></div>`, i, i)
	}
	b.WriteString(`<div class="newsItem"><a href="https://other.example/x"><h3>Чужая ссылка в ленте новостей</h3></a></div>`)
	b.WriteString(`</div>`)
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, `<article><a href="/politics/a%d"><h4>Статья Интерфакс номер %d</h4></a></article>`, i, i)
	}
	b.WriteString(`<div class="news"><a href="/politics/never"><h4>Сюда сканирование не дойдёт</h4></a></div>`)

	records := newTestParser().Dispatch(makeResp("https://www.interfax.ru/politics/", b.String()))
	if len(records) != 7 {
		t.Fatalf("expected 7 records, got %d", len(records))
	}
	for _, r := range records {
		if !strings.HasPrefix(r.Link, "https://www.interfax.ru/") {
			t.Errorf("off-domain link leaked: %q", r.Link)
		}
		if r.Source != "Интерфакс" {
			t.Errorf("unexpected source %q", r.Source)
		}
	}
}

func TestDoctorPiterTitleBounds(t *testing.T) {
	long := strings.Repeat("слово ", 60)
	html := `<div class="news-item"><a href="/news/1"><span class="news-item__title">` + long + `</span></a></div>
<div class="news-item"><a href="/news/2"><span class="news-item__title">Врачи рассказали о пользе сна</span></a></div>`

	records := newTestParser().Dispatch(makeResp("https://doctorpiter.ru/news/", html))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Link != "https://doctorpiter.ru/news/2" {
		t.Errorf("unexpected link %q", records[0].Link)
	}
}

// --- Generic adapter ---

func TestGenericAdapter(t *testing.T) {
	html := `<html><body>
<div class="card"><h2>Новость обычного сайта</h2><a href="story/1">читать</a><img src="/i/1.png"></div>
<div class="card"><h2>Скрипт</h2><a href="javascript:alert(1)">x</a></div>
<div class="card"><h2>` + strings.Repeat("длинно ", 30) + `</h2><a href="https://example.org/long">x</a></div>
</body></html>`

	records := newTestParser().Dispatch(makeResp("https://example.org/news/", html))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Link != "https://example.org/news/story/1" {
		t.Errorf("unexpected relative resolution %q", records[0].Link)
	}
	if records[0].Image != "https://example.org/i/1.png" {
		t.Errorf("unexpected image %q", records[0].Image)
	}
	if records[0].Source != "example.org" {
		t.Errorf("unexpected source %q", records[0].Source)
	}
	if n := runeLen(records[1].Title); n != MaxTitleLength+3 {
		t.Errorf("expected clamped title, got %d runes", n)
	}
}

func TestExtractedLinksAreAbsolute(t *testing.T) {
	p := newTestParser()
	pages := map[string]string{
		"https://ria.ru/politics/":   riaHTML,
		"https://example.org/news/": `<article><h2>Заголовок статьи</h2><a href="/a">x</a></article>`,
	}
	for u, html := range pages {
		for _, r := range p.Dispatch(makeResp(u, html)) {
			if !r.HasAbsoluteLink() {
				t.Errorf("%s: link %q is not absolute", u, r.Link)
			}
		}
	}
}

func TestEmptyBodyYieldsNothing(t *testing.T) {
	if got := newTestParser().Dispatch(makeResp("https://tass.ru/", "")); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
