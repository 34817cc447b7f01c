package article

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/hhton/newscascade/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeFetcher struct {
	pages  map[string]string
	calls  int
	closed int
}

func (f *fakeFetcher) Fetch(_ context.Context, req *types.Request) (*types.Response, error) {
	f.calls++
	body, ok := f.pages[req.URLString()]
	if !ok {
		return nil, &types.FetchError{URL: req.URLString(), Err: errors.New("unreachable")}
	}
	return &types.Response{Request: req, StatusCode: 200, Body: []byte(body), FinalURL: req.URLString()}, nil
}

func (f *fakeFetcher) Close() error { f.closed++; return nil }
func (f *fakeFetcher) Type() string { return "fake" }

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

// --- Preview Tests ---

func TestPreviewSkipsLeadingTOC(t *testing.T) {
	text := "Введение\n\nЭто первая содержательная строка новости, которая точно длиннее пятидесяти символов. Вторая строка."
	got := Preview(text, 50)
	if !strings.HasPrefix(got, "Это первая") {
		t.Errorf("expected preview to start with the first substantive line, got %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := len([]rune(got)); n > 53 {
		t.Errorf("preview too long: %d runes", n)
	}
}

func TestPreviewShortTextUntouched(t *testing.T) {
	if got := Preview("Коротко.\nЕщё строка.", 300); got != "Коротко. Ещё строка." {
		t.Errorf("expected all lines joined, got %q", got)
	}
}

func TestPreviewHardCutWithoutLateSpace(t *testing.T) {
	text := strings.Repeat("б", 80)
	got := Preview(text, 40)
	if got != strings.Repeat("б", 40)+"..." {
		t.Errorf("unexpected hard cut %q", got)
	}
}

func TestPreviewDefaultLength(t *testing.T) {
	text := strings.Repeat("слово ", 100)
	got := Preview(text, 0)
	if n := len([]rune(got)); n > DefaultPreviewLength+3 {
		t.Errorf("expected default length cap, got %d runes", n)
	}
}

func TestIsTableOfContents(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Содержание", false},
		{"Содержание статьи: как врачи лечат простуду и почему это важно знать", true},
		{"1. Первый пункт очень длинного оглавления для проверки шаблона", true},
		{"Глава 3 про то, как устроена работа больших новостных агентств", true},
		{"Обычная длинная строка текста новости без всяких особых признаков.", false},
	}
	for _, tt := range tests {
		if got := IsTableOfContents(tt.line); got != tt.want {
			t.Errorf("IsTableOfContents(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

// --- Formatting Tests ---

func TestFormatText(t *testing.T) {
	d := doc(t, `<div class="article__body">
  <h2>Заголовок</h2>
  <p>Первый   абзац
     текста.</p>
  <p>Второй абзац.</p>
  <ul><li>один</li><li>два</li></ul>
  <div class="article__text">Строка в блоке</div>
</div>`)

	got := FormatText(d.Find("div.article__body"))
	want := "Заголовок\n\nПервый абзац текста.\n\nВторой абзац.\n\nодин\nдва\n\nСтрока в блоке"
	if got != want {
		t.Errorf("FormatText mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestContentTextStripsNoise(t *testing.T) {
	d := doc(t, `<html><body>
<div class="article-text">
  <p>Основной текст статьи.</p>
  <div class="share">Поделиться</div>
  <script>var x = 1;</script>
  <div class="comments">Комментарии</div>
</div>
</body></html>`)

	text, sel := ContentText(d, contentSelectors)
	if sel != "div.article-text" {
		t.Errorf("unexpected container %q", sel)
	}
	if text != "Основной текст статьи." {
		t.Errorf("unexpected text %q", text)
	}
}

// --- Extractor Tests ---

const articlePage = `<html><head>
<title>Fallback title</title>
<meta property="og:title" content="Заголовок статьи">
<meta property="article:published_time" content="2025-03-12T10:00:00+03:00">
<link rel="canonical" href="https://tass.ru/politika/1">
</head><body>
<div class="article-text"><p>Текст статьи.</p></div>
</body></html>`

func TestExtractorMetadata(t *testing.T) {
	u := "https://tass.ru/politika/1"
	x := NewExtractor(&fakeFetcher{pages: map[string]string{u: articlePage}}, &fakeFetcher{}, testLogger)

	art, err := x.Fetch(context.Background(), u)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if art.Title != "Заголовок статьи" {
		t.Errorf("unexpected title %q", art.Title)
	}
	if art.Published != "2025-03-12T10:00:00+03:00" {
		t.Errorf("unexpected published %q", art.Published)
	}
	if art.Canonical != u {
		t.Errorf("unexpected canonical %q", art.Canonical)
	}
	if art.Text != "Текст статьи." {
		t.Errorf("unexpected text %q", art.Text)
	}
}

const jsonLDPage = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[
 {"@type":"WebSite","name":"Доктор Питер"},
 {"@type":"NewsArticle","headline":"Врачи назвали причины","datePublished":"2025-03-12T09:30:00+03:00",
  "mainEntityOfPage":{"@type":"WebPage","@id":"https://doctorpiter.ru/news/1"}}
]}</script>
</head><body>
<div class="article-text"><p>Текст новости.</p></div>
</body></html>`

func TestExtractorJSONLDMetadata(t *testing.T) {
	u := "https://doctorpiter.ru/news/1?utm=x"
	x := NewExtractor(&fakeFetcher{pages: map[string]string{u: jsonLDPage}}, &fakeFetcher{}, testLogger)

	art, err := x.Fetch(context.Background(), u)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if art.Title != "Врачи назвали причины" {
		t.Errorf("unexpected title %q", art.Title)
	}
	if art.Published != "2025-03-12T09:30:00+03:00" {
		t.Errorf("unexpected published %q", art.Published)
	}
	if art.Canonical != "https://doctorpiter.ru/news/1" {
		t.Errorf("unexpected canonical %q", art.Canonical)
	}
	if art.Text != "Текст новости." {
		t.Errorf("unexpected text %q", art.Text)
	}
}

func TestReadJSONLDIgnoresOtherTypes(t *testing.T) {
	d := doc(t, `<script type="application/ld+json">[{"@type":"Organization","name":"x"},{"@type":["Thing","Article"],"headline":"h"}]</script>`)
	objs := readJSONLD(d)
	if len(objs) != 1 || objs[0]["headline"] != "h" {
		t.Errorf("unexpected objects: %v", objs)
	}
}

func TestExtractorRenderedFallback(t *testing.T) {
	u := "https://www.interfax.ru/politics/1"
	static := &fakeFetcher{}
	rendered := &fakeFetcher{pages: map[string]string{u: `<article><p>Из браузера.</p></article>`}}
	x := NewExtractor(static, rendered, testLogger)

	if got := x.FullText(context.Background(), u); got != "Из браузера." {
		t.Errorf("unexpected text %q", got)
	}
	if rendered.closed != 1 {
		t.Errorf("expected browser released, got %d", rendered.closed)
	}
}

func TestExtractorRIAStaticOnly(t *testing.T) {
	u := "https://ria.ru/20250312/politika-1.html"
	rendered := &fakeFetcher{pages: map[string]string{u: `<article><p>Не должно быть.</p></article>`}}
	x := NewExtractor(&fakeFetcher{}, rendered, testLogger)

	if got := x.FullText(context.Background(), u); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
	if rendered.calls != 0 {
		t.Error("RIA pages must not be rendered")
	}
}

func TestExtractorPreview(t *testing.T) {
	u := "https://doctorpiter.ru/news/1"
	page := `<div class="b-text"><p>Введение</p><p>Это первая содержательная строка новости, которая точно длиннее пятидесяти символов. Вторая строка.</p></div>`
	x := NewExtractor(&fakeFetcher{pages: map[string]string{u: page}}, nil, testLogger)

	got := x.Preview(context.Background(), u, 50)
	if !strings.HasPrefix(got, "Это первая") || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected preview %q", got)
	}
	if x.Preview(context.Background(), "https://doctorpiter.ru/missing", 50) != "" {
		t.Error("expected empty preview for unreachable article")
	}
}
