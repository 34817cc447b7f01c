package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/hhton/newscascade/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})

	rec := &types.NewsRecord{Title: "  Hello World  ", Link: " https://ria.ru/a.html\n"}

	result, err := p.Process(rec)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Title != "Hello World" {
		t.Errorf("expected trimmed title, got %q", result.Title)
	}
	if result.Link != "https://ria.ru/a.html" {
		t.Errorf("expected trimmed link, got %q", result.Link)
	}
}

func TestRequiredFieldsMiddleware(t *testing.T) {
	m := &RequiredFieldsMiddleware{}

	result, _ := m.Process(&types.NewsRecord{Title: "Hello", Link: "https://tass.ru/politika/1"})
	if result == nil {
		t.Error("complete record should pass")
	}

	result, _ = m.Process(&types.NewsRecord{Title: "Hello", Link: "/politika/1"})
	if result != nil {
		t.Error("relative link should be dropped")
	}

	result, _ = m.Process(&types.NewsRecord{Link: "https://tass.ru/politika/1"})
	if result != nil {
		t.Error("missing title should be dropped")
	}
}

func TestHTMLSanitizeMiddleware(t *testing.T) {
	m := NewHTMLSanitizeMiddleware()
	rec := &types.NewsRecord{
		Title:       "Plain title",
		Description: `<p>Hello <b>World</b></p> &amp; <a href="x">link</a>`,
	}

	result, err := m.Process(rec)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if result.Description != "Hello World & link" {
		t.Errorf("expected 'Hello World & link', got %q", result.Description)
	}
	if result.Title != "Plain title" {
		t.Errorf("title changed: %q", result.Title)
	}
}

func TestSourceDefaultMiddleware(t *testing.T) {
	m := &SourceDefaultMiddleware{}

	result, _ := m.Process(&types.NewsRecord{Link: "https://www.interfax.ru/russia/1"})
	if result.Source != "Интерфакс" {
		t.Errorf("expected Интерфакс, got %q", result.Source)
	}

	result, _ = m.Process(&types.NewsRecord{Link: "https://ria.ru/1", Source: "Custom"})
	if result.Source != "Custom" {
		t.Errorf("existing source overwritten: %q", result.Source)
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "failing" }

func (failingMiddleware) Process(*types.NewsRecord) (*types.NewsRecord, error) {
	return nil, errors.New("boom")
}

func TestPipelineError(t *testing.T) {
	p := New(testLogger)
	p.Use(failingMiddleware{})

	_, err := p.Process(&types.NewsRecord{Title: "x"})
	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Stage != "failing" {
		t.Errorf("stage = %q", pe.Stage)
	}
}

func TestDefaultApply(t *testing.T) {
	p := Default(testLogger)
	if p.Len() != 4 {
		t.Fatalf("expected 4 middleware, got %d", p.Len())
	}

	in := []types.NewsRecord{
		{Title: "  <b>Первая</b> новость ", Link: "https://ria.ru/20250312/a.html", Source: "RIA.ru"},
		{Title: "Без ссылки", Link: ""},
		{Title: "Вторая новость", Link: "https://example.org/news/2"},
	}

	out := p.Apply(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].Title != "Первая новость" {
		t.Errorf("title = %q", out[0].Title)
	}
	if out[1].Source != "example.org" {
		t.Errorf("source = %q", out[1].Source)
	}
	if in[0].Title != "  <b>Первая</b> новость " {
		t.Error("input slice was mutated")
	}
}
