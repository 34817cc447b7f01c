package article

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultPreviewLength is the preview size used when none is given.
const DefaultPreviewLength = 300

// substantiveLength is the rune count a line must exceed to start a preview.
const substantiveLength = 50

var tocIndicators = []string{
	"оглавление", "содержание", "содержит", "в статье",
	"читайте также", "table of contents", "toc",
	"введение", "заголовок", "раздел", "часть", "глава",
}

var tocPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\s`),
	regexp.MustCompile(`^[ivx]+\.\s`),
	regexp.MustCompile(`^раздел\s+\d+`),
	regexp.MustCompile(`^часть\s+\d+`),
	regexp.MustCompile(`^глава\s+\d+`),
}

// IsTableOfContents reports whether text looks like a table-of-contents
// entry. Short lines never do.
func IsTableOfContents(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(lower) < substantiveLength {
		return false
	}
	for _, ind := range tocIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	first, _, _ := strings.Cut(lower, "\n")
	for _, p := range tocPatterns {
		if p.MatchString(first) {
			return true
		}
	}
	return false
}

// Preview builds a single-paragraph teaser of at most length runes plus an
// ellipsis. Leading lines are skipped until the first substantive one.
func Preview(text string, length int) string {
	if length <= 0 {
		length = DefaultPreviewLength
	}

	var all, kept []string
	skipping := true
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		all = append(all, line)

		if skipping {
			if IsTableOfContents(line) || utf8.RuneCountInString(line) <= substantiveLength {
				continue
			}
			skipping = false
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		kept = all
	}

	preview := []rune(strings.Join(kept, " "))
	if len(preview) <= length {
		return string(preview)
	}

	preview = preview[:length]
	if last := lastSpace(preview); float64(last) > float64(length)*0.7 {
		preview = preview[:last]
	}
	return string(preview) + "..."
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}
