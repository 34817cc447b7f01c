package parser

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleLength is the rune limit past which titles are clamped.
const MaxTitleLength = 100

// NormalizeURL turns a raw href into an absolute URL against base
// (scheme+host). Empty and javascript: links yield "".
func NormalizeURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "javascript:") {
		return ""
	}

	var abs string
	switch {
	case strings.HasPrefix(raw, "//"):
		abs = "https:" + raw
	case strings.HasPrefix(raw, "/"):
		abs = base + raw
	case !strings.HasPrefix(raw, "http"):
		abs = base + "/" + raw
	default:
		abs = raw
	}

	if !isAbsolute(abs) {
		return ""
	}
	return abs
}

// resolveAgainst resolves href relative to the page it appeared on.
func resolveAgainst(page *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := page.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func isAbsolute(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ClampTitle cuts titles longer than MaxTitleLength runes and marks the cut with "...".
func ClampTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}
	return string([]rune(title)[:MaxTitleLength]) + "..."
}

// ExtractTime scans a label for a clock value: leading digits, a colon and
// at most two more digits. Scanning stops at the first other character.
func ExtractTime(text string) string {
	var b strings.Builder
	colon := false
	after := 0
	for _, r := range text {
		switch {
		case r == ':':
			colon = true
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if colon {
				after++
				if after > 2 {
					return b.String()
				}
			}
			b.WriteRune(r)
		default:
			return b.String()
		}
	}
	return b.String()
}

// cleanText trims and collapses inner whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
