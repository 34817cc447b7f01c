package article

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	blankRuns  = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// FormatText renders a content container as plain text. Headings are
// surrounded by blank lines, paragraphs are followed by one, list items and
// text-only divs end their line.
func FormatText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeNode(&b, n)
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	text := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(whitespace.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode:
	case html.DocumentNode:
		writeChildren(b, n)
		return
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript:
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		b.WriteString("\n\n")
		writeChildren(b, n)
		b.WriteString("\n\n")
	case atom.P:
		writeChildren(b, n)
		b.WriteString("\n\n")
	case atom.Ul, atom.Ol, atom.Li:
		writeChildren(b, n)
		b.WriteString("\n")
	case atom.Br:
		b.WriteString("\n")
	case atom.Div:
		writeChildren(b, n)
		if isTextLeaf(n) {
			b.WriteString("\n")
		}
	default:
		writeChildren(b, n)
	}
}

func writeChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
}

// isTextLeaf reports whether a div carries text and no block-level descendants.
func isTextLeaf(n *html.Node) bool {
	hasText := false
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if strings.TrimSpace(c.Data) != "" {
					hasText = true
				}
			case html.ElementNode:
				switch c.DataAtom {
				case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Ul, atom.Ol:
					return false
				}
				if !walk(c) {
					return false
				}
			}
		}
		return true
	}
	return walk(n) && hasText
}
