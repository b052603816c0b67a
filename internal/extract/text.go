package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Blockquote: true,
	atom.Dd:         true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Figcaption: true,
	atom.Figure:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Td:         true,
	atom.Th:         true,
	atom.Tr:         true,
	atom.Ul:         true,
}

// visibleText approximates innerText: block elements and <br> break lines,
// so adjacent paragraphs do not run into each other.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}

	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Template || hasAttr(n, "hidden") {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}

	if block {
		b.WriteByte('\n')
	}
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return true
		}
	}

	return false
}

// normalizeWhitespace collapses every whitespace run, newlines included, to
// a single space. Runs of blank lines therefore never survive.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
