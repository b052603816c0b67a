package extract_test

import (
	"errors"
	"quickread/internal/extract"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

func paragraph(words int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", words))
}

func mustDocument(t *testing.T, page string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}

	return doc
}

func TestTextPrefersArticleAndDropsBoilerplate(t *testing.T) {
	page := `<html><head><title>Page</title></head><body>
		<nav>Navigation links</nav>
		<div class="sidebar">Sidebar junk</div>
		<article><h1>Heading</h1><p>` + paragraph(60) + `</p></article>
		<div>Outside the article</div>
		<footer>Footer text</footer>
	</body></html>`

	got, err := extract.Text(mustDocument(t, page).Selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(got, "Heading lorem") {
		t.Fatalf("expected article text, got %q", got)
	}

	for _, unwanted := range []string{"Navigation", "Sidebar", "Outside", "Footer"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("did not expect %q in %q", unwanted, got)
		}
	}
}

func TestTextFallsBackToBodyWhenMainContentIsShort(t *testing.T) {
	page := `<html><body>
		<main>Short main</main>
		<div>` + paragraph(40) + `</div>
	</body></html>`

	got, err := extract.Text(mustDocument(t, page).Selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(got, "Short main lorem") {
		t.Fatalf("expected whole body text, got %q", got)
	}
}

func TestTextProbesSelectorsInOrder(t *testing.T) {
	page := `<html><body>
		<div id="content">Content id ` + paragraph(50) + `</div>
		<div class="entry-content">Entry content ` + paragraph(50) + `</div>
	</body></html>`

	got, err := extract.Text(mustDocument(t, page).Selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(got, "Entry content") {
		t.Fatalf("expected .entry-content to win over #content, got %q", got[:30])
	}
}

func TestTextSeparatesBlocks(t *testing.T) {
	page := `<html><body><p>first` + "\t\t" + `block</p><p>second<br>line</p><div>` +
		paragraph(30) + `</div></body></html>`

	got, err := extract.Text(mustDocument(t, page).Selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(got, "first block second line lorem") {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextTruncatesLongContent(t *testing.T) {
	page := `<html><body><article>` + paragraph(5000) + `</article></body></html>`

	got, err := extract.Text(mustDocument(t, page).Selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := utf8.RuneCountInString(got); n != extract.MaxLength+len(extract.TruncationMarker) {
		t.Fatalf("expected %d characters, got %d", extract.MaxLength+3, n)
	}

	if !strings.HasSuffix(got, extract.TruncationMarker) {
		t.Fatalf("expected truncation marker suffix")
	}
}

func TestTextKeepsExactlyMaxLength(t *testing.T) {
	page := `<html><body><article>` + strings.Repeat("x", extract.MaxLength) + `</article></body></html>`

	got, err := extract.Text(mustDocument(t, page).Selection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.HasSuffix(got, extract.TruncationMarker) {
		t.Fatalf("did not expect truncation at exactly %d characters", extract.MaxLength)
	}
}

func TestTextInsufficientContent(t *testing.T) {
	page := `<html><body><p>Too short to summarize.</p></body></html>`

	_, err := extract.Text(mustDocument(t, page).Selection)
	if !errors.Is(err, extract.ErrInsufficientContent) {
		t.Fatalf("expected ErrInsufficientContent, got %v", err)
	}
}

func TestTextNoContent(t *testing.T) {
	page := `<html><body><script>var x = 1;</script><nav>menu</nav></body></html>`

	_, err := extract.Text(mustDocument(t, page).Selection)
	if !errors.Is(err, extract.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestTextDoesNotMutateDocument(t *testing.T) {
	page := `<html><body><nav>menu</nav><article>` + paragraph(60) + `</article></body></html>`
	doc := mustDocument(t, page)

	if _, err := extract.Text(doc.Selection); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Find("nav").Length() != 1 {
		t.Fatalf("expected original document to keep its nav element")
	}
}

func TestFromHTMLTitle(t *testing.T) {
	page := `<html><head><title>Plain title</title>
		<meta property="og:title" content=" OG title "></head>
		<body><article>` + paragraph(60) + `</article></body></html>`

	doc, err := extract.FromHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "OG title" {
		t.Fatalf("expected og:title, got %q", doc.Title)
	}
}

func TestTitleFallsBackToTitleTag(t *testing.T) {
	doc := mustDocument(t, `<html><head><title> Plain title </title></head><body></body></html>`)

	if got := extract.Title(doc); got != "Plain title" {
		t.Fatalf("expected <title> text, got %q", got)
	}
}
