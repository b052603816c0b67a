package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxLength is the number of characters kept before TruncationMarker is appended.
	MaxLength = 15000
	// MinLength is the shortest text worth sending to the model.
	MinLength = 100

	TruncationMarker = "..."

	minMainContentLength = 200
)

var (
	ErrNoContent           = errors.New("no content found on page")
	ErrInsufficientContent = errors.New("not enough content found on page")
)

var (
	boilerplateSelector = strings.Join([]string{
		"script", "style", "nav", "footer", "header", "aside",
		"iframe", "noscript", ".advertisement", ".ads", ".sidebar",
		".navigation", ".menu", ".comments", ".social-share",
	}, ", ")

	mainContentSelectors = []string{
		"article",
		"main",
		`[role="main"]`,
		".post-content",
		".article-content",
		".entry-content",
		".content",
		"#content",
	}
)

type Document struct {
	Title string
	Text  string
}

func FromHTML(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Document{}, fmt.Errorf("create document from reader: %w", err)
	}

	return FromDocument(doc)
}

func FromDocument(doc *goquery.Document) (Document, error) {
	text, err := Text(doc.Selection)
	if err != nil {
		return Document{}, err
	}

	return Document{Title: Title(doc), Text: text}, nil
}

// Text extracts the readable text of the page rooted at root. The body is
// cloned first, so root's tree is never modified.
func Text(root *goquery.Selection) (string, error) {
	body := root.Find("body").First()
	if body.Length() == 0 {
		return "", ErrNoContent
	}

	clone := body.Clone()
	clone.Find(boilerplateSelector).Remove()

	text := normalizeWhitespace(visibleText(mainContent(clone)))
	if text == "" {
		return "", ErrNoContent
	}

	text = truncate(text)

	if utf8.RuneCountInString(text) < MinLength {
		return "", ErrInsufficientContent
	}

	return text, nil
}

// Title prefers og:title and falls back to <title>.
func Title(doc *goquery.Document) string {
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	return strings.TrimSpace(doc.Find("head > title").First().Text())
}

func mainContent(body *goquery.Selection) *goquery.Selection {
	for _, selector := range mainContentSelectors {
		candidate := body.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}

		if utf8.RuneCountInString(strings.TrimSpace(candidate.Text())) > minMainContentLength {
			return candidate
		}
	}

	return body
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxLength {
		return text
	}

	return string(runes[:MaxLength]) + TruncationMarker
}
