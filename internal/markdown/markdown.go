// Package markdown renders text for Telegram's MarkdownV2 parse mode.
package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const (
	specialChars = `._[](){}#|!+-=*~>` + "`"
	// Inside the (...) part of an inline link only these are special.
	linkURLSpecialChars = `)\`
)

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	specialLookup = newLookup(specialChars + `\`)
	linkURLLookup = newLookup(linkURLSpecialChars)
)

// EscapeV2 escapes input so it renders literally.
func EscapeV2(input string) string {
	return escape(input, &specialLookup)
}

func Bold(input string) string {
	return "*" + EscapeV2(input) + "*"
}

func Italic(input string) string {
	return "_" + EscapeV2(input) + "_"
}

// Link renders an inline link with an escaped label.
func Link(label string, url string) string {
	return "[" + EscapeV2(label) + "](" + escape(url, &linkURLLookup) + ")"
}

func escape(input string, lookup *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func newLookup(chars string) [256]bool {
	var m [256]bool
	for i := range len(chars) {
		m[chars[i]] = true
	}
	return m
}
