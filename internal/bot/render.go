package bot

import (
	"fmt"
	"quickread/internal/domain"
	"quickread/internal/markdown"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	telegramMessageMaxLength = 4096
	previewLength            = 100
	previewSuffix            = "..."
	bulletPoint              = "– "
)

//nolint:gochecknoglobals // Compiled once.
var (
	bulletMarker     = regexp.MustCompile(`^[-*•]\s*`)
	paragraphDivider = regexp.MustCompile(`\n\s*\n`)
)

// renderSummary renders the summary body for its format: bullets as list
// items, everything else as paragraphs.
func renderSummary(summary string, format domain.Format) string {
	var parts []string

	if format == domain.FormatBullets {
		for line := range strings.SplitSeq(summary, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			line = strings.TrimSpace(bulletMarker.ReplaceAllString(line, ""))
			parts = append(parts, bulletPoint+markdown.EscapeV2(line))
		}

		return strings.Join(parts, "\n")
	}

	for _, paragraph := range paragraphDivider.Split(summary, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		parts = append(parts, markdown.EscapeV2(paragraph))
	}

	return strings.Join(parts, "\n\n")
}

func renderRecord(rec domain.SummaryRecord, now time.Time) string {
	var b strings.Builder

	b.WriteString("📝 ")
	b.WriteString(markdown.Bold(rec.Title))
	b.WriteString("\n")
	b.WriteString(markdown.Italic(fmt.Sprintf("%s · %s", rec.Format, relativeTime(rec.CreatedAt, now))))
	if rec.URL != "" {
		b.WriteString(" · ")
		b.WriteString(markdown.Link("source", rec.URL))
	}
	b.WriteString("\n\n")
	b.WriteString(renderSummary(rec.Summary, rec.Format))

	return b.String()
}

func renderHistory(records []domain.SummaryRecord, now time.Time) string {
	var b strings.Builder

	b.WriteString(markdown.Bold(fmt.Sprintf("📚 Recent summaries (%d)", len(records))))
	b.WriteString("\n\n")

	for i, rec := range records {
		fmt.Fprintf(&b, "%s %s\n%s\n%s\n\n",
			markdown.EscapeV2(fmt.Sprintf("%d.", i+1)),
			markdown.Bold(rec.Title),
			markdown.Italic(fmt.Sprintf("%s · %s", rec.Format, relativeTime(rec.CreatedAt, now))),
			markdown.EscapeV2(preview(rec.Summary)),
		)
	}

	return strings.TrimRight(b.String(), "\n")
}

// preview is the first 100 runes on a single line.
func preview(summary string) string {
	line := strings.ReplaceAll(summary, "\n", " ")

	if utf8.RuneCountInString(line) > previewLength {
		line = string([]rune(line)[:previewLength])
	}

	return line + previewSuffix
}

func relativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	default:
		return t.Format(time.DateOnly)
	}
}

// splitMessage cuts text into chunks of at most limit bytes, preferring
// line breaks and never splitting an escape sequence.
func splitMessage(text string, limit int) []string {
	var chunks []string

	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = hardCut(text, limit)
		}

		chunks = append(chunks, strings.TrimRight(text[:cut], "\n"))
		text = strings.TrimLeft(text[cut:], "\n")
	}

	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}

func hardCut(text string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	// An odd run of backslashes before cut means the last one escapes text[cut].
	backslashes := 0
	for i := cut - 1; i >= 0 && text[i] == '\\'; i-- {
		backslashes++
	}
	if backslashes%2 == 1 {
		cut--
	}

	if cut <= 0 {
		return limit
	}

	return cut
}
