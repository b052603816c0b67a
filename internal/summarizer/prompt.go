package summarizer

import (
	"quickread/internal/domain"
	"strings"
)

const (
	promptPreamble = "You are a helpful assistant that summarizes web content. " +
		"The following is content from a webpage"

	briefInstruction = "Provide a very concise summary in 2-3 sentences. " +
		"Focus on the main point and key takeaway. Be direct and to the point."
	bulletsInstruction = "Summarize the content as a bullet-point list with 5-8 key points. " +
		"Each bullet should be a complete, standalone piece of information. " +
		"Start each point with a dash (-)."
	detailedInstruction = "Provide a comprehensive summary in 3-4 paragraphs. " +
		"Cover the main topics, supporting details, and conclusions. " +
		"Maintain the logical flow of the original content."
	fallbackInstruction = "Provide a concise summary."

	contentDelimiter = "Content to summarize:"
	SummaryCue       = "Summary:"
)

// BuildPrompt renders the prompt for text. The text is embedded as is;
// truncation is the extractor's job.
func BuildPrompt(text string, format domain.Format, pageTitle string) string {
	var b strings.Builder

	b.WriteString(promptPreamble)
	if title := strings.TrimSpace(pageTitle); title != "" {
		b.WriteString(` titled "`)
		b.WriteString(title)
		b.WriteString(`"`)
	}
	b.WriteString(".\n\n")

	b.WriteString(formatInstruction(format))
	b.WriteString("\n\n")

	b.WriteString(contentDelimiter)
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString(SummaryCue)

	return b.String()
}

func formatInstruction(format domain.Format) string {
	switch format {
	case domain.FormatBrief:
		return briefInstruction
	case domain.FormatBullets:
		return bulletsInstruction
	case domain.FormatDetailed:
		return detailedInstruction
	default:
		return fallbackInstruction
	}
}
