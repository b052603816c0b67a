package summarizer

import (
	"context"
	"quickread/internal/domain"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the extracted page text; it is sent verbatim.
	Text string
	// Format selects the prompt instructions.
	Format domain.Format
	// PageTitle is optional and only used to give the model context.
	PageTitle string
	// SourceURL is optional metadata about where the text came from.
	SourceURL string
	// APIKey is the caller's credential. Summarizers never store it.
	APIKey string
}

// CredentialCheck reports whether the provider accepted an API key.
type CredentialCheck struct {
	Valid        bool
	ErrorCode    string
	ErrorMessage string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
	ValidateCredential(ctx context.Context, apiKey string) CredentialCheck
}
