package session

import (
	"errors"
	"quickread/internal/domain"
	"quickread/internal/extract"
	"quickread/internal/history"
	"quickread/internal/page"
	"quickread/internal/settings"
	"quickread/internal/storage"
	"quickread/internal/summarizer"
)

// StatusMessage renders err as a one-line message for the user.
func StatusMessage(err error) string {
	var sErr *summarizer.Error
	var stErr *storage.Error

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "API key not configured. Please add your API key with /key."
	case errors.Is(err, ErrRequestInFlight):
		return "A summary is already being generated. Please wait for it to finish."
	case errors.Is(err, ErrNothingToSave):
		return "There is no unsaved summary."
	case errors.Is(err, settings.ErrEmptyCredential):
		return "Please enter an API key."
	case errors.Is(err, domain.ErrUnknownFormat):
		return "Unknown summary format. Choose brief, bullets or detailed."
	case errors.Is(err, history.ErrNotFound):
		return "This summary is no longer in your history."
	case errors.Is(err, extract.ErrInsufficientContent):
		return "Not enough content found on this page to summarize."
	case errors.Is(err, extract.ErrNoContent), errors.Is(err, page.ErrUnavailable):
		return "Could not extract content from this page."
	case errors.As(err, &sErr):
		return summarizerMessage(sErr)
	case errors.As(err, &stErr):
		return "Storage is unavailable. Please try again later."
	default:
		return "Something went wrong. Please try again."
	}
}

func summarizerMessage(err *summarizer.Error) string {
	switch err.Kind {
	case summarizer.KindInvalidCredential:
		return "Invalid API key. Please check your API key with /key."
	case summarizer.KindQuotaExceeded:
		return "API quota exceeded. Please try again later or check your API key limits."
	case summarizer.KindNetwork:
		return "Network error. Please check the connection and try again."
	case summarizer.KindMalformedResponse:
		return "Invalid response from the summarization API."
	default:
		return err.Error()
	}
}
