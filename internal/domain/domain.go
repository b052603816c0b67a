package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatBrief    Format = "brief"
	FormatBullets  Format = "bullets"
	FormatDetailed Format = "detailed"

	DefaultFormat = FormatBrief

	UntitledPage = "Untitled Page"
)

var ErrUnknownFormat = errors.New("unknown summary format")

func Formats() []Format {
	return []Format{FormatBrief, FormatBullets, FormatDetailed}
}

func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}

	return f, nil
}

func (f Format) Valid() bool {
	switch f {
	case FormatBrief, FormatBullets, FormatDetailed:
		return true
	default:
		return false
	}
}

// SummaryRecord is immutable once stored; it is only ever deleted.
type SummaryRecord struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Format    Format    `json:"format"`
	CreatedAt time.Time `json:"createdAt"`
}
