package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"quickread/internal/domain"
	"time"
)

const currentVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported history version")

type envelope struct {
	Version int                    `json:"version"`
	Records []domain.SummaryRecord `json:"records"`
}

// legacyRecord is the unversioned shape: a bare array whose records carry
// an ISO timestamp instead of createdAt.
type legacyRecord struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Format    string    `json:"format"`
	Timestamp time.Time `json:"timestamp"`
}

func encode(records []domain.SummaryRecord) ([]byte, error) {
	if records == nil {
		records = []domain.SummaryRecord{}
	}

	return json.Marshal(envelope{
		Version: currentVersion,
		Records: records,
	})
}

func decode(raw []byte) ([]domain.SummaryRecord, error) {
	trimmed := bytes.TrimSpace(raw)

	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case trimmed[0] == '[':
		return decodeLegacy(trimmed)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	if env.Version > currentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	return env.Records, nil
}

func decodeLegacy(raw []byte) ([]domain.SummaryRecord, error) {
	var legacy []legacyRecord
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("unmarshal legacy history: %w", err)
	}

	records := make([]domain.SummaryRecord, 0, len(legacy))
	for _, rec := range legacy {
		title := rec.Title
		if title == "" {
			title = domain.UntitledPage
		}

		createdAt := rec.Timestamp
		if createdAt.IsZero() && rec.ID > 0 {
			createdAt = time.UnixMilli(rec.ID)
		}

		records = append(records, domain.SummaryRecord{
			ID:        rec.ID,
			Title:     title,
			URL:       rec.URL,
			Summary:   rec.Summary,
			Format:    domain.Format(rec.Format),
			CreatedAt: createdAt.UTC(),
		})
	}

	return records, nil
}
