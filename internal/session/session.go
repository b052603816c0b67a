package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"quickread/internal/domain"
	"quickread/internal/extract"
	"quickread/internal/history"
	"quickread/internal/page"
	"quickread/internal/settings"
	"quickread/internal/summarizer"
	"sync"
	"time"
)

var (
	ErrMissingCredential = errors.New("credential is not configured")
	ErrRequestInFlight   = errors.New("summarization is already in progress")
	ErrNothingToSave     = errors.New("no summary to save")
)

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*page.Page, error)
}

// Request is the state of one summarization as it moves through the steps.
type Request struct {
	UserID    int64
	PageURL   string
	PageTitle string
	Format    domain.Format
	Content   string
}

type Result struct {
	Record domain.SummaryRecord
	// Saved reports whether the record is in the user's history.
	Saved bool
}

// Service runs summarizations and the history and settings operations around
// them. Each user has at most one summarization in flight.
type Service struct {
	fetcher    PageFetcher
	summarizer summarizer.Summarizer
	settings   *settings.Settings
	history    *history.Store
	log        *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	inflight map[int64]struct{}
	// last holds each user's latest summary that could not be auto-saved.
	last map[int64]domain.SummaryRecord
}

func New(
	fetcher PageFetcher,
	s summarizer.Summarizer,
	st *settings.Settings,
	h *history.Store,
	log *slog.Logger,
) *Service {
	return &Service{
		fetcher:    fetcher,
		summarizer: s,
		settings:   st,
		history:    h,
		log:        log,
		now:        time.Now,
		inflight:   make(map[int64]struct{}),
		last:       make(map[int64]domain.SummaryRecord),
	}
}

// Summarize fetches pageURL, summarizes it in the user's format and saves
// the result to history. A failed save is logged and reported through
// Result.Saved; the summary is still returned.
func (s *Service) Summarize(ctx context.Context, userID int64, pageURL string) (*Result, error) {
	if !s.acquire(userID) {
		return nil, ErrRequestInFlight
	}
	defer s.release(userID)

	req := &Request{UserID: userID, PageURL: pageURL}

	apiKey, err := s.settings.Credential(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	if req.Format, err = s.settings.Format(ctx, userID); err != nil {
		return nil, fmt.Errorf("get format: %w", err)
	}

	p, err := s.fetcher.Fetch(ctx, req.PageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	req.PageURL = p.URL
	req.PageTitle = p.Title

	if req.Content, err = extract.Text(p.Document.Selection); err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}

	summary, err := s.summarizer.Summarize(ctx, summarizer.Input{
		Text:      req.Content,
		Format:    req.Format,
		PageTitle: req.PageTitle,
		SourceURL: req.PageURL,
		APIKey:    apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	title := req.PageTitle
	if title == "" {
		title = domain.UntitledPage
	}

	rec := domain.SummaryRecord{
		Title:     title,
		URL:       req.PageURL,
		Summary:   summary,
		Format:    req.Format,
		CreatedAt: s.now(),
	}

	stored, _, err := s.history.AppendIfNovel(ctx, userID, rec)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to save summary",
			"error", err,
			"userID", userID,
			"url", req.PageURL)

		s.setLast(userID, rec)

		return &Result{Record: rec, Saved: false}, nil
	}

	s.clearLast(userID)

	return &Result{Record: stored, Saved: true}, nil
}

// SaveLast retries saving the latest summary that auto-save dropped.
func (s *Service) SaveLast(ctx context.Context, userID int64) (domain.SummaryRecord, bool, error) {
	s.mu.Lock()
	rec, ok := s.last[userID]
	s.mu.Unlock()

	if !ok {
		return domain.SummaryRecord{}, false, ErrNothingToSave
	}

	stored, added, err := s.history.AppendIfNovel(ctx, userID, rec)
	if err != nil {
		return domain.SummaryRecord{}, false, fmt.Errorf("save summary: %w", err)
	}

	s.clearLast(userID)

	return stored, !added, nil
}

func (s *Service) Format(ctx context.Context, userID int64) (domain.Format, error) {
	return s.settings.Format(ctx, userID)
}

func (s *Service) SetFormat(ctx context.Context, userID int64, format domain.Format) error {
	if err := s.settings.SetFormat(ctx, userID, format); err != nil {
		return fmt.Errorf("set format: %w", err)
	}

	return nil
}

func (s *Service) SetCredential(ctx context.Context, userID int64, credential string) error {
	if err := s.settings.SetCredential(ctx, userID, credential); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}

	return nil
}

func (s *Service) DeleteCredential(ctx context.Context, userID int64) error {
	if err := s.settings.DeleteCredential(ctx, userID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	return nil
}

// TestCredential validates credential, or the stored one when it is blank.
func (s *Service) TestCredential(
	ctx context.Context,
	userID int64,
	credential string,
) (summarizer.CredentialCheck, error) {
	if credential == "" {
		stored, err := s.settings.Credential(ctx, userID)
		if err != nil {
			return summarizer.CredentialCheck{}, fmt.Errorf("get credential: %w", err)
		}

		credential = stored
	}

	if credential == "" {
		return summarizer.CredentialCheck{}, ErrMissingCredential
	}

	return s.summarizer.ValidateCredential(ctx, credential), nil
}

func (s *Service) History(ctx context.Context, userID int64) ([]domain.SummaryRecord, error) {
	records, err := s.history.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return records, nil
}

func (s *Service) Show(ctx context.Context, userID int64, id int64) (domain.SummaryRecord, error) {
	rec, err := s.history.Get(ctx, userID, id)
	if err != nil {
		return domain.SummaryRecord{}, fmt.Errorf("get history record: %w", err)
	}

	return rec, nil
}

func (s *Service) Delete(ctx context.Context, userID int64, id int64) error {
	if err := s.history.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete history record: %w", err)
	}

	return nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	if err := s.history.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	return nil
}

func (s *Service) acquire(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[userID]; busy {
		return false
	}

	s.inflight[userID] = struct{}{}

	return true
}

func (s *Service) release(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, userID)
}

func (s *Service) setLast(userID int64, rec domain.SummaryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last[userID] = rec
}

func (s *Service) clearLast(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.last, userID)
}
