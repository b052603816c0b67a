package history

import (
	"context"
	"errors"
	"fmt"
	"quickread/internal/domain"
	"quickread/internal/storage"
	"strings"
	"sync"
	"time"
)

// MaxRecords caps each user's history; the oldest records are evicted first.
const MaxRecords = 20

var ErrNotFound = errors.New("history record not found")

// Store keeps every user's history as one envelope under storage.KeyHistory.
type Store struct {
	kv  storage.KV
	now func() time.Time

	// mu serializes read-modify-write cycles.
	mu sync.Mutex
}

func NewStore(kv storage.KV) *Store {
	return &Store{
		kv:  kv,
		now: time.Now,
	}
}

// AppendIfNovel prepends rec unless a record with the same summary and URL
// is already stored. It returns the stored record and whether it was added.
func (s *Store) AppendIfNovel(
	ctx context.Context,
	userID int64,
	rec domain.SummaryRecord,
) (domain.SummaryRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx, userID)
	if err != nil {
		return domain.SummaryRecord{}, false, err
	}

	for _, existing := range records {
		if existing.Summary == rec.Summary && existing.URL == rec.URL {
			return existing, false, nil
		}
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	if strings.TrimSpace(rec.Title) == "" {
		rec.Title = domain.UntitledPage
	}

	rec.ID = nextID(records, rec.CreatedAt)

	records = append([]domain.SummaryRecord{rec}, records...)
	if len(records) > MaxRecords {
		records = records[:MaxRecords]
	}

	if err = s.save(ctx, userID, records); err != nil {
		return domain.SummaryRecord{}, false, err
	}

	return rec, true, nil
}

// List returns the user's records, newest first.
func (s *Store) List(ctx context.Context, userID int64) ([]domain.SummaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, userID)
}

func (s *Store) Get(ctx context.Context, userID int64, id int64) (domain.SummaryRecord, error) {
	records, err := s.List(ctx, userID)
	if err != nil {
		return domain.SummaryRecord{}, err
	}

	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}

	return domain.SummaryRecord{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// Delete removes the record with id. A missing id is not an error.
func (s *Store) Delete(ctx context.Context, userID int64, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}

	if len(kept) == len(records) {
		return nil
	}

	return s.save(ctx, userID, kept)
}

func (s *Store) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, userID, nil)
}

// PruneOlderThan drops records created before cutoff for every user and
// returns how many were removed. A failing user does not stop the sweep.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	userIDs, err := storage.UserKeys(ctx, s.kv, storage.KeyHistory)
	if err != nil {
		return 0, fmt.Errorf("list history keys: %w", err)
	}

	var (
		removed int
		errs    []error
	)
	for _, userID := range userIDs {
		n, err := s.pruneUser(ctx, userID, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune user %d: %w", userID, err))
			continue
		}

		removed += n
	}

	return removed, errors.Join(errs...)
}

func (s *Store) pruneUser(ctx context.Context, userID int64, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}

	kept := make([]domain.SummaryRecord, 0, len(records))
	for _, rec := range records {
		if !rec.CreatedAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	return removed, s.save(ctx, userID, kept)
}

func (s *Store) load(ctx context.Context, userID int64) ([]domain.SummaryRecord, error) {
	key := storage.UserKey(userID, storage.KeyHistory)

	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	records, err := decode(raw)
	if err != nil {
		return nil, &storage.Error{Op: "decode", Key: key, Err: err}
	}

	return records, nil
}

func (s *Store) save(ctx context.Context, userID int64, records []domain.SummaryRecord) error {
	key := storage.UserKey(userID, storage.KeyHistory)

	raw, err := encode(records)
	if err != nil {
		return &storage.Error{Op: "encode", Key: key, Err: err}
	}

	return s.kv.Set(ctx, key, raw)
}

// nextID is createdAt in Unix milliseconds, bumped past every existing ID.
func nextID(records []domain.SummaryRecord, createdAt time.Time) int64 {
	id := createdAt.UnixMilli()
	for _, rec := range records {
		if rec.ID >= id {
			id = rec.ID + 1
		}
	}

	return id
}
