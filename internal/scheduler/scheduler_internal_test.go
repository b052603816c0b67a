package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type stubPruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (p *stubPruner) PruneOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	p.calls++
	p.cutoff = cutoff
	return 3, p.err
}

func TestPruneHistoryCutoff(t *testing.T) {
	now := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	pruner := &stubPruner{}

	s := New(context.Background(), pruner, "", 30*24*time.Hour, slog.Default())
	s.now = func() time.Time { return now }

	s.pruneHistory()

	if pruner.calls != 1 {
		t.Fatalf("Expected 1 call, got %d", pruner.calls)
	}

	want := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	if !pruner.cutoff.Equal(want) {
		t.Fatalf("Expected cutoff %v, got %v", want, pruner.cutoff)
	}

	pruner.err = errors.New("storage is down")
	s.pruneHistory()

	if pruner.calls != 2 {
		t.Fatalf("Expected a failing sweep to still run, got %d calls", pruner.calls)
	}
}

func TestPruneHistorySkipsWhenDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pruner := &stubPruner{}
	s := New(ctx, pruner, "", time.Hour, slog.Default())

	s.pruneHistory()

	if pruner.calls != 0 {
		t.Fatalf("Expected no sweep after context is done, got %d calls", pruner.calls)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(context.Background(), &stubPruner{}, "not a spec", time.Hour, slog.Default())

	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("Expected error for invalid spec")
	}
}

func TestDefaultSpec(t *testing.T) {
	s := New(context.Background(), &stubPruner{}, "", time.Hour, slog.Default())

	if s.Spec() != DefaultRetentionSpec {
		t.Fatalf("Expected default spec, got %q", s.Spec())
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s.Stop()
}
