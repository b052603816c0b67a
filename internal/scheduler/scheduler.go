package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultRetentionSpec  = "@daily"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	pruneHistoryTimeout   = 15 * time.Minute
)

type HistoryPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Scheduler runs the history retention sweep.
type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	pruner    HistoryPruner
	spec      string
	retention time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func New(
	ctx context.Context,
	pruner HistoryPruner,
	spec string,
	retention time.Duration,
	log *slog.Logger,
) *Scheduler {
	if spec == "" {
		spec = DefaultRetentionSpec
	}

	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		pruner:    pruner,
		spec:      spec,
		retention: retention,
		now:       time.Now,
		log:       log,
	}
}

func (s *Scheduler) Spec() string {
	return s.spec
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.pruneHistory); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop stops the cron and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneHistory() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneHistoryTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	cutoff := s.now().Add(-s.retention)

	removed, err := s.pruner.PruneOlderThan(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune history",
			"error", err,
			"cutoff", cutoff,
			"removed", removed)
		return
	}

	s.log.InfoContext(ctx, "History is pruned",
		"cutoff", cutoff,
		"removed", removed)
}
