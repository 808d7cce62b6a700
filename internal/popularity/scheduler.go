package popularity

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/arcade-pulse/backend/config"
	"github.com/arcade-pulse/backend/internal/models"
)

// StatsSource supplies raw per-game statistics from one consistent snapshot.
type StatsSource interface {
	Collect(ctx context.Context, ref time.Time) ([]models.GameStats, error)
}

// Mirror persists a published snapshot outside this process, for instances
// that run without a local scheduler.
type Mirror interface {
	Store(ctx context.Context, snap *models.PopularitySnapshot) error
}

// EventPublisher announces a published ranking to realtime subscribers.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// EventRankingUpdated is emitted after each successful publish.
const EventRankingUpdated = "ranking_updated"

// Scheduler recomputes the popularity ranking on a fixed period and swaps
// the published snapshot atomically. A failed cycle is logged and skipped;
// the previous snapshot stays visible until the next successful cycle. The
// loop is a single goroutine, so cycles never overlap and ticks firing
// mid-cycle are simply dropped by the ticker.
type Scheduler struct {
	source       StatsSource
	mirror       Mirror
	events       EventPublisher
	logger       *zap.Logger
	interval     time.Duration
	cycleTimeout time.Duration

	current atomic.Pointer[models.PopularitySnapshot]
}

// NewScheduler creates a ranking scheduler. mirror and events may be nil.
func NewScheduler(source StatsSource, cfg config.RankingConfig, mirror Mirror, events EventPublisher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	cycleTimeout := cfg.CycleTimeout
	if cycleTimeout <= 0 {
		cycleTimeout = time.Minute
	}
	return &Scheduler{
		source:       source,
		mirror:       mirror,
		events:       events,
		logger:       logger,
		interval:     interval,
		cycleTimeout: cycleTimeout,
	}
}

// Run executes recomputation cycles until ctx is cancelled. The first cycle
// runs immediately so readers get a snapshot shortly after startup.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("ranking scheduler stopping")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle performs one collect-score-publish cycle. Errors and timeouts
// skip the cycle without touching the published snapshot; cancellation never
// publishes a partially computed result.
func (s *Scheduler) RunCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()

	started := time.Now().UTC()
	ref := started.AddDate(0, 0, -1)

	stats, err := s.source.Collect(cycleCtx, ref)
	if err != nil {
		s.logger.Warn("ranking cycle skipped",
			zap.Error(err),
			zap.String("reference_date", ref.Format("2006-01-02")),
		)
		return
	}
	if ctx.Err() != nil {
		return
	}

	snap := Rank(stats, ref, started)
	s.current.Store(snap)

	if s.mirror != nil {
		if err := s.mirror.Store(cycleCtx, snap); err != nil {
			s.logger.Warn("snapshot mirror write failed", zap.Error(err))
		}
	}
	if s.events != nil {
		s.events.Publish(EventRankingUpdated, snap)
	}

	s.logger.Info("ranking published",
		zap.Int("games", len(snap.Entries)),
		zap.String("reference_date", snap.ReferenceDate),
		zap.Duration("took", time.Since(started)),
	)
}

// Latest returns the most recently published snapshot, or nil before the
// first successful cycle. The returned value is immutable; readers never
// block and never observe a partial update.
func (s *Scheduler) Latest() *models.PopularitySnapshot {
	return s.current.Load()
}
