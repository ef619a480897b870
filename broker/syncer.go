package broker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"permanode/domain"
	"permanode/logger"
)

const syncWindow = 8

// Syncer fills gaps in the sync range and archives milestones that were
// synced but never logged. It never touches the latest milestone, which
// the feeds are still delivering.
type Syncer struct {
	syncRange domain.SyncRange
	interval  time.Duration
	svc       MilestoneService
	latest    func() uint32
	solidify  func(ctx context.Context, index uint32, done func()) bool
	archive   func(ctx context.Context, data *domain.MilestoneData) bool
	window    chan struct{}
	log       *slog.Logger
	state     statusBox
}

func newSyncer(
	syncRange domain.SyncRange,
	interval time.Duration,
	svc MilestoneService,
	latest func() uint32,
	solidify func(context.Context, uint32, func()) bool,
	archive func(context.Context, *domain.MilestoneData) bool,
) *Syncer {
	return &Syncer{
		syncRange: syncRange,
		interval:  interval,
		svc:       svc,
		latest:    latest,
		solidify:  solidify,
		archive:   archive,
		window:    make(chan struct{}, syncWindow),
		log:       slog.Default(),
	}
}

func (s *Syncer) Name() string { return "Syncer" }

func (s *Syncer) run(ctx context.Context) error {
	s.state.set(StatusRunning)
	defer s.state.set(StatusStopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

// syncOnce runs one pass over the sync range below the latest milestone.
func (s *Syncer) syncOnce(ctx context.Context) {
	latest := s.latest()
	if latest == 0 {
		s.log.DebugContext(ctx, "no milestone seen yet, skipping sync")
		return
	}
	r := s.syncRange.Clamp(latest - 1)
	if r.From >= r.To {
		return
	}

	data, err := s.svc.SyncData(ctx, r)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to load sync data", "range", r, "error", err)
		return
	}
	gaps := &domain.SyncData{Gaps: append([]domain.Range(nil), data.Gaps...)}
	summary := data.Summary()
	s.log.InfoContext(ctx, "sync pass started",
		"from", r.From,
		"to", r.To,
		"gaps", len(summary.Gaps),
		"unlogged", len(summary.SyncedButUnlogged),
		"completed", summary.CompletedCount,
	)

	var solidified, archived int
	for {
		next, ok := data.TakeLowestUncomplete()
		if !ok {
			break
		}
		for index := next.Start; index < next.End; index++ {
			if ctx.Err() != nil {
				return
			}
			if gaps.IsGap(index) {
				if s.requestSolidify(ctx, index) {
					solidified++
				}
				continue
			}
			if s.rearchive(ctx, index) {
				archived++
			}
		}
	}
	s.wait(ctx)
	s.log.InfoContext(ctx, "sync pass finished", "solidify_requests", solidified, "rearchived", archived)
}

func (s *Syncer) requestSolidify(ctx context.Context, index uint32) bool {
	select {
	case s.window <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	done := sync.OnceFunc(func() { <-s.window })
	if !s.solidify(ctx, index, done) {
		done()
		return false
	}
	return true
}

func (s *Syncer) rearchive(ctx context.Context, index uint32) bool {
	ctx = logger.WithMilestoneIndex(ctx, index)
	data, err := s.svc.LoadMilestoneData(ctx, index)
	if err != nil {
		s.log.WarnContext(ctx, "failed to load synced milestone", "error", err)
		return false
	}
	return s.archive(ctx, data)
}

// wait blocks until every solidify request of the pass has finished.
func (s *Syncer) wait(ctx context.Context) {
	for i := 0; i < cap(s.window); i++ {
		select {
		case s.window <- struct{}{}:
		case <-ctx.Done():
			return
		}
	}
	for i := 0; i < cap(s.window); i++ {
		<-s.window
	}
}
