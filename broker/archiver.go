package broker

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"permanode/domain"
	"permanode/logger"
)

const (
	archiverInboxSize = 64
	archiverWritten   = 4096
)

type archiveItem struct {
	data *domain.MilestoneData
	at   time.Time
}

// Archiver appends solidified milestones to archive files in index order.
// Milestones solidified out of order wait in a reorder buffer; when the
// missing one does not show up within the timeout the current file is
// finished and a new one starts at the lowest buffered index.
type Archiver struct {
	dir        string
	maxLogSize int64
	timeout    time.Duration
	open       ArchiveOpener
	svc        MilestoneService
	inbox      chan *domain.MilestoneData
	now        func() time.Time

	current ArchiveLog
	buffer  map[uint32]archiveItem
	// written holds recently appended indices, including those of finished files.
	written *lru.Cache[uint32, struct{}]
	log     *slog.Logger
	state   statusBox
}

func newArchiver(dir string, maxLogSize int64, timeout time.Duration, open ArchiveOpener, svc MilestoneService) *Archiver {
	written, _ := lru.New[uint32, struct{}](archiverWritten)
	return &Archiver{
		dir:        dir,
		maxLogSize: maxLogSize,
		timeout:    timeout,
		open:       open,
		svc:        svc,
		inbox:      make(chan *domain.MilestoneData, archiverInboxSize),
		now:        time.Now,
		buffer:     make(map[uint32]archiveItem),
		written:    written,
		log:        slog.Default(),
	}
}

func (a *Archiver) Name() string { return "Archiver" }

func (a *Archiver) push(ctx context.Context, data *domain.MilestoneData) bool {
	select {
	case a.inbox <- data:
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *Archiver) run(ctx context.Context) error {
	a.state.set(StatusRunning)
	defer a.state.set(StatusStopped)
	defer a.finish(context.WithoutCancel(ctx))

	tick := a.timeout / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.drain(context.WithoutCancel(ctx))
			return nil
		case data := <-a.inbox:
			a.accept(ctx, data)
		case <-ticker.C:
			a.flushStale(ctx)
		}
	}
}

// drain writes whatever is already queued so a shutdown does not leave
// solidified milestones out of the archive.
func (a *Archiver) drain(ctx context.Context) {
	for {
		select {
		case data := <-a.inbox:
			a.accept(ctx, data)
		default:
			a.flushAll(ctx)
			return
		}
	}
}

func (a *Archiver) accept(ctx context.Context, data *domain.MilestoneData) {
	index := data.MilestoneIndex
	ctx = logger.WithMilestoneIndex(ctx, index)
	if a.written.Contains(index) {
		a.log.DebugContext(ctx, "milestone already archived")
		return
	}
	switch {
	case a.current == nil:
		a.write(ctx, data)
	case index == a.current.Next():
		a.write(ctx, data)
	case index >= a.current.From() && index < a.current.Next():
		a.log.DebugContext(ctx, "milestone already in open archive")
		return
	case index < a.current.Next():
		// Behind the open file, usually a gap filled by the syncer.
		a.finish(ctx)
		a.write(ctx, data)
	default:
		a.buffer[index] = archiveItem{data: data, at: a.now()}
		return
	}
	a.drainBuffer(ctx)
}

// drainBuffer writes buffered milestones while they continue the open file.
func (a *Archiver) drainBuffer(ctx context.Context) {
	for a.current != nil {
		item, ok := a.buffer[a.current.Next()]
		if !ok {
			return
		}
		delete(a.buffer, item.data.MilestoneIndex)
		a.write(ctx, item.data)
	}
}

func (a *Archiver) flushStale(ctx context.Context) {
	if len(a.buffer) == 0 {
		return
	}
	oldest := a.now()
	for _, item := range a.buffer {
		if item.at.Before(oldest) {
			oldest = item.at
		}
	}
	if a.now().Sub(oldest) < a.timeout {
		return
	}
	a.flushAll(ctx)
}

// flushAll writes every buffered milestone in index order, starting a new
// file at each discontinuity.
func (a *Archiver) flushAll(ctx context.Context) {
	for len(a.buffer) > 0 {
		lowest := uint32(0)
		first := true
		for index := range a.buffer {
			if first || index < lowest {
				lowest, first = index, false
			}
		}
		item := a.buffer[lowest]
		delete(a.buffer, lowest)
		a.finish(ctx)
		a.write(ctx, item.data)
		a.drainBuffer(ctx)
	}
}

func (a *Archiver) write(ctx context.Context, data *domain.MilestoneData) {
	index := data.MilestoneIndex
	ctx = logger.WithMilestoneIndex(ctx, index)
	if a.current != nil && a.current.Next() != index {
		a.finish(ctx)
	}
	if a.current == nil {
		l, err := a.open(a.dir, index)
		if err != nil {
			a.log.ErrorContext(ctx, "failed to open archive file", "from", index, "error", err)
			return
		}
		a.current = l
	}

	if err := a.current.Append(data); err != nil {
		a.log.ErrorContext(ctx, "failed to append milestone", "error", err)
		return
	}
	a.written.Add(index, struct{}{})

	name := filepath.Base(a.current.Path())
	if err := a.svc.MarkLogged(ctx, index, name); err != nil {
		a.log.ErrorContext(ctx, "failed to mark milestone logged", "error", err)
	}

	if a.maxLogSize > 0 && a.current.Size() >= a.maxLogSize {
		a.finish(ctx)
	}
}

func (a *Archiver) finish(ctx context.Context) {
	if a.current == nil {
		return
	}
	l := a.current
	a.current = nil
	path, err := l.Finish()
	if err != nil {
		a.log.ErrorContext(ctx, "failed to finish archive file", "from", l.From(), "error", err)
		return
	}
	if path != "" {
		a.log.InfoContext(ctx, "archive file finished", "path", path, "from", l.From(), "to", l.Next())
	}
}
