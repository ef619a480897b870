package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"permanode/domain"
	"permanode/logger"
	apperrors "permanode/utils/errors"
)

const (
	solidifierInboxSize   = 1024
	solidifierLookups     = 16
	solidifierMaxAttempts = 5
	solidifierCompleted   = 4096
)

type solidifierEvent interface{ milestoneIndex() uint32 }

// milestoneArrived carries a milestone message seen on a feed or fetched
// from a node.
type milestoneArrived struct {
	full      *domain.FullMessage
	milestone *domain.Milestone
}

// messageReferenced says id is referenced by index. full is nil when the
// collector no longer holds the raw message.
type messageReferenced struct {
	id    domain.MessageID
	meta  *domain.MessageMetadata
	full  *domain.FullMessage
	index uint32
}

// solidifyRequest asks for index to be solidified without waiting for
// feeds. done is called once the milestone is complete or abandoned.
type solidifyRequest struct {
	index uint32
	done  func()
}

type lookupResult struct {
	index    uint32
	id       domain.MessageID
	full     *domain.FullMessage
	err      error
	fromNode bool
}

type milestoneFetched struct {
	index     uint32
	full      *domain.FullMessage
	milestone *domain.Milestone
	err       error
}

func (e milestoneArrived) milestoneIndex() uint32  { return e.milestone.Index }
func (e messageReferenced) milestoneIndex() uint32 { return e.index }
func (e solidifyRequest) milestoneIndex() uint32   { return e.index }
func (e lookupResult) milestoneIndex() uint32      { return e.index }
func (e milestoneFetched) milestoneIndex() uint32  { return e.index }

// milestoneState is the cone of one milestone being assembled.
type milestoneState struct {
	index     uint32
	milestone *domain.Milestone
	root      *domain.FullMessage
	// collected holds messages referenced by index, with raw bytes and metadata.
	collected map[domain.MessageID]*domain.FullMessage
	visited   map[domain.MessageID]struct{}
	// pending are parents reached by the walk and not yet resolved.
	pending           map[domain.MessageID]struct{}
	inFlight          map[domain.MessageID]struct{}
	fetchingMilestone bool
	lastProgress      time.Time
	attempts          int
	waiters           []func()
}

func newMilestoneState(index uint32, now time.Time) *milestoneState {
	return &milestoneState{
		index:        index,
		collected:    make(map[domain.MessageID]*domain.FullMessage),
		visited:      make(map[domain.MessageID]struct{}),
		pending:      make(map[domain.MessageID]struct{}),
		inFlight:     make(map[domain.MessageID]struct{}),
		lastProgress: now,
	}
}

func (st *milestoneState) progressed(now time.Time) {
	st.lastProgress = now
	st.attempts = 0
}

func (st *milestoneState) release() {
	for _, done := range st.waiters {
		done()
	}
	st.waiters = nil
}

// Solidifier assembles the cones of the milestones it owns. A milestone is
// complete when the walk from its message has no pending parents left.
// Parents referenced by an older milestone end the walk. Missing parents
// are looked up in storage right away and fetched from nodes after the
// solidify timeout.
type Solidifier struct {
	index   int
	inbox   chan solidifierEvent
	results chan solidifierEvent
	svc     MilestoneService
	archive func(ctx context.Context, data *domain.MilestoneData) bool
	timeout time.Duration
	tick    time.Duration
	now     func() time.Time
	states  map[uint32]*milestoneState
	sem     chan struct{}
	workers sync.WaitGroup
	log     *slog.Logger
	state   statusBox

	// completed drops late feed events for milestones already solidified.
	completed *lru.Cache[uint32, struct{}]
}

func newSolidifier(index int, svc MilestoneService, archive func(context.Context, *domain.MilestoneData) bool, timeout time.Duration) *Solidifier {
	tick := timeout / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	// lru.New only fails for a non-positive size.
	completed, _ := lru.New[uint32, struct{}](solidifierCompleted)
	s := &Solidifier{
		index:     index,
		inbox:     make(chan solidifierEvent, solidifierInboxSize),
		results:   make(chan solidifierEvent),
		svc:       svc,
		archive:   archive,
		timeout:   timeout,
		tick:      tick,
		now:       time.Now,
		states:    make(map[uint32]*milestoneState),
		sem:       make(chan struct{}, solidifierLookups),
		completed: completed,
	}
	s.log = slog.Default()
	return s
}

func (s *Solidifier) Name() string { return fmt.Sprintf("Solidifier-%d", s.index) }

func (s *Solidifier) push(ctx context.Context, ev solidifierEvent) bool {
	select {
	case s.inbox <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Solidifier) run(ctx context.Context) error {
	s.state.set(StatusRunning)
	defer s.state.set(StatusStopped)
	defer s.workers.Wait()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.inbox:
			s.handle(ctx, ev)
		case ev := <-s.results:
			s.handle(ctx, ev)
		case <-ticker.C:
			s.onTick(ctx)
		}
	}
}

func (s *Solidifier) stateFor(index uint32) *milestoneState {
	st, ok := s.states[index]
	if !ok {
		st = newMilestoneState(index, s.now())
		s.states[index] = st
	}
	return st
}

func (s *Solidifier) handle(ctx context.Context, ev solidifierEvent) {
	if s.completed.Contains(ev.milestoneIndex()) {
		if req, ok := ev.(solidifyRequest); ok && req.done != nil {
			req.done()
		}
		return
	}
	ctx = logger.WithMilestoneIndex(ctx, ev.milestoneIndex())
	switch e := ev.(type) {
	case milestoneArrived:
		s.onMilestone(ctx, s.stateFor(e.milestone.Index), e.full, e.milestone)
	case messageReferenced:
		s.onReferenced(ctx, e)
	case solidifyRequest:
		s.onSolidifyRequest(ctx, e)
	case lookupResult:
		s.onLookup(ctx, e)
	case milestoneFetched:
		s.onMilestoneFetched(ctx, e)
	}
}

func (s *Solidifier) onMilestone(ctx context.Context, st *milestoneState, full *domain.FullMessage, milestone *domain.Milestone) {
	if st.milestone != nil {
		return
	}
	st.milestone = milestone
	st.root = full
	if full.Metadata != nil {
		if ref, ok := full.Metadata.ReferencedIndex(); ok && ref == st.index {
			st.collected[full.MessageID] = full
		}
	}
	st.progressed(s.now())
	s.walk(ctx, st, full)
	s.tryComplete(ctx, st)
}

func (s *Solidifier) onReferenced(ctx context.Context, e messageReferenced) {
	st := s.stateFor(e.index)
	if _, ok := st.collected[e.id]; ok {
		return
	}
	if e.full == nil {
		s.lookup(ctx, st, e.id, false)
		return
	}
	s.collect(ctx, st, e.full)
	s.tryComplete(ctx, st)
}

func (s *Solidifier) onSolidifyRequest(ctx context.Context, e solidifyRequest) {
	st := s.stateFor(e.index)
	if e.done != nil {
		st.waiters = append(st.waiters, e.done)
	}
	if st.milestone == nil {
		s.fetchMilestone(ctx, st)
	}
}

// collect records a message referenced by the milestone and resumes the
// walk when it was waited on.
func (s *Solidifier) collect(ctx context.Context, st *milestoneState, full *domain.FullMessage) {
	st.collected[full.MessageID] = full
	st.progressed(s.now())
	if _, ok := st.pending[full.MessageID]; ok {
		s.walk(ctx, st, full)
	}
}

func (s *Solidifier) onLookup(ctx context.Context, e lookupResult) {
	st, ok := s.states[e.index]
	if !ok {
		return
	}
	delete(st.inFlight, e.id)

	if e.err != nil {
		if !apperrors.IsNotFound(e.err) {
			s.log.WarnContext(ctx, "message lookup failed",
				"message_id", e.id.String(),
				"from_node", e.fromNode,
				"error", e.err,
			)
		}
		return
	}
	if e.full == nil || e.full.Metadata == nil {
		return
	}

	ref, referenced := e.full.Metadata.ReferencedIndex()
	switch {
	case referenced && ref == st.index:
		if e.id == st.rootID() {
			st.collected[e.id] = e.full
			st.progressed(s.now())
		} else {
			s.collect(ctx, st, e.full)
		}
	case referenced && ref < st.index:
		delete(st.pending, e.id)
		st.visited[e.id] = struct{}{}
		st.progressed(s.now())
	}
	s.tryComplete(ctx, st)
}

func (st *milestoneState) rootID() domain.MessageID {
	if st.milestone == nil {
		return domain.MessageID{}
	}
	return st.milestone.MessageID
}

func (s *Solidifier) onMilestoneFetched(ctx context.Context, e milestoneFetched) {
	st, ok := s.states[e.index]
	if !ok {
		return
	}
	st.fetchingMilestone = false
	if e.err != nil {
		s.log.WarnContext(ctx, "milestone fetch failed", "error", e.err)
		return
	}
	s.onMilestone(ctx, st, e.full, e.milestone)
}

// walk visits from and every collected message reachable from it. Parents
// neither collected nor visited become pending and are looked up.
func (s *Solidifier) walk(ctx context.Context, st *milestoneState, from *domain.FullMessage) {
	stack := []*domain.FullMessage{from}
	for len(stack) > 0 {
		full := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := st.visited[full.MessageID]; seen {
			continue
		}
		st.visited[full.MessageID] = struct{}{}
		delete(st.pending, full.MessageID)

		msg, err := full.Message()
		if err != nil {
			s.log.ErrorContext(ctx, "undecodable message in cone", "message_id", full.MessageID.String(), "error", err)
			continue
		}
		for _, parent := range msg.Parents {
			if _, seen := st.visited[parent]; seen {
				continue
			}
			if c, ok := st.collected[parent]; ok {
				stack = append(stack, c)
				continue
			}
			if _, ok := st.pending[parent]; ok {
				continue
			}
			st.pending[parent] = struct{}{}
			s.lookup(ctx, st, parent, false)
		}
	}
}

func (s *Solidifier) tryComplete(ctx context.Context, st *milestoneState) {
	if st.milestone == nil || len(st.pending) > 0 {
		return
	}
	if _, ok := st.collected[st.rootID()]; !ok {
		return
	}

	data := &domain.MilestoneData{
		MilestoneIndex: st.index,
		Milestone:      st.milestone,
		Messages:       make([]*domain.FullMessage, 0, len(st.collected)),
	}
	for _, full := range st.collected {
		data.Messages = append(data.Messages, full)
	}
	data.SortMessages()

	if err := s.svc.CompleteMilestone(ctx, data); err != nil {
		s.log.ErrorContext(ctx, "failed to complete milestone", "error", err)
		return
	}
	s.log.InfoContext(ctx, "milestone solidified", "messages", len(data.Messages))

	delete(s.states, st.index)
	s.completed.Add(st.index, struct{}{})
	s.archive(ctx, data)
	st.release()
}

func (s *Solidifier) onTick(ctx context.Context) {
	now := s.now()
	for index, st := range s.states {
		ctx := logger.WithMilestoneIndex(ctx, index)
		if st.milestone != nil && len(st.pending) == 0 {
			s.tryComplete(ctx, st)
			continue
		}
		if now.Sub(st.lastProgress) < s.timeout {
			continue
		}
		st.attempts++
		st.lastProgress = now
		if st.attempts > solidifierMaxAttempts {
			s.log.WarnContext(ctx, "abandoning milestone",
				"pending", len(st.pending),
				"collected", len(st.collected),
			)
			delete(s.states, index)
			st.release()
			continue
		}

		if st.milestone == nil {
			s.fetchMilestone(ctx, st)
			continue
		}
		for id := range st.pending {
			s.lookup(ctx, st, id, true)
		}
		if _, ok := st.collected[st.rootID()]; !ok {
			s.lookup(ctx, st, st.rootID(), true)
		}
	}
}

// lookup resolves id in the background, from storage or from nodes.
func (s *Solidifier) lookup(ctx context.Context, st *milestoneState, id domain.MessageID, fromNode bool) {
	if _, busy := st.inFlight[id]; busy {
		return
	}
	st.inFlight[id] = struct{}{}
	index := st.index

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		var (
			full *domain.FullMessage
			err  error
		)
		if fromNode {
			full, err = s.svc.FetchMessage(ctx, id)
		} else {
			full, err = s.svc.StoredMessage(ctx, id)
		}
		<-s.sem
		s.deliver(ctx, lookupResult{index: index, id: id, full: full, err: err, fromNode: fromNode})
	}()
}

func (s *Solidifier) fetchMilestone(ctx context.Context, st *milestoneState) {
	if st.fetchingMilestone {
		return
	}
	st.fetchingMilestone = true
	index := st.index

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		full, milestone, err := s.resolveMilestone(ctx, index)
		s.deliver(ctx, milestoneFetched{index: index, full: full, milestone: milestone, err: err})
	}()
}

func (s *Solidifier) resolveMilestone(ctx context.Context, index uint32) (*domain.FullMessage, *domain.Milestone, error) {
	ms, err := s.svc.FetchMilestone(ctx, index)
	if err != nil {
		return nil, nil, err
	}
	full, err := s.svc.FetchMessage(ctx, ms.MessageID)
	if err != nil {
		return nil, nil, err
	}
	msg, err := full.Message()
	if err != nil {
		return nil, nil, err
	}
	milestone, err := domain.MilestoneFromMessage(full.MessageID, msg)
	if err != nil {
		return nil, nil, err
	}
	if milestone.Index != index {
		return nil, nil, fmt.Errorf("message %s holds milestone %d, want %d", full.MessageID, milestone.Index, index)
	}
	return full, milestone, nil
}

func (s *Solidifier) deliver(ctx context.Context, ev solidifierEvent) {
	select {
	case s.results <- ev:
	case <-ctx.Done():
	}
}
