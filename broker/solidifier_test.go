package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permanode/domain"
)

type archiveSink struct {
	mu   sync.Mutex
	data []*domain.MilestoneData
}

func (a *archiveSink) push(_ context.Context, data *domain.MilestoneData) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = append(a.data, data)
	return true
}

func (a *archiveSink) indexes() []uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]uint32, 0, len(a.data))
	for _, d := range a.data {
		out = append(out, d.MilestoneIndex)
	}
	return out
}

func runSolidifier(t *testing.T, s *Solidifier) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestSolidifier_RequestSolidifiesFromNode(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	older := indexationMessage(t, 1, fillID(0x05))
	require.NoError(t, store.StoreMessage(ctx, older))
	require.NoError(t, store.StoreMetadata(ctx, referencedBy(older.MessageID, 8)))

	parent := indexationMessage(t, 2, older.MessageID)
	root, ms := milestoneMessage(t, 9, parent.MessageID)
	parentOnNode := *parent
	parentOnNode.Metadata = referencedBy(parent.MessageID, 9)
	store.onNode(&parentOnNode, nil)
	rootOnNode := *root
	rootOnNode.Metadata = referencedBy(root.MessageID, 9)
	store.onNode(&rootOnNode, ms)

	sink := &archiveSink{}
	s := newSolidifier(0, store, sink.push, 20*time.Millisecond)
	runSolidifier(t, s)

	released := make(chan struct{})
	require.True(t, s.push(ctx, solidifyRequest{index: 9, done: func() { close(released) }}))

	select {
	case <-released:
	case <-time.After(waitFor):
		t.Fatal("solidify request was not released")
	}
	assert.Equal(t, []uint32{9}, sink.indexes())
	data, ok := store.completedData(9)
	require.True(t, ok)
	assert.Len(t, data.Messages, 2)
	assert.Equal(t, ms.MessageID, data.Milestone.MessageID)
}

func TestSolidifier_AbandonsUnknownMilestone(t *testing.T) {
	store := newMemoryStore()
	sink := &archiveSink{}
	s := newSolidifier(1, store, sink.push, 10*time.Millisecond)
	runSolidifier(t, s)

	released := make(chan struct{})
	require.True(t, s.push(context.Background(), solidifyRequest{index: 42, done: func() { close(released) }}))

	select {
	case <-released:
	case <-time.After(waitFor):
		t.Fatal("abandoned milestone did not release its waiter")
	}
	assert.Empty(t, sink.indexes())
	_, ok := store.completedData(42)
	assert.False(t, ok)
}

func TestSolidifier_IgnoresDuplicateMilestone(t *testing.T) {
	store := newMemoryStore()
	sink := &archiveSink{}
	s := newSolidifier(0, store, sink.push, time.Minute)

	older := indexationMessage(t, 1, fillID(0x06))
	root, ms := milestoneMessage(t, 3, older.MessageID)
	st := s.stateFor(3)
	st.milestone = ms
	st.root = root

	other, _ := milestoneMessage(t, 3, fillID(0x07))
	s.onMilestone(context.Background(), st, other, ms)
	assert.Same(t, root, st.root)
	assert.Empty(t, st.pending)
}

func TestSolidifier_DropsEventsForCompletedMilestone(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	older := indexationMessage(t, 1, fillID(0x08))
	require.NoError(t, store.StoreMessage(ctx, older))
	require.NoError(t, store.StoreMetadata(ctx, referencedBy(older.MessageID, 8)))

	parent := indexationMessage(t, 2, older.MessageID)
	root, ms := milestoneMessage(t, 9, parent.MessageID)
	parentOnNode := *parent
	parentOnNode.Metadata = referencedBy(parent.MessageID, 9)
	store.onNode(&parentOnNode, nil)
	rootOnNode := *root
	rootOnNode.Metadata = referencedBy(root.MessageID, 9)
	store.onNode(&rootOnNode, ms)

	sink := &archiveSink{}
	s := newSolidifier(0, store, sink.push, 20*time.Millisecond)
	runSolidifier(t, s)

	first := make(chan struct{})
	require.True(t, s.push(ctx, solidifyRequest{index: 9, done: func() { close(first) }}))
	select {
	case <-first:
	case <-time.After(waitFor):
		t.Fatal("milestone 9 was not solidified")
	}
	require.Equal(t, []uint32{9}, sink.indexes())

	require.True(t, s.push(ctx, messageReferenced{id: parent.MessageID, meta: parentOnNode.Metadata, full: &parentOnNode, index: 9}))
	require.True(t, s.push(ctx, milestoneArrived{full: &rootOnNode, milestone: ms}))
	again := make(chan struct{})
	require.True(t, s.push(ctx, solidifyRequest{index: 9, done: func() { close(again) }}))
	select {
	case <-again:
	case <-time.After(waitFor):
		t.Fatal("request for a completed milestone was not released")
	}

	assert.Never(t, func() bool { return len(sink.indexes()) > 1 }, 10*20*time.Millisecond, tick)
	assert.Equal(t, []uint32{9}, sink.indexes())
}
