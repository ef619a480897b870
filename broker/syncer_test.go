package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"permanode/domain"
)

type syncRecorder struct {
	mu         sync.Mutex
	solidified []uint32
	archived   []uint32
}

func (r *syncRecorder) solidify(_ context.Context, index uint32, done func()) bool {
	r.mu.Lock()
	r.solidified = append(r.solidified, index)
	r.mu.Unlock()
	go done()
	return true
}

func (r *syncRecorder) archive(_ context.Context, data *domain.MilestoneData) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archived = append(r.archived, data.MilestoneIndex)
	return true
}

func synced(index uint32, logged bool) domain.SyncRecord {
	marker := uint8(0)
	rec := domain.SyncRecord{MilestoneIndex: index, SyncedBy: &marker}
	if logged {
		rec.LoggedBy = &marker
	}
	return rec
}

func TestSyncer_FillsGapsAndRearchives(t *testing.T) {
	store := newMemoryStore()
	store.records = []domain.SyncRecord{synced(2, false), synced(4, true)}
	store.completed[2] = &domain.MilestoneData{MilestoneIndex: 2}

	rec := &syncRecorder{}
	s := newSyncer(domain.SyncRange{From: 1, To: 100}, time.Hour, store, func() uint32 { return 6 }, rec.solidify, rec.archive)
	s.syncOnce(context.Background())

	// 6 is the live milestone and is left to the feeds.
	assert.Equal(t, []uint32{1, 3, 5}, rec.solidified)
	assert.Equal(t, []uint32{2}, rec.archived)
	assert.Len(t, s.window, 0)
}

func TestSyncer_SkipsWithoutLatest(t *testing.T) {
	rec := &syncRecorder{}
	s := newSyncer(domain.DefaultSyncRange(), time.Hour, newMemoryStore(), func() uint32 { return 0 }, rec.solidify, rec.archive)
	s.syncOnce(context.Background())
	assert.Empty(t, rec.solidified)

	s.latest = func() uint32 { return 1 }
	s.syncOnce(context.Background())
	assert.Empty(t, rec.solidified)
}

func TestSyncer_RespectsSyncRange(t *testing.T) {
	rec := &syncRecorder{}
	s := newSyncer(domain.SyncRange{From: 3, To: 5}, time.Hour, newMemoryStore(), func() uint32 { return 50 }, rec.solidify, rec.archive)
	s.syncOnce(context.Background())
	assert.Equal(t, []uint32{3, 4}, rec.solidified)
}

func TestSyncer_RejectedRequestReleasesWindow(t *testing.T) {
	rec := &syncRecorder{}
	reject := func(context.Context, uint32, func()) bool { return false }
	s := newSyncer(domain.SyncRange{From: 1, To: 100}, time.Hour, newMemoryStore(), func() uint32 { return 20 }, reject, rec.archive)
	s.syncOnce(context.Background())
	assert.Len(t, s.window, 0)
}
