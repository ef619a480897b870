package broker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"permanode/domain"
	"permanode/driver"
	"permanode/port"
	apperrors "permanode/utils/errors"
)

func openArchive(dir string, from uint32) (ArchiveLog, error) {
	return driver.CreateArchiveLog(dir, from)
}

func fillID(b byte) domain.MessageID {
	var id domain.MessageID
	for i := range id {
		id[i] = b
	}
	return id
}

func packMessage(t *testing.T, msg *domain.Message) *domain.FullMessage {
	t.Helper()
	raw, err := msg.Pack()
	require.NoError(t, err)
	full, err := domain.NewFullMessage(raw, nil)
	require.NoError(t, err)
	return full
}

func indexationMessage(t *testing.T, nonce uint64, parents ...domain.MessageID) *domain.FullMessage {
	t.Helper()
	return packMessage(t, &domain.Message{
		NetworkID: 1,
		Parents:   parents,
		Payload:   &domain.IndexationPayload{Index: []byte("broker"), Data: []byte{byte(nonce)}},
		Nonce:     nonce,
	})
}

func milestoneMessage(t *testing.T, index uint32, parents ...domain.MessageID) (*domain.FullMessage, *domain.Milestone) {
	t.Helper()
	full := packMessage(t, &domain.Message{
		NetworkID: 1,
		Parents:   parents,
		Payload: &domain.MilestonePayload{
			Index:     index,
			Timestamp: 1_620_000_000 + uint64(index),
			Parents:   parents,
		},
		Nonce: uint64(index),
	})
	msg, err := full.Message()
	require.NoError(t, err)
	ms, err := domain.MilestoneFromMessage(full.MessageID, msg)
	require.NoError(t, err)
	return full, ms
}

func referencedBy(id domain.MessageID, index uint32) *domain.MessageMetadata {
	ref := index
	return &domain.MessageMetadata{MessageID: id, IsSolid: true, ReferencedByMilestoneIndex: &ref}
}

func metadataPayload(t *testing.T, meta *domain.MessageMetadata) []byte {
	t.Helper()
	b, err := json.Marshal(meta)
	require.NoError(t, err)
	return b
}

// memoryStore stands in for storage and the node API.
type memoryStore struct {
	mu         sync.Mutex
	raw        map[domain.MessageID][]byte
	meta       map[domain.MessageID]*domain.MessageMetadata
	node       map[domain.MessageID]*domain.FullMessage
	milestones map[uint32]*domain.Milestone
	completed  map[uint32]*domain.MilestoneData
	logged     map[uint32]string
	records    []domain.SyncRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		raw:        make(map[domain.MessageID][]byte),
		meta:       make(map[domain.MessageID]*domain.MessageMetadata),
		node:       make(map[domain.MessageID]*domain.FullMessage),
		milestones: make(map[uint32]*domain.Milestone),
		completed:  make(map[uint32]*domain.MilestoneData),
		logged:     make(map[uint32]string),
	}
}

func (s *memoryStore) Keyspace() string { return "permanode" }

func (s *memoryStore) StoreMessage(_ context.Context, full *domain.FullMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[full.MessageID] = full.Raw
	return nil
}

func (s *memoryStore) StoreMetadata(_ context.Context, meta *domain.MessageMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[meta.MessageID] = meta
	return nil
}

func (s *memoryStore) CompleteMilestone(_ context.Context, data *domain.MilestoneData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[data.MilestoneIndex] = data
	return nil
}

func (s *memoryStore) MarkLogged(_ context.Context, index uint32, archive string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logged[index] = archive
	return nil
}

func (s *memoryStore) LoadMilestoneData(_ context.Context, index uint32) (*domain.MilestoneData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.completed[index]; ok {
		return data, nil
	}
	return nil, apperrors.NewMilestoneNotFoundError("broker", "memoryStore", "LoadMilestoneData", nil)
}

func (s *memoryStore) SyncData(_ context.Context, r domain.SyncRange) (*domain.SyncData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.BuildSyncData(r, s.records), nil
}

func (s *memoryStore) StoredMessage(_ context.Context, id domain.MessageID) (*domain.FullMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.raw[id]
	meta, hasMeta := s.meta[id]
	if !ok || !hasMeta {
		return nil, apperrors.NewMessageNotFoundError("broker", "memoryStore", "StoredMessage", nil)
	}
	return domain.NewFullMessage(raw, meta)
}

func (s *memoryStore) FetchMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error) {
	s.mu.Lock()
	full, ok := s.node[id]
	s.mu.Unlock()
	if ok {
		return full, nil
	}
	return s.StoredMessage(ctx, id)
}

func (s *memoryStore) FetchMilestone(_ context.Context, index uint32) (*domain.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok := s.milestones[index]; ok {
		return ms, nil
	}
	return nil, apperrors.NewMilestoneNotFoundError("broker", "memoryStore", "FetchMilestone", nil)
}

// onNode makes full and its milestone, if any, fetchable from the node.
func (s *memoryStore) onNode(full *domain.FullMessage, ms *domain.Milestone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.node[full.MessageID] = full
	if ms != nil {
		s.milestones[ms.Index] = ms
	}
}

func (s *memoryStore) completedData(index uint32) (*domain.MilestoneData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.completed[index]
	return data, ok
}

func (s *memoryStore) loggedAs(index uint32) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.logged[index]
	return name, ok
}

type fakeSubscription struct {
	mu        sync.Mutex
	connected bool
	closed    bool
}

func (s *fakeSubscription) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected && !s.closed
}

func (s *fakeSubscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

type fakeSubscriber struct {
	mu       sync.Mutex
	handlers map[feedKey]port.FeedHandler
	status   map[feedKey]port.FeedStatusHandler
	subs     map[feedKey]*fakeSubscription
	fail     map[string]error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		handlers: make(map[feedKey]port.FeedHandler),
		status:   make(map[feedKey]port.FeedStatusHandler),
		subs:     make(map[feedKey]*fakeSubscription),
		fail:     make(map[string]error),
	}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, url string, kind domain.MqttType, onPayload port.FeedHandler, onStatus port.FeedStatusHandler) (port.FeedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[url]; err != nil {
		return nil, err
	}
	key := feedKey{kind: kind, url: url}
	sub := &fakeSubscription{connected: true}
	f.handlers[key] = onPayload
	f.status[key] = onStatus
	f.subs[key] = sub
	onStatus(true, nil)
	return sub, nil
}

func (f *fakeSubscriber) publish(t *testing.T, kind domain.MqttType, url string, payload []byte) {
	t.Helper()
	f.mu.Lock()
	handler, ok := f.handlers[feedKey{kind: kind, url: url}]
	f.mu.Unlock()
	require.True(t, ok, "no subscription for %s %s", kind, url)
	handler(payload)
}

func (f *fakeSubscriber) setConnected(kind domain.MqttType, url string, connected bool) {
	f.mu.Lock()
	onStatus := f.status[feedKey{kind: kind, url: url}]
	f.mu.Unlock()
	onStatus(connected, nil)
}

func (f *fakeSubscriber) closed(kind domain.MqttType, url string) bool {
	f.mu.Lock()
	sub, ok := f.subs[feedKey{kind: kind, url: url}]
	f.mu.Unlock()
	if !ok {
		return false
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.closed
}

const waitFor = 5 * time.Second

const tick = 10 * time.Millisecond
