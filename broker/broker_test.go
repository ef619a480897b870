package broker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permanode/config"
	"permanode/domain"
)

const (
	messagesURL   = "tcp://feed-a:1883"
	referencedURL = "tcp://feed-b:1883"
)

type testBroker struct {
	*Broker
	store     *memoryStore
	feeds     *fakeSubscriber
	dir       string
	persisted []config.MqttBrokersConfig
	errc      chan error
	cancel    context.CancelFunc
}

func startBroker(t *testing.T, mutate func(*config.BrokerConfig)) *testBroker {
	t.Helper()
	cfg := config.Default().Broker
	cfg.MqttBrokers = config.MqttBrokersConfig{
		Messages:           []string{messagesURL},
		MessagesReferenced: []string{referencedURL},
	}
	cfg.CollectorsCount = 3
	cfg.CacheCapacity = 300
	cfg.LogsDir = t.TempDir()
	cfg.SolidifyTimeout = 50 * time.Millisecond
	cfg.SyncInterval = time.Hour
	if mutate != nil {
		mutate(&cfg)
	}

	tb := &testBroker{
		store: newMemoryStore(),
		feeds: newFakeSubscriber(),
		dir:   cfg.LogsDir,
		errc:  make(chan error, 1),
	}
	b, err := New(Options{
		Config:      cfg,
		Subscriber:  tb.feeds,
		Ingest:      tb.store,
		Milestones:  tb.store,
		OpenArchive: openArchive,
		Persist: func(c config.MqttBrokersConfig) error {
			tb.persisted = append(tb.persisted, c)
			return nil
		},
	})
	require.NoError(t, err)
	tb.Broker = b

	ctx, cancel := context.WithCancel(context.Background())
	tb.cancel = cancel
	go func() { tb.errc <- b.Run(ctx) }()
	t.Cleanup(tb.stop)

	require.Eventually(t, func() bool { return b.Status().Status.IsRunning() }, waitFor, tick)
	return tb
}

func (tb *testBroker) stop() {
	tb.cancel()
	select {
	case <-tb.Done():
	case <-time.After(waitFor):
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	cfg := config.Default().Broker
	cfg.CollectorsCount = 0
	_, err = New(Options{
		Config:      cfg,
		Subscriber:  newFakeSubscriber(),
		Ingest:      newMemoryStore(),
		Milestones:  newMemoryStore(),
		OpenArchive: openArchive,
	})
	assert.Error(t, err)
}

func TestBroker_SolidifiesAndArchivesMilestone(t *testing.T) {
	tb := startBroker(t, nil)

	boundary := indexationMessage(t, 1, fillID(0x01))
	cone := indexationMessage(t, 2, boundary.MessageID)
	root, ms := milestoneMessage(t, 5, cone.MessageID)

	tb.feeds.publish(t, domain.MqttMessages, messagesURL, boundary.Raw)
	tb.feeds.publish(t, domain.MqttMessages, messagesURL, cone.Raw)
	tb.feeds.publish(t, domain.MqttMessagesReferenced, referencedURL, metadataPayload(t, referencedBy(boundary.MessageID, 4)))
	tb.feeds.publish(t, domain.MqttMessagesReferenced, referencedURL, metadataPayload(t, referencedBy(cone.MessageID, 5)))
	tb.feeds.publish(t, domain.MqttMessages, messagesURL, root.Raw)
	tb.feeds.publish(t, domain.MqttMessagesReferenced, referencedURL, metadataPayload(t, referencedBy(root.MessageID, 5)))

	require.Eventually(t, func() bool {
		_, ok := tb.store.loggedAs(5)
		return ok
	}, waitFor, tick)

	data, ok := tb.store.completedData(5)
	require.True(t, ok)
	assert.Equal(t, ms, data.Milestone)
	ids := make([]domain.MessageID, 0, len(data.Messages))
	for _, m := range data.Messages {
		ids = append(ids, m.MessageID)
	}
	assert.ElementsMatch(t, []domain.MessageID{root.MessageID, cone.MessageID}, ids)
	assert.Equal(t, uint32(5), tb.Latest())

	name, _ := tb.store.loggedAs(5)
	assert.Equal(t, "5to6.part", name)

	tb.stop()
	_, err := os.Stat(filepath.Join(tb.dir, "5to6.log.zst"))
	assert.NoError(t, err)
}

func TestBroker_SolidifiesFromNodeAfterTimeout(t *testing.T) {
	tb := startBroker(t, nil)

	ctx := context.Background()
	older := indexationMessage(t, 4, fillID(0x02))
	require.NoError(t, tb.store.StoreMessage(ctx, older))
	require.NoError(t, tb.store.StoreMetadata(ctx, referencedBy(older.MessageID, 7)))

	missing := indexationMessage(t, 3, older.MessageID)
	root, _ := milestoneMessage(t, 8, missing.MessageID)

	withMeta := *missing
	withMeta.Metadata = referencedBy(missing.MessageID, 8)
	tb.store.onNode(&withMeta, nil)

	tb.feeds.publish(t, domain.MqttMessages, messagesURL, root.Raw)
	tb.feeds.publish(t, domain.MqttMessagesReferenced, referencedURL, metadataPayload(t, referencedBy(root.MessageID, 8)))

	require.Eventually(t, func() bool {
		_, ok := tb.store.completedData(8)
		return ok
	}, waitFor, tick)

	data, _ := tb.store.completedData(8)
	assert.Len(t, data.Messages, 2)
}

func TestBroker_DropsMalformedPayloads(t *testing.T) {
	tb := startBroker(t, nil)

	tb.feeds.publish(t, domain.MqttMessages, messagesURL, []byte{0x01})
	tb.feeds.publish(t, domain.MqttMessagesReferenced, referencedURL, []byte("{not json"))

	assert.Never(t, func() bool {
		tb.store.mu.Lock()
		defer tb.store.mu.Unlock()
		return len(tb.store.raw) > 0 || len(tb.store.meta) > 0
	}, 100*time.Millisecond, tick)
}

func TestBroker_ApplyTopology(t *testing.T) {
	tb := startBroker(t, nil)

	require.NoError(t, tb.ApplyTopology(Topology{Kind: AddMqttMessages, URL: "tcp://feed-c:1883"}))
	assert.Equal(t, []string{messagesURL, "tcp://feed-c:1883"}, tb.Feeds().Messages)
	require.Len(t, tb.persisted, 1)
	assert.Equal(t, []string{messagesURL, "tcp://feed-c:1883"}, tb.persisted[0].Messages)

	err := tb.ApplyTopology(Topology{Kind: AddMqttMessages, URL: "tcp://feed-c:1883"})
	assert.Error(t, err)

	require.NoError(t, tb.ApplyTopology(Topology{Kind: RemoveMqttMessagesReferenced, URL: referencedURL}))
	assert.True(t, tb.feeds.closed(domain.MqttMessagesReferenced, referencedURL))
	assert.Empty(t, tb.Feeds().MessagesReferenced)
	assert.Equal(t, StatusDegraded, tb.Status().Status)

	err = tb.ApplyTopology(Topology{Kind: RemoveMqttMessages, URL: "tcp://unknown:1883"})
	assert.Error(t, err)

	err = tb.ApplyTopology(Topology{Kind: "Bogus", URL: "tcp://x:1883"})
	assert.Error(t, err)
}

func TestBroker_StatusDegradedOnDisconnect(t *testing.T) {
	tb := startBroker(t, nil)

	st := tb.Status()
	assert.Equal(t, Name, st.Name)
	assert.Equal(t, StatusRunning, st.Status)
	// 2 feeds, 3 collectors, 3 solidifiers, archiver, syncer
	assert.Len(t, st.Children, 10)

	tb.feeds.setConnected(domain.MqttMessages, messagesURL, false)
	assert.Equal(t, StatusDegraded, tb.Status().Status)

	tb.feeds.setConnected(domain.MqttMessages, messagesURL, true)
	assert.Equal(t, StatusRunning, tb.Status().Status)
}

func TestBroker_FailedSubscriptionIsDegraded(t *testing.T) {
	cfg := config.Default().Broker
	cfg.CollectorsCount = 1
	cfg.LogsDir = t.TempDir()
	cfg.SyncInterval = time.Hour
	cfg.MqttBrokers = config.MqttBrokersConfig{Messages: []string{messagesURL}, MessagesReferenced: []string{referencedURL}}

	feeds := newFakeSubscriber()
	feeds.fail[referencedURL] = errors.New("connection refused")
	store := newMemoryStore()
	b, err := New(Options{Config: cfg, Subscriber: feeds, Ingest: store, Milestones: store, OpenArchive: openArchive})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = b.Run(ctx) }()
	defer func() {
		cancel()
		<-b.Done()
	}()

	require.Eventually(t, func() bool { return b.Status().Status == StatusDegraded }, waitFor, tick)
}

func TestBroker_Reconcile(t *testing.T) {
	tb := startBroker(t, nil)

	want := config.MqttBrokersConfig{
		Messages:           []string{"tcp://feed-d:1883"},
		MessagesReferenced: []string{referencedURL},
	}
	require.NoError(t, tb.Reconcile(want))

	assert.True(t, tb.feeds.closed(domain.MqttMessages, messagesURL))
	assert.False(t, tb.feeds.closed(domain.MqttMessagesReferenced, referencedURL))
	assert.Equal(t, want, tb.Feeds())
	assert.Empty(t, tb.persisted)
}

func TestBroker_ShutdownAndExit(t *testing.T) {
	exited := make(chan struct{})
	cfg := config.Default().Broker
	cfg.CollectorsCount = 1
	cfg.LogsDir = t.TempDir()
	cfg.SyncInterval = time.Hour
	store := newMemoryStore()
	b, err := New(Options{
		Config:      cfg,
		Subscriber:  newFakeSubscriber(),
		Ingest:      store,
		Milestones:  store,
		OpenArchive: openArchive,
		OnExit:      func() { close(exited) },
	})
	require.NoError(t, err)

	assert.ErrorIs(t, b.ApplyTopology(Topology{Kind: AddMqttMessages, URL: messagesURL}), ErrNotRunning)

	errc := make(chan error, 1)
	go func() { errc <- b.Run(context.Background()) }()
	require.Eventually(t, func() bool { return b.Status().Status.IsRunning() }, waitFor, tick)

	b.Exit()
	b.Exit()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("broker did not stop")
	}
	<-exited
	assert.Equal(t, StatusStopped, b.Status().Status)
	assert.Error(t, b.Run(context.Background()))
}
