package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"permanode/config"
	"permanode/domain"
	"permanode/logger"
	"permanode/metrics"
	"permanode/port"
)

// Name is the service name reported in status snapshots.
const Name = "PermanodeBroker"

// ErrNotRunning is returned for commands sent before Run or after it returned.
var ErrNotRunning = errors.New("broker is not running")

// TopologyKind is the feed change requested by a Topology command.
type TopologyKind string

const (
	AddMqttMessages              TopologyKind = "AddMqttMessages"
	AddMqttMessagesReferenced    TopologyKind = "AddMqttMessagesReferenced"
	RemoveMqttMessages           TopologyKind = "RemoveMqttMessages"
	RemoveMqttMessagesReferenced TopologyKind = "RemoveMqttMessagesReferenced"
)

// Topology adds or removes one MQTT feed.
type Topology struct {
	Kind TopologyKind
	URL  string
}

func (t Topology) key() (feedKey, bool, error) {
	switch t.Kind {
	case AddMqttMessages:
		return feedKey{kind: domain.MqttMessages, url: t.URL}, true, nil
	case AddMqttMessagesReferenced:
		return feedKey{kind: domain.MqttMessagesReferenced, url: t.URL}, true, nil
	case RemoveMqttMessages:
		return feedKey{kind: domain.MqttMessages, url: t.URL}, false, nil
	case RemoveMqttMessagesReferenced:
		return feedKey{kind: domain.MqttMessagesReferenced, url: t.URL}, false, nil
	}
	return feedKey{}, false, fmt.Errorf("unknown topology %q", t.Kind)
}

// Options wires the broker to storage, the node API and the feeds.
type Options struct {
	Config      config.BrokerConfig
	Subscriber  port.FeedSubscriber
	Ingest      Ingester
	Milestones  MilestoneService
	OpenArchive ArchiveOpener
	// Persist saves the feed list after a topology change. Optional.
	Persist func(config.MqttBrokersConfig) error
	// OnExit is called once for an ExitProgram command. Optional.
	OnExit func()
}

// Broker supervises the feeds and the pipeline behind them.
type Broker struct {
	opts        Options
	collectors  []*Collector
	solidifiers []*Solidifier
	archiver    *Archiver
	syncer      *Syncer

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	feeds   map[feedKey]*feed
	brokers config.MqttBrokersConfig

	latest   atomic.Uint32
	exitOnce sync.Once
	done     chan struct{}
	state    statusBox
}

// New builds the pipeline. Nothing runs until Run.
func New(opts Options) (*Broker, error) {
	if opts.Subscriber == nil || opts.Ingest == nil || opts.Milestones == nil || opts.OpenArchive == nil {
		return nil, errors.New("broker: subscriber, ingest, milestones and archive opener are required")
	}
	cfg := opts.Config
	count := cfg.CollectorsCount
	if count < 1 {
		return nil, fmt.Errorf("broker: collectors count must be positive, got %d", count)
	}

	b := &Broker{
		opts:    opts,
		feeds:   make(map[feedKey]*feed),
		brokers: cloneBrokers(cfg.MqttBrokers),
		done:    make(chan struct{}),
	}

	b.archiver = newArchiver(cfg.LogsDir, cfg.MaxLogSize, cfg.SolidifyTimeout, opts.OpenArchive, opts.Milestones)
	b.solidifiers = make([]*Solidifier, count)
	for i := range b.solidifiers {
		b.solidifiers[i] = newSolidifier(i, opts.Milestones, b.archiver.push, cfg.SolidifyTimeout)
	}
	perCollector := cfg.CacheCapacity / count
	b.collectors = make([]*Collector, count)
	for i := range b.collectors {
		c, err := newCollector(i, perCollector, opts.Ingest, b.solidifierFor, b.observe)
		if err != nil {
			return nil, fmt.Errorf("broker: collector %d: %w", i, err)
		}
		b.collectors[i] = c
	}
	b.syncer = newSyncer(cfg.SyncRange, cfg.SyncInterval, opts.Milestones, b.Latest, b.solidify, b.archiver.push)
	return b, nil
}

func (b *Broker) solidifierFor(index uint32) *Solidifier {
	return b.solidifiers[index%uint32(len(b.solidifiers))]
}

func (b *Broker) collectorFor(id domain.MessageID) *Collector {
	return b.collectors[int(id[0])%len(b.collectors)]
}

func (b *Broker) solidify(ctx context.Context, index uint32, done func()) bool {
	return b.solidifierFor(index).push(ctx, solidifyRequest{index: index, done: done})
}

// observe raises the latest milestone index.
func (b *Broker) observe(index uint32) {
	for {
		cur := b.latest.Load()
		if index <= cur {
			return
		}
		if b.latest.CompareAndSwap(cur, index) {
			metrics.ObserveMilestone(index)
			return
		}
	}
}

// Latest is the highest milestone index seen on the feeds.
func (b *Broker) Latest() uint32 { return b.latest.Load() }

// Done is closed when Run has returned.
func (b *Broker) Done() <-chan struct{} { return b.done }

// Run subscribes to the configured feeds and blocks until ctx is cancelled
// or Shutdown is called.
func (b *Broker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.mu.Lock()
	if b.ctx != nil {
		b.mu.Unlock()
		return errors.New("broker: already started")
	}
	b.ctx, b.cancel = ctx, cancel
	b.mu.Unlock()
	defer close(b.done)

	b.state.set(StatusInitializing)
	slog.InfoContext(ctx, "broker starting",
		"collectors", len(b.collectors),
		"logs_dir", b.opts.Config.LogsDir,
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range b.collectors {
		g.Go(func() error { return c.run(logger.WithComponent(gctx, c.Name())) })
	}
	for _, s := range b.solidifiers {
		g.Go(func() error { return s.run(logger.WithComponent(gctx, s.Name())) })
	}
	g.Go(func() error { return b.archiver.run(logger.WithComponent(gctx, b.archiver.Name())) })
	g.Go(func() error { return b.syncer.run(logger.WithComponent(gctx, b.syncer.Name())) })

	b.mu.Lock()
	for _, kind := range []domain.MqttType{domain.MqttMessages, domain.MqttMessagesReferenced} {
		for _, url := range b.brokers.For(kind) {
			if err := b.subscribeLocked(ctx, feedKey{kind: kind, url: url}); err != nil {
				slog.ErrorContext(ctx, "feed subscription failed", "url", url, "type", string(kind), "error", err)
			}
		}
	}
	b.mu.Unlock()
	b.state.set(StatusRunning)

	<-gctx.Done()
	b.state.set(StatusStopping)

	b.mu.Lock()
	for key, f := range b.feeds {
		f.sub.Close()
		delete(b.feeds, key)
	}
	b.mu.Unlock()

	err := g.Wait()
	b.state.set(StatusStopped)
	slog.InfoContext(ctx, "broker stopped")
	return err
}

func (b *Broker) subscribeLocked(ctx context.Context, key feedKey) error {
	if _, ok := b.feeds[key]; ok {
		return fmt.Errorf("already subscribed to %s", key.name())
	}
	f := &feed{key: key}
	ctx = logger.WithFeedURL(ctx, key.url)
	onPayload := func(payload []byte) { b.dispatch(ctx, key.kind, payload) }
	onStatus := func(connected bool, err error) {
		f.connected.Store(connected)
		if err != nil {
			slog.WarnContext(ctx, "feed connection lost", "feed", key.name(), "error", err)
		}
	}
	sub, err := b.opts.Subscriber.Subscribe(ctx, key.url, key.kind, onPayload, onStatus)
	if err != nil {
		return err
	}
	f.sub = sub
	if sub.IsConnected() {
		f.connected.Store(true)
	}
	b.feeds[key] = f
	return nil
}

// dispatch hands a feed payload to the collector owning its message id.
func (b *Broker) dispatch(ctx context.Context, kind domain.MqttType, payload []byte) {
	if kind == domain.MqttMessagesReferenced {
		meta, err := domain.ParseMetadata(payload)
		if err != nil {
			slog.WarnContext(ctx, "dropping malformed metadata", "error", err)
			return
		}
		b.collectorFor(meta.MessageID).push(ctx, collectorItem{meta: meta})
		return
	}
	id := domain.ComputeMessageID(payload)
	b.collectorFor(id).push(ctx, collectorItem{raw: payload})
}

// ApplyTopology adds or removes a feed and persists the feed list.
func (b *Broker) ApplyTopology(t Topology) error {
	key, add, err := t.key()
	if err != nil {
		return err
	}
	if key.url == "" {
		return errors.New("topology: empty mqtt address")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil || b.ctx.Err() != nil {
		return ErrNotRunning
	}

	next := cloneBrokers(b.brokers)
	if add {
		if err := b.subscribeLocked(b.ctx, key); err != nil {
			return err
		}
		next.Add(key.kind, key.url)
	} else {
		f, ok := b.feeds[key]
		if !ok {
			return fmt.Errorf("not subscribed to %s", key.name())
		}
		f.sub.Close()
		delete(b.feeds, key)
		next.Remove(key.kind, key.url)
	}
	b.brokers = next
	slog.InfoContext(b.ctx, "feed topology changed", "topology", string(t.Kind), "url", t.URL)

	if b.opts.Persist != nil {
		if err := b.opts.Persist(cloneBrokers(next)); err != nil {
			return fmt.Errorf("persisting feeds: %w", err)
		}
	}
	return nil
}

// Reconcile subscribes and unsubscribes until the feeds match want. Used
// after a configuration rollback; nothing is persisted.
func (b *Broker) Reconcile(want config.MqttBrokersConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil || b.ctx.Err() != nil {
		return ErrNotRunning
	}

	wanted := make(map[feedKey]struct{})
	for _, kind := range []domain.MqttType{domain.MqttMessages, domain.MqttMessagesReferenced} {
		for _, url := range want.For(kind) {
			wanted[feedKey{kind: kind, url: url}] = struct{}{}
		}
	}

	for key, f := range b.feeds {
		if _, ok := wanted[key]; !ok {
			f.sub.Close()
			delete(b.feeds, key)
		}
	}
	var errs []error
	for key := range wanted {
		if _, ok := b.feeds[key]; ok {
			continue
		}
		if err := b.subscribeLocked(b.ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key.name(), err))
		}
	}
	b.brokers = cloneBrokers(want)
	return errors.Join(errs...)
}

// Shutdown stops the broker. Run returns once every component has exited.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Exit stops the broker and asks the program to exit.
func (b *Broker) Exit() {
	b.Shutdown()
	b.exitOnce.Do(func() {
		if b.opts.OnExit != nil {
			b.opts.OnExit()
		}
	})
}

// Status returns a snapshot of the broker and its components.
func (b *Broker) Status() Service {
	b.mu.Lock()
	feeds := make([]Service, 0, len(b.feeds))
	kinds := make(map[domain.MqttType]bool)
	degraded := false
	for _, f := range b.feeds {
		svc := f.service()
		feeds = append(feeds, svc)
		kinds[f.key.kind] = true
		if svc.Status != StatusRunning {
			degraded = true
		}
	}
	b.mu.Unlock()
	sortServices(feeds)

	status := b.state.get()
	if status == StatusRunning && (degraded || !kinds[domain.MqttMessages] || !kinds[domain.MqttMessagesReferenced]) {
		status = StatusDegraded
	}

	children := feeds
	for _, c := range b.collectors {
		children = append(children, Service{Name: c.Name(), Status: c.state.get()})
	}
	for _, s := range b.solidifiers {
		children = append(children, Service{Name: s.Name(), Status: s.state.get()})
	}
	children = append(children,
		Service{Name: b.archiver.Name(), Status: b.archiver.state.get()},
		Service{Name: b.syncer.Name(), Status: b.syncer.state.get()},
	)
	return Service{Name: Name, Status: status, Children: children}
}

// Feeds returns the current feed list.
func (b *Broker) Feeds() config.MqttBrokersConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneBrokers(b.brokers)
}

func cloneBrokers(c config.MqttBrokersConfig) config.MqttBrokersConfig {
	return config.MqttBrokersConfig{
		Messages:           append([]string(nil), c.Messages...),
		MessagesReferenced: append([]string(nil), c.MessagesReferenced...),
	}
}

func sortServices(s []Service) {
	slices.SortFunc(s, func(a, b Service) int { return strings.Compare(a.Name, b.Name) })
}
