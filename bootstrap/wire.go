package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"permanode/admin"
	"permanode/broker"
	"permanode/config"
	"permanode/driver"
	"permanode/gateway"
	"permanode/port"
	"permanode/usecase"
)

const (
	nodeRequestTimeout = 30 * time.Second
	mqttClientPrefix   = "permanode"
)

// Dependencies holds everything the daemon runs.
type Dependencies struct {
	Config *ConfigStore
	Logger *slog.Logger

	Scylla  *driver.ScyllaDriver
	Redis   *driver.RedisDriver
	Storage *gateway.StorageGateway
	Query   *usecase.QueryUsecase

	Broker *broker.Broker
	Admin  *admin.Server
}

// BuildDependencies connects storage and builds the broker, the query
// usecase and the admin server. exit is called for an ExitProgram command.
// The returned cleanup closes every connection.
func BuildDependencies(ctx context.Context, store *ConfigStore, log *slog.Logger, exit func()) (*Dependencies, func(), error) {
	cfg := store.Snapshot()

	scylla, err := driver.NewScyllaDriver(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting storage: %w", err)
	}
	if err := scylla.EnsureSchema(ctx); err != nil {
		scylla.Close()
		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	storage, err := gateway.NewStorageGateway(scylla, cfg.KeyspaceNames(), cfg.Storage.CacheSize)
	if err != nil {
		scylla.Close()
		return nil, nil, err
	}

	var redisDriver *driver.RedisDriver
	var stream port.StreamPort
	if cfg.Events.RedisURL != "" {
		redisDriver, err = driver.NewRedisDriverWithURL(cfg.Events.RedisURL, cfg.Events.MaxStreamLen)
		if err != nil {
			scylla.Close()
			return nil, nil, fmt.Errorf("connecting redis: %w", err)
		}
		if err := redisDriver.Ping(ctx); err != nil {
			log.Warn("redis is not reachable, events will be retried per publish", "error", err)
		}
		stream = redisDriver
	}
	events := gateway.NewEventGateway(stream)
	log.Info("event publisher configured", "enabled", events.Enabled())

	node := gateway.NewNodeGateway(driver.NewNodeClient(
		cfg.Broker.Endpoints,
		cfg.Broker.RetriesPerEndpoint,
		cfg.Broker.RequestsPerSecond,
		nodeRequestTimeout,
	))

	keyspace := storage.DefaultKeyspace()
	ingest := usecase.NewIngestUsecase(keyspace, events)
	milestones := usecase.NewMilestoneUsecase(keyspace, node, events)

	recovered, err := driver.NewArchiveFiles().RecoverParts(cfg.Broker.LogsDir)
	if err != nil {
		log.Warn("some archive parts could not be recovered", "dir", cfg.Broker.LogsDir, "error", err)
	}
	for _, r := range recovered {
		log.Info("archive part recovered", "range", r.String())
	}

	b, err := broker.New(broker.Options{
		Config:      cfg.Broker,
		Subscriber:  driver.NewMQTTDriver(mqttClientPrefix),
		Ingest:      ingest,
		Milestones:  milestones,
		OpenArchive: openArchive,
		Persist:     store.SaveBrokers,
		OnExit:      exit,
	})
	if err != nil {
		scylla.Close()
		if redisDriver != nil {
			_ = redisDriver.Close()
		}
		return nil, nil, err
	}

	control := &storageControl{store: store, scylla: scylla}
	dispatcher := admin.NewDispatcher(b, control, store.Rollback)

	deps := &Dependencies{
		Config:  store,
		Logger:  log,
		Scylla:  scylla,
		Redis:   redisDriver,
		Storage: storage,
		Query:   usecase.NewQueryUsecase(storage, cfg.API.DefaultPageSize, cfg.API.MaxPageSize, cfg.Broker.SyncRange),
		Broker:  b,
		Admin:   admin.NewServer(cfg.Websocket, dispatcher),
	}

	cleanup := func() {
		scylla.Close()
		if redisDriver != nil {
			if err := redisDriver.Close(); err != nil {
				log.Error("closing redis", "error", err)
			}
		}
	}
	return deps, cleanup, nil
}

func openArchive(dir string, from uint32) (broker.ArchiveLog, error) {
	return driver.CreateArchiveLog(dir, from)
}

// ConfigStore serialises changes to the configuration file made by the
// running daemon.
type ConfigStore struct {
	mu   sync.Mutex
	path string
	cfg  *config.Config
}

func NewConfigStore(path string, cfg *config.Config) *ConfigStore {
	return &ConfigStore{path: path, cfg: cfg}
}

// Snapshot returns a copy safe to read without the lock.
func (s *ConfigStore) Snapshot() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.cfg
	return &c
}

// Update applies fn and saves the file when fn reports a change.
func (s *ConfigStore) Update(fn func(*config.Config) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *s.cfg
	next.Storage.Nodes = append([]string(nil), s.cfg.Storage.Nodes...)
	if !fn(&next) {
		return nil
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := next.Save(s.path); err != nil {
		return err
	}
	s.cfg = &next
	return nil
}

// SaveBrokers persists the feed list after a topology change.
func (s *ConfigStore) SaveBrokers(brokers config.MqttBrokersConfig) error {
	return s.Update(func(c *config.Config) bool {
		c.Broker.MqttBrokers = brokers
		return true
	})
}

// Rollback restores the previous configuration file and adopts it.
func (s *ConfigStore) Rollback() (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := config.Rollback(s.path)
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	c := *cfg
	return &c, nil
}

// storageControl implements admin.StorageControl over the Scylla driver.
// Node changes are saved before the session is rebuilt.
type storageControl struct {
	mu     sync.Mutex
	store  *ConfigStore
	scylla reconnector
}

type reconnector interface {
	Reconnect(ctx context.Context, nodes []string) error
}

var errUnchanged = errors.New("node list unchanged")

func (c *storageControl) AddNode(ctx context.Context, addr string) error {
	if err := config.ValidateNodeAddress(addr); err != nil {
		return err
	}
	return c.change(ctx, func(cfg *config.Config) bool { return cfg.AddNode(addr) })
}

func (c *storageControl) RemoveNode(ctx context.Context, addr string) error {
	return c.change(ctx, func(cfg *config.Config) bool { return cfg.RemoveNode(addr) })
}

func (c *storageControl) RebuildRing(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scylla.Reconnect(ctx, c.store.Snapshot().Storage.Nodes)
}

func (c *storageControl) UseNodes(ctx context.Context, nodes []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scylla.Reconnect(ctx, nodes)
}

func (c *storageControl) change(ctx context.Context, fn func(*config.Config) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	err := c.store.Update(func(cfg *config.Config) bool {
		changed = fn(cfg)
		return changed
	})
	if err != nil {
		return err
	}
	if !changed {
		return errUnchanged
	}
	return c.scylla.Reconnect(ctx, c.store.Snapshot().Storage.Nodes)
}
