// Package config loads, validates and persists the permanode configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"permanode/domain"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "./config.yaml"

// DefaultKeyspace names the keyspace used when none is configured.
const DefaultKeyspace = "permanode"

// Config represents the complete permanode configuration
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Broker    BrokerConfig    `mapstructure:"broker" yaml:"broker"`
	Websocket WebsocketConfig `mapstructure:"websocket" yaml:"websocket"`
	Events    EventsConfig    `mapstructure:"events" yaml:"events"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	OTel      OTelConfig      `mapstructure:"otel" yaml:"otel"`
}

// StorageConfig describes the Scylla cluster and its keyspaces.
type StorageConfig struct {
	Keyspaces       []KeyspaceConfig `mapstructure:"keyspaces" yaml:"keyspaces"`
	Nodes           []string         `mapstructure:"nodes" yaml:"nodes"`
	LocalDatacenter string           `mapstructure:"local_datacenter" yaml:"local_datacenter"`
	ThreadCount     ThreadCount      `mapstructure:"thread_count" yaml:"thread_count"`
	Consistency     string           `mapstructure:"consistency" yaml:"consistency"`
	Timeout         time.Duration    `mapstructure:"timeout" yaml:"timeout"`
	CacheSize       int              `mapstructure:"cache_size" yaml:"cache_size"`
	Username        string           `mapstructure:"username" yaml:"username,omitempty"`
	Password        string           `mapstructure:"password" yaml:"password,omitempty"`
}

// KeyspaceConfig is one keyspace and its per-datacenter replication.
type KeyspaceConfig struct {
	Name        string             `mapstructure:"name" yaml:"name"`
	DataCenters []DatacenterConfig `mapstructure:"data_centers" yaml:"data_centers"`
}

// DatacenterConfig is kept as a list entry so datacenter names keep their case.
type DatacenterConfig struct {
	Name              string `mapstructure:"name" yaml:"name"`
	ReplicationFactor int    `mapstructure:"replication_factor" yaml:"replication_factor"`
}

// ThreadCount is either a fixed count or a multiple of the available cores.
type ThreadCount struct {
	Count        int `mapstructure:"count" yaml:"count,omitempty"`
	CoreMultiple int `mapstructure:"core_multiple" yaml:"core_multiple,omitempty"`
}

// Resolve returns the number of threads for the given core count.
func (t ThreadCount) Resolve(cores int) int {
	if t.Count > 0 {
		return t.Count
	}
	multiple := t.CoreMultiple
	if multiple <= 0 {
		multiple = 1
	}
	if cores <= 0 {
		cores = 1
	}
	return multiple * cores
}

// APIConfig controls the HTTP query API.
type APIConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	DefaultPageSize int           `mapstructure:"default_page_size" yaml:"default_page_size"`
	MaxPageSize     int           `mapstructure:"max_page_size" yaml:"max_page_size"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// BrokerConfig controls ingestion, solidification, archiving and syncing.
type BrokerConfig struct {
	MqttBrokers        MqttBrokersConfig `mapstructure:"mqtt_brokers" yaml:"mqtt_brokers"`
	Endpoints          []string          `mapstructure:"endpoints" yaml:"endpoints"`
	RetriesPerEndpoint int               `mapstructure:"retries_per_endpoint" yaml:"retries_per_endpoint"`
	RequestsPerSecond  float64           `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	CollectorsCount    int               `mapstructure:"collectors_count" yaml:"collectors_count"`
	CacheCapacity      int               `mapstructure:"cache_capacity" yaml:"cache_capacity"`
	LogsDir            string            `mapstructure:"logs_dir" yaml:"logs_dir"`
	MaxLogSize         int64             `mapstructure:"max_log_size" yaml:"max_log_size"`
	SyncRange          domain.SyncRange  `mapstructure:"sync_range" yaml:"sync_range"`
	SyncInterval       time.Duration     `mapstructure:"sync_interval" yaml:"sync_interval"`
	SolidifyTimeout    time.Duration     `mapstructure:"solidify_timeout" yaml:"solidify_timeout"`
}

// MqttBrokersConfig lists feed URLs per feed type.
type MqttBrokersConfig struct {
	Messages           []string `mapstructure:"messages" yaml:"messages"`
	MessagesReferenced []string `mapstructure:"messages_referenced" yaml:"messages_referenced"`
}

// For returns the URLs configured for a feed type.
func (m *MqttBrokersConfig) For(t domain.MqttType) []string {
	if t == domain.MqttMessagesReferenced {
		return m.MessagesReferenced
	}
	return m.Messages
}

// Add appends url to the feed type's list unless present. It reports whether the list changed.
func (m *MqttBrokersConfig) Add(t domain.MqttType, url string) bool {
	list := m.listFor(t)
	for _, u := range *list {
		if u == url {
			return false
		}
	}
	*list = append(*list, url)
	return true
}

// Remove drops url from the feed type's list. It reports whether the list changed.
func (m *MqttBrokersConfig) Remove(t domain.MqttType, url string) bool {
	list := m.listFor(t)
	for i, u := range *list {
		if u == url {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

func (m *MqttBrokersConfig) listFor(t domain.MqttType) *[]string {
	if t == domain.MqttMessagesReferenced {
		return &m.MessagesReferenced
	}
	return &m.Messages
}

// WebsocketConfig controls the admin channel.
type WebsocketConfig struct {
	Address    string `mapstructure:"address" yaml:"address"`
	AuthSecret string `mapstructure:"auth_secret" yaml:"auth_secret,omitempty"`
}

// EventsConfig controls the Redis Streams publisher. An empty RedisURL disables it.
type EventsConfig struct {
	RedisURL     string `mapstructure:"redis_url" yaml:"redis_url"`
	MaxStreamLen int64  `mapstructure:"max_stream_len" yaml:"max_stream_len"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// OTelConfig contains OpenTelemetry exporter settings
type OTelConfig struct {
	Enabled      bool    `mapstructure:"enabled" yaml:"enabled"`
	ServiceName  string  `mapstructure:"service_name" yaml:"service_name"`
	Environment  string  `mapstructure:"environment" yaml:"environment"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

// Default returns the configuration written when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Keyspaces: []KeyspaceConfig{{
				Name:        DefaultKeyspace,
				DataCenters: []DatacenterConfig{{Name: "datacenter1", ReplicationFactor: 1}},
			}},
			Nodes:           []string{"127.0.0.1:9042"},
			LocalDatacenter: "datacenter1",
			ThreadCount:     ThreadCount{CoreMultiple: 1},
			Consistency:     "ONE",
			Timeout:         5 * time.Second,
			CacheSize:       10000,
		},
		API: APIConfig{
			Address:         ":8080",
			DefaultPageSize: 100,
			MaxPageSize:     1000,
			RateLimit:       50,
			RateBurst:       100,
			RequestTimeout:  10 * time.Second,
		},
		Broker: BrokerConfig{
			MqttBrokers: MqttBrokersConfig{
				Messages:           []string{"tcp://127.0.0.1:1883"},
				MessagesReferenced: []string{"tcp://127.0.0.1:1883"},
			},
			Endpoints:          []string{"http://127.0.0.1:14265"},
			RetriesPerEndpoint: 3,
			RequestsPerSecond:  20,
			CollectorsCount:    10,
			CacheCapacity:      100000,
			LogsDir:            "./logs",
			MaxLogSize:         1 << 30,
			SyncRange:          domain.DefaultSyncRange(),
			SyncInterval:       10 * time.Minute,
			SolidifyTimeout:    time.Minute,
		},
		Websocket: WebsocketConfig{
			Address: "127.0.0.1:8081",
		},
		Events: EventsConfig{
			MaxStreamLen: 100000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		OTel: OTelConfig{
			ServiceName:  "permanode",
			Environment:  "development",
			OTLPEndpoint: "http://localhost:4318",
			SampleRatio:  0.1,
		},
	}
}

// setDefaults mirrors Default so environment overrides apply to every key.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("storage.keyspaces", d.Storage.Keyspaces)
	v.SetDefault("storage.nodes", d.Storage.Nodes)
	v.SetDefault("storage.local_datacenter", d.Storage.LocalDatacenter)
	v.SetDefault("storage.consistency", d.Storage.Consistency)
	v.SetDefault("storage.timeout", d.Storage.Timeout)
	v.SetDefault("storage.cache_size", d.Storage.CacheSize)
	v.SetDefault("storage.username", "")
	v.SetDefault("storage.password", "")

	v.SetDefault("api.address", d.API.Address)
	v.SetDefault("api.default_page_size", d.API.DefaultPageSize)
	v.SetDefault("api.max_page_size", d.API.MaxPageSize)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.rate_burst", d.API.RateBurst)
	v.SetDefault("api.request_timeout", d.API.RequestTimeout)

	v.SetDefault("broker.mqtt_brokers.messages", d.Broker.MqttBrokers.Messages)
	v.SetDefault("broker.mqtt_brokers.messages_referenced", d.Broker.MqttBrokers.MessagesReferenced)
	v.SetDefault("broker.endpoints", d.Broker.Endpoints)
	v.SetDefault("broker.retries_per_endpoint", d.Broker.RetriesPerEndpoint)
	v.SetDefault("broker.requests_per_second", d.Broker.RequestsPerSecond)
	v.SetDefault("broker.collectors_count", d.Broker.CollectorsCount)
	v.SetDefault("broker.cache_capacity", d.Broker.CacheCapacity)
	v.SetDefault("broker.logs_dir", d.Broker.LogsDir)
	v.SetDefault("broker.max_log_size", d.Broker.MaxLogSize)
	v.SetDefault("broker.sync_range.from", d.Broker.SyncRange.From)
	v.SetDefault("broker.sync_range.to", d.Broker.SyncRange.To)
	v.SetDefault("broker.sync_interval", d.Broker.SyncInterval)
	v.SetDefault("broker.solidify_timeout", d.Broker.SolidifyTimeout)

	v.SetDefault("websocket.address", d.Websocket.Address)
	v.SetDefault("websocket.auth_secret", "")

	v.SetDefault("events.redis_url", d.Events.RedisURL)
	v.SetDefault("events.max_stream_len", d.Events.MaxStreamLen)

	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("otel.enabled", d.OTel.Enabled)
	v.SetDefault("otel.service_name", d.OTel.ServiceName)
	v.SetDefault("otel.environment", d.OTel.Environment)
	v.SetDefault("otel.otlp_endpoint", d.OTel.OTLPEndpoint)
	v.SetDefault("otel.sample_ratio", d.OTel.SampleRatio)
}

// ResolvePath picks the explicit path, then CONFIG_PATH, then DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the configuration file. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	path = ResolvePath(path)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PERMANODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	d := Default()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Storage.ThreadCount == (ThreadCount{}) {
		cfg.Storage.ThreadCount = d.Storage.ThreadCount
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to path, keeping the previous file as path.bak.
func (c *Config) Save(path string) error {
	path = ResolvePath(path)

	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}

	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(backupPath(path), prev, 0o644); err != nil {
			return fmt.Errorf("writing config backup: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading previous config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Rollback restores path.bak over path and returns the restored configuration.
func Rollback(path string) (*Config, error) {
	path = ResolvePath(path)

	prev, err := os.ReadFile(backupPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no previous config to roll back to at %s", backupPath(path))
		}
		return nil, fmt.Errorf("reading config backup: %w", err)
	}

	var restored Config
	if err := yaml.Unmarshal(prev, &restored); err != nil {
		return nil, fmt.Errorf("parsing config backup: %w", err)
	}
	if err := restored.Validate(); err != nil {
		return nil, fmt.Errorf("validating config backup: %w", err)
	}

	if err := os.WriteFile(path, prev, 0o644); err != nil {
		return nil, fmt.Errorf("restoring config: %w", err)
	}
	return Load(path)
}

func backupPath(path string) string {
	return path + ".bak"
}

// KeyspaceNames returns the configured keyspace names in order.
func (c *Config) KeyspaceNames() []string {
	names := make([]string, 0, len(c.Storage.Keyspaces))
	for _, ks := range c.Storage.Keyspaces {
		names = append(names, ks.Name)
	}
	return names
}

// DefaultKeyspaceName is the first configured keyspace, or DefaultKeyspace.
func (c *Config) DefaultKeyspaceName() string {
	if len(c.Storage.Keyspaces) > 0 && c.Storage.Keyspaces[0].Name != "" {
		return c.Storage.Keyspaces[0].Name
	}
	return DefaultKeyspace
}

// AddNode adds a storage node address unless present. It reports whether the list changed.
func (c *Config) AddNode(addr string) bool {
	for _, n := range c.Storage.Nodes {
		if n == addr {
			return false
		}
	}
	c.Storage.Nodes = append(c.Storage.Nodes, addr)
	return true
}

// RemoveNode drops a storage node address. It reports whether the list changed.
func (c *Config) RemoveNode(addr string) bool {
	for i, n := range c.Storage.Nodes {
		if n == addr {
			c.Storage.Nodes = append(c.Storage.Nodes[:i], c.Storage.Nodes[i+1:]...)
			return true
		}
	}
	return false
}
