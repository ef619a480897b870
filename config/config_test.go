package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permanode/domain"
)

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "defaults should be written to disk")

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.Keyspaces, reloaded.Storage.Keyspaces)
	assert.Equal(t, cfg.Broker.SyncInterval, reloaded.Broker.SyncInterval)
	assert.Equal(t, cfg.Broker.SyncRange, reloaded.Broker.SyncRange)
}

func TestLoad_FromConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permanode.yaml")
	t.Setenv("CONFIG_PATH", path)
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  keyspaces:
    - name: my_mainnet
      data_centers:
        - name: USA
          replication_factor: 2
        - name: Canada
          replication_factor: 1
  nodes: ["10.0.0.1:9042", "10.0.0.2:9042"]
  thread_count:
    count: 4
broker:
  collectors_count: 4
  sync_range:
    from: 100
    to: 200
  sync_interval: 30s
`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	require.Len(t, cfg.Storage.Keyspaces, 1)
	assert.Equal(t, "my_mainnet", cfg.DefaultKeyspaceName())
	assert.Equal(t, "USA", cfg.Storage.Keyspaces[0].DataCenters[0].Name)
	assert.Equal(t, 2, cfg.Storage.Keyspaces[0].DataCenters[0].ReplicationFactor)
	assert.Equal(t, 4, cfg.Storage.ThreadCount.Resolve(16))
	assert.Equal(t, 4, cfg.Broker.CollectorsCount)
	assert.Equal(t, domain.SyncRange{From: 100, To: 200}, cfg.Broker.SyncRange)
	assert.Equal(t, 30*time.Second, cfg.Broker.SyncInterval)
	// untouched keys fall back to defaults
	assert.Equal(t, ":8080", cfg.API.Address)
	assert.Equal(t, "ONE", cfg.Storage.Consistency)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().Save(path))
	t.Setenv("PERMANODE_API_ADDRESS", ":9999")
	t.Setenv("PERMANODE_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.API.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("broker:\n  collectors_count: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collectors_count")
}

func TestSaveAndRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := Default()
	require.NoError(t, original.Save(path))

	changed := Default()
	changed.AddNode("10.0.0.9:9042")
	require.NoError(t, changed.Save(path))

	_, err := os.Stat(path + ".bak")
	require.NoError(t, err)

	current, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, current.Storage.Nodes, "10.0.0.9:9042")

	restored, err := Rollback(path)
	require.NoError(t, err)
	assert.Equal(t, original.Storage.Nodes, restored.Storage.Nodes)
}

func TestRollback_WithoutBackup(t *testing.T) {
	_, err := Rollback(filepath.Join(t.TempDir(), "config.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"no keyspaces", func(c *Config) { c.Storage.Keyspaces = nil }, true},
		{"empty keyspace name", func(c *Config) { c.Storage.Keyspaces[0].Name = "" }, true},
		{"bad keyspace name", func(c *Config) { c.Storage.Keyspaces[0].Name = "my-net" }, true},
		{"zero replication", func(c *Config) { c.Storage.Keyspaces[0].DataCenters[0].ReplicationFactor = 0 }, true},
		{"no nodes", func(c *Config) { c.Storage.Nodes = nil }, true},
		{"node without port", func(c *Config) { c.Storage.Nodes = []string{"10.0.0.1"} }, true},
		{"node with bad port", func(c *Config) { c.Storage.Nodes = []string{"10.0.0.1:99999"} }, true},
		{"unknown consistency", func(c *Config) { c.Storage.Consistency = "SOME" }, true},
		{"lowercase consistency", func(c *Config) { c.Storage.Consistency = "local_quorum" }, false},
		{"both thread counts", func(c *Config) { c.Storage.ThreadCount = ThreadCount{Count: 2, CoreMultiple: 1} }, true},
		{"no collectors", func(c *Config) { c.Broker.CollectorsCount = 0 }, true},
		{"inverted sync range", func(c *Config) { c.Broker.SyncRange = domain.SyncRange{From: 10, To: 5} }, true},
		{"zero sync start", func(c *Config) { c.Broker.SyncRange = domain.SyncRange{From: 0, To: 5} }, true},
		{"zero sync interval", func(c *Config) { c.Broker.SyncInterval = 0 }, true},
		{"negative solidify timeout", func(c *Config) { c.Broker.SolidifyTimeout = -time.Second }, true},
		{"negative request timeout", func(c *Config) { c.API.RequestTimeout = -time.Second }, true},
		{"no request timeout", func(c *Config) { c.API.RequestTimeout = 0 }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"page size above max", func(c *Config) { c.API.DefaultPageSize = 2000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestThreadCount_Resolve(t *testing.T) {
	assert.Equal(t, 3, ThreadCount{Count: 3}.Resolve(8))
	assert.Equal(t, 16, ThreadCount{CoreMultiple: 2}.Resolve(8))
	assert.Equal(t, 8, ThreadCount{}.Resolve(8))
	assert.Equal(t, 1, ThreadCount{}.Resolve(0))
}

func TestMqttBrokersConfig_AddRemove(t *testing.T) {
	var m MqttBrokersConfig
	assert.True(t, m.Add(domain.MqttMessages, "tcp://a:1883"))
	assert.False(t, m.Add(domain.MqttMessages, "tcp://a:1883"))
	assert.True(t, m.Add(domain.MqttMessagesReferenced, "tcp://a:1883"))
	assert.Equal(t, []string{"tcp://a:1883"}, m.For(domain.MqttMessages))

	assert.True(t, m.Remove(domain.MqttMessages, "tcp://a:1883"))
	assert.False(t, m.Remove(domain.MqttMessages, "tcp://a:1883"))
	assert.Empty(t, m.For(domain.MqttMessages))
	assert.Len(t, m.For(domain.MqttMessagesReferenced), 1)
}

func TestConfig_Nodes(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.AddNode("127.0.0.1:9042"))
	assert.True(t, cfg.AddNode("10.0.0.2:9042"))
	assert.True(t, cfg.RemoveNode("127.0.0.1:9042"))
	assert.Equal(t, []string{"10.0.0.2:9042"}, cfg.Storage.Nodes)
}

func TestValidateNodeAddress(t *testing.T) {
	assert.NoError(t, ValidateNodeAddress("10.0.0.1:9042"))
	assert.NoError(t, ValidateNodeAddress("scylla-0.scylla:9042"))
	assert.NoError(t, ValidateNodeAddress("[::1]:9042"))
	assert.Error(t, ValidateNodeAddress("10.0.0.1"))
	assert.Error(t, ValidateNodeAddress(":9042"))
	assert.Error(t, ValidateNodeAddress("host:port"))
}
