package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permanode/admin"
	"permanode/broker"
	"permanode/cli/output"
	"permanode/config"
	"permanode/domain"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, configPath string, args ...string) result {
	t.Helper()
	var out, errb bytes.Buffer
	root := NewRootCmd("1.2.3")
	root.SetOut(&out)
	root.SetErr(&errb)
	root.SetArgs(append([]string{"--color", "never", "--timeout", "2s", "--config", configPath}, args...))
	err := root.Execute()
	return result{stdout: out.String(), stderr: errb.String(), err: err}
}

func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Save(path))
	return path
}

type recordingHandler struct {
	mu     sync.Mutex
	cmds   []admin.Command
	reject string
}

func (h *recordingHandler) Handle(_ context.Context, cmd admin.Command) admin.Reply {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmds = append(h.cmds, cmd)
	if h.reject != "" {
		return admin.Reply{Error: h.reject}
	}
	if cmd.Action == admin.ActionStatus {
		return admin.Reply{OK: true, Status: &broker.Service{
			Name:   broker.Name,
			Status: broker.StatusDegraded,
			Children: []broker.Service{
				{Name: "MqttMessages(tcp://a:1883)", Status: broker.StatusRunning},
				{Name: "MqttMessagesReferenced(tcp://a:1883)", Status: broker.StatusDegraded},
				{Name: "Collector-0", Status: broker.StatusRunning},
			},
		}}
	}
	return admin.Reply{OK: true}
}

func (h *recordingHandler) received() []admin.Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]admin.Command(nil), h.cmds...)
}

// startDaemon serves the admin channel and returns a config file pointing at it.
func startDaemon(t *testing.T, h *recordingHandler) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	srv := admin.NewServer(config.WebsocketConfig{Address: ln.Addr().String()}, h)
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return writeConfig(t, func(c *config.Config) { c.Websocket.Address = ln.Addr().String() })
}

func TestVersion(t *testing.T) {
	SetBuildInfo("abc1234", "2026-02-06T07:16:38Z")
	path := writeConfig(t, nil)

	res := run(t, path, "version")
	require.NoError(t, res.err)
	for _, field := range []string{"permanode-cli version 1.2.3", "commit:     abc1234", "go version:", "platform:"} {
		assert.Contains(t, res.stdout, field)
	}

	res = run(t, path, "version", "--short")
	require.NoError(t, res.err)
	assert.Equal(t, "1.2.3\n", res.stdout)

	res = run(t, path, "version", "--json")
	require.NoError(t, res.err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "abc1234", info["commit"])
}

func TestConfig_PrintAndPath(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.Websocket.AuthSecret = "hunter2" })

	res := run(t, path, "config")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "storage:")
	assert.Contains(t, res.stdout, "127.0.0.1:9042")
	assert.NotContains(t, res.stdout, "hunter2")

	res = run(t, path, "config", "--print", "--json")
	require.NoError(t, res.err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &decoded))
	assert.Contains(t, decoded, "Storage")
	assert.NotContains(t, res.stdout, "hunter2")

	res = run(t, path, "config", "--path")
	require.NoError(t, res.err)
	assert.Equal(t, path+"\n", res.stdout)
}

func TestConfig_RollbackWithoutDaemon(t *testing.T) {
	path := writeConfig(t, nil)

	res := run(t, path, "nodes", "--add", "10.0.0.2:9042", "--skip-connection")
	require.NoError(t, res.err)

	res = run(t, path, "config", "--rollback", "--skip-connection")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "rolled back")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:9042"}, cfg.Storage.Nodes)
}

func TestNodes_SkipConnection(t *testing.T) {
	path := writeConfig(t, nil)

	res := run(t, path, "nodes", "--add", "10.0.0.2:9042", "--remove", "127.0.0.1:9042", "--skip-connection", "--list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "10.0.0.2:9042")
	assert.NotContains(t, res.stdout, "127.0.0.1:9042")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.2:9042"}, cfg.Storage.Nodes)
}

func TestNodes_Validation(t *testing.T) {
	path := writeConfig(t, nil)

	res := run(t, path, "nodes")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitUsageError, output.ExitCode(res.err))

	res = run(t, path, "nodes", "--add", "no-port", "--skip-connection")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitUsageError, output.ExitCode(res.err))
}

func TestNodes_ThroughDaemon(t *testing.T) {
	h := &recordingHandler{}
	path := startDaemon(t, h)

	res := run(t, path, "nodes", "--add", "10.0.0.2:9042", "--remove", "10.0.0.1:9042")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, []admin.Command{
		admin.ScyllaAddNode("10.0.0.2:9042"),
		admin.ScyllaRemoveNode("10.0.0.1:9042"),
	}, h.received())
}

func TestBrokers_SkipConnection(t *testing.T) {
	path := writeConfig(t, nil)

	res := run(t, path, "brokers", "add", "--mqtt-address", "tcp://b:1883", "--mqtt-address", "tcp://c:1883", "--skip-connection")
	require.NoError(t, res.err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	for _, kind := range []domain.MqttType{domain.MqttMessages, domain.MqttMessagesReferenced} {
		assert.Equal(t, []string{"tcp://127.0.0.1:1883", "tcp://b:1883", "tcp://c:1883"}, cfg.Broker.MqttBrokers.For(kind))
	}

	res = run(t, path, "brokers", "remove", "--mqtt-address", "tcp://127.0.0.1:1883", "--skip-connection")
	require.NoError(t, res.err)

	res = run(t, path, "brokers", "list", "--skip-connection")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "tcp://b:1883")
	assert.Contains(t, res.stdout, "messages_referenced")
	assert.NotContains(t, res.stdout, "127.0.0.1")
}

func TestBrokers_InvalidURL(t *testing.T) {
	path := writeConfig(t, nil)

	for _, bad := range []string{"http://a:1883", "tcp://", "::"} {
		res := run(t, path, "brokers", "add", "--mqtt-address", bad, "--skip-connection")
		require.Error(t, res.err, bad)
		assert.Equal(t, output.ExitUsageError, output.ExitCode(res.err), bad)
	}
}

func TestBrokers_ThroughDaemon(t *testing.T) {
	h := &recordingHandler{}
	path := startDaemon(t, h)

	res := run(t, path, "brokers", "add", "--mqtt-address", "tcp://b:1883")
	require.NoError(t, res.err, res.stderr)
	res = run(t, path, "brokers", "remove", "--mqtt-address", "tcp://b:1883")
	require.NoError(t, res.err, res.stderr)

	assert.Equal(t, []admin.Command{
		admin.BrokerTopology(broker.AddMqttMessages, "tcp://b:1883"),
		admin.BrokerTopology(broker.AddMqttMessagesReferenced, "tcp://b:1883"),
		admin.BrokerTopology(broker.RemoveMqttMessages, "tcp://b:1883"),
		admin.BrokerTopology(broker.RemoveMqttMessagesReferenced, "tcp://b:1883"),
	}, h.received())

	res = run(t, path, "brokers", "list")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "MqttMessages(tcp://a:1883)")
	assert.Contains(t, res.stdout, "[Degraded]")
	assert.NotContains(t, res.stdout, "Collector-0")
}

func TestDaemonCommands(t *testing.T) {
	h := &recordingHandler{}
	path := startDaemon(t, h)

	res := run(t, path, "stop")
	require.NoError(t, res.err, res.stderr)
	res = run(t, path, "rebuild")
	require.NoError(t, res.err, res.stderr)
	res = run(t, path, "config", "--rollback")
	require.NoError(t, res.err, res.stderr)

	res = run(t, path, "status")
	require.NoError(t, res.err, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "PermanodeBroker [Degraded]"), res.stdout)
	assert.Contains(t, res.stdout, "Collector-0")

	assert.Equal(t, []admin.Command{
		admin.BrokerExit(),
		admin.ScyllaRebuildRing(),
		admin.Rollback(),
		admin.BrokerStatus(),
	}, h.received())
}

func TestDaemonRejects(t *testing.T) {
	path := startDaemon(t, &recordingHandler{reject: "node list unchanged"})

	res := run(t, path, "nodes", "--add", "10.0.0.2:9042")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitDaemonError, output.ExitCode(res.err))
	assert.Contains(t, res.err.Error(), "node list unchanged")
}

func TestDaemonUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	path := writeConfig(t, func(c *config.Config) { c.Websocket.Address = addr })

	res := run(t, path, "stop")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitDaemonError, output.ExitCode(res.err))
}

func TestArchiveImport_Validation(t *testing.T) {
	path := writeConfig(t, nil)

	res := run(t, path, "archive", "import")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitUsageError, output.ExitCode(res.err))

	res = run(t, path, "archive", "import", "--directory", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, res.err)
	assert.Equal(t, output.ExitUsageError, output.ExitCode(res.err))

	res = run(t, path, "archive", "import", "--directory", t.TempDir(), "--range", "9..3")
	require.Error(t, res.err)
	assert.Equal(t, output.ExitUsageError, output.ExitCode(res.err))
}

func TestStart_MissingDaemon(t *testing.T) {
	path := writeConfig(t, nil)

	res := run(t, path, "start", "--daemon", filepath.Join(t.TempDir(), "permanode"), "--service")
	require.Error(t, res.err)
}
