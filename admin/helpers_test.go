package admin

import (
	"context"
	"sync"

	"permanode/broker"
	"permanode/config"
)

type fakeBroker struct {
	mu          sync.Mutex
	topologies  []broker.Topology
	reconciled  []config.MqttBrokersConfig
	topologyErr error
	shutdowns   int
	exits       int
}

func (f *fakeBroker) ApplyTopology(t broker.Topology) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topologyErr != nil {
		return f.topologyErr
	}
	f.topologies = append(f.topologies, t)
	return nil
}

func (f *fakeBroker) Reconcile(want config.MqttBrokersConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconciled = append(f.reconciled, want)
	return nil
}

func (f *fakeBroker) Status() broker.Service {
	return broker.Service{Name: broker.Name, Status: broker.StatusRunning}
}

func (f *fakeBroker) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdowns++
}

func (f *fakeBroker) Exit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exits++
}

type fakeStorage struct {
	added    []string
	removed  []string
	rebuilds int
	nodes    []string
	err      error
}

func (f *fakeStorage) AddNode(_ context.Context, addr string) error {
	f.added = append(f.added, addr)
	return f.err
}

func (f *fakeStorage) RemoveNode(_ context.Context, addr string) error {
	f.removed = append(f.removed, addr)
	return f.err
}

func (f *fakeStorage) RebuildRing(context.Context) error {
	f.rebuilds++
	return f.err
}

func (f *fakeStorage) UseNodes(_ context.Context, nodes []string) error {
	f.nodes = nodes
	return f.err
}
