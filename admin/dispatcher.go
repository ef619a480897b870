package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"permanode/broker"
	"permanode/config"
)

// BrokerControl is the part of the broker reachable from the admin channel.
type BrokerControl interface {
	ApplyTopology(t broker.Topology) error
	Reconcile(want config.MqttBrokersConfig) error
	Status() broker.Service
	Shutdown()
	Exit()
}

// StorageControl changes the storage node list of the running daemon.
type StorageControl interface {
	AddNode(ctx context.Context, addr string) error
	RemoveNode(ctx context.Context, addr string) error
	RebuildRing(ctx context.Context) error
	UseNodes(ctx context.Context, nodes []string) error
}

// Handler answers one admin command.
type Handler interface {
	Handle(ctx context.Context, cmd Command) Reply
}

// Dispatcher routes commands to the broker, storage and configuration.
type Dispatcher struct {
	broker   BrokerControl
	storage  StorageControl
	rollback func() (*config.Config, error)
}

func NewDispatcher(b BrokerControl, s StorageControl, rollback func() (*config.Config, error)) *Dispatcher {
	return &Dispatcher{broker: b, storage: s, rollback: rollback}
}

func (d *Dispatcher) Handle(ctx context.Context, cmd Command) Reply {
	if err := cmd.Validate(); err != nil {
		return errorReply(err)
	}
	slog.InfoContext(ctx, "admin command", "target", cmd.Target, "action", cmd.Action, "change", cmd.Change, "value", cmd.Value)

	var err error
	switch cmd.Target {
	case TargetBroker:
		return d.handleBroker(cmd)
	case TargetScylla:
		err = d.handleScylla(ctx, cmd)
	case TargetGeneral:
		err = d.handleRollback(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "admin command failed", "command", cmd.String(), "error", err)
		return errorReply(err)
	}
	return okReply()
}

func (d *Dispatcher) handleBroker(cmd Command) Reply {
	switch cmd.Action {
	case ActionStatus:
		status := d.broker.Status()
		return Reply{OK: true, Status: &status}
	case ActionShutdown:
		d.broker.Shutdown()
	case ActionExitProgram:
		d.broker.Exit()
	case ActionTopology:
		t := broker.Topology{Kind: broker.TopologyKind(cmd.Change), URL: cmd.Value}
		if err := d.broker.ApplyTopology(t); err != nil {
			return errorReply(err)
		}
	}
	return okReply()
}

func (d *Dispatcher) handleScylla(ctx context.Context, cmd Command) error {
	if d.storage == nil {
		return errors.New("storage control is not available")
	}
	switch cmd.Change {
	case AddNode:
		return d.storage.AddNode(ctx, cmd.Value)
	case RemoveNode:
		return d.storage.RemoveNode(ctx, cmd.Value)
	default:
		return d.storage.RebuildRing(ctx)
	}
}

// handleRollback restores the previous configuration file and brings the
// feeds and storage nodes in line with it.
func (d *Dispatcher) handleRollback(ctx context.Context) error {
	if d.rollback == nil {
		return errors.New("rollback is not available")
	}
	cfg, err := d.rollback()
	if err != nil {
		return err
	}
	var errs []error
	if err := d.broker.Reconcile(cfg.Broker.MqttBrokers); err != nil {
		errs = append(errs, fmt.Errorf("feeds: %w", err))
	}
	if d.storage != nil {
		if err := d.storage.UseNodes(ctx, cfg.Storage.Nodes); err != nil {
			errs = append(errs, fmt.Errorf("storage nodes: %w", err))
		}
	}
	return errors.Join(errs...)
}
