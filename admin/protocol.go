// Package admin implements the websocket control channel of the daemon:
// the JSON command protocol, the server dispatching commands to the broker
// and storage, and the client used by permanode-cli.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"

	"permanode/broker"
)

// Command targets.
const (
	TargetBroker  = "PermanodeBroker"
	TargetScylla  = "Scylla"
	TargetGeneral = "General"
)

// Command actions.
const (
	ActionTopology    = "Topology"
	ActionShutdown    = "Shutdown"
	ActionExitProgram = "ExitProgram"
	ActionStatus      = "Status"
	ActionRollback    = "Rollback"
)

// Storage topology changes.
const (
	AddNode     = "AddNode"
	RemoveNode  = "RemoveNode"
	RebuildRing = "RebuildRing"
)

// Command is one admin message. On the wire it nests as
// {"<Target>":"<Action>"} or {"<Target>":{"Topology":{"<Change>":"<Value>"}}},
// with {"Scylla":{"Topology":"RebuildRing"}} as the one bare change.
type Command struct {
	Target string
	Action string
	Change string
	Value  string
}

func BrokerTopology(kind broker.TopologyKind, url string) Command {
	return Command{Target: TargetBroker, Action: ActionTopology, Change: string(kind), Value: url}
}

func BrokerShutdown() Command { return Command{Target: TargetBroker, Action: ActionShutdown} }

func BrokerExit() Command { return Command{Target: TargetBroker, Action: ActionExitProgram} }

func BrokerStatus() Command { return Command{Target: TargetBroker, Action: ActionStatus} }

func ScyllaAddNode(addr string) Command {
	return Command{Target: TargetScylla, Action: ActionTopology, Change: AddNode, Value: addr}
}

func ScyllaRemoveNode(addr string) Command {
	return Command{Target: TargetScylla, Action: ActionTopology, Change: RemoveNode, Value: addr}
}

func ScyllaRebuildRing() Command {
	return Command{Target: TargetScylla, Action: ActionTopology, Change: RebuildRing}
}

func Rollback() Command { return Command{Target: TargetGeneral, Action: ActionRollback} }

var brokerTopologies = map[string]bool{
	string(broker.AddMqttMessages):              true,
	string(broker.AddMqttMessagesReferenced):    true,
	string(broker.RemoveMqttMessages):           true,
	string(broker.RemoveMqttMessagesReferenced): true,
}

// Validate checks the command is one the daemon understands.
func (c Command) Validate() error {
	switch c.Target {
	case TargetBroker:
		switch c.Action {
		case ActionShutdown, ActionExitProgram, ActionStatus:
			return nil
		case ActionTopology:
			if !brokerTopologies[c.Change] {
				return fmt.Errorf("unknown broker topology %q", c.Change)
			}
			if c.Value == "" {
				return fmt.Errorf("%s requires an mqtt address", c.Change)
			}
			return nil
		}
	case TargetScylla:
		if c.Action != ActionTopology {
			break
		}
		switch c.Change {
		case RebuildRing:
			return nil
		case AddNode, RemoveNode:
			if c.Value == "" {
				return fmt.Errorf("%s requires a node address", c.Change)
			}
			return nil
		}
		return fmt.Errorf("unknown scylla topology %q", c.Change)
	case TargetGeneral:
		if c.Action == ActionRollback {
			return nil
		}
	default:
		return fmt.Errorf("unknown command target %q", c.Target)
	}
	return fmt.Errorf("unknown %s command %q", c.Target, c.Action)
}

// MarshalJSON encodes the nested wire form.
func (c Command) MarshalJSON() ([]byte, error) {
	var inner any = c.Action
	if c.Action == ActionTopology {
		var change any = c.Change
		if c.Change != RebuildRing {
			change = map[string]string{c.Change: c.Value}
		}
		inner = map[string]any{ActionTopology: change}
	}
	return json.Marshal(map[string]any{c.Target: inner})
}

// UnmarshalJSON decodes and validates the nested wire form.
func (c *Command) UnmarshalJSON(b []byte) error {
	target, body, err := single(b)
	if err != nil {
		return err
	}
	cmd := Command{Target: target}

	var action string
	if err := json.Unmarshal(body, &action); err == nil {
		cmd.Action = action
	} else {
		key, topology, err := single(body)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
		if key != ActionTopology {
			return fmt.Errorf("unknown %s command %q", target, key)
		}
		cmd.Action = ActionTopology

		var change string
		if err := json.Unmarshal(topology, &change); err == nil {
			cmd.Change = change
		} else {
			name, value, err := single(topology)
			if err != nil {
				return fmt.Errorf("%s topology: %w", target, err)
			}
			cmd.Change = name
			if err := json.Unmarshal(value, &cmd.Value); err != nil {
				return fmt.Errorf("%s topology %s: value must be a string", target, name)
			}
		}
	}

	if err := cmd.Validate(); err != nil {
		return err
	}
	*c = cmd
	return nil
}

// single decodes an object holding exactly one key.
func single(b []byte) (string, json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", nil, fmt.Errorf("malformed command: %w", err)
	}
	if len(obj) != 1 {
		return "", nil, errors.New("malformed command: expected exactly one key")
	}
	for k, v := range obj {
		return k, v, nil
	}
	return "", nil, nil
}

func (c Command) String() string {
	b, err := c.MarshalJSON()
	if err != nil {
		return c.Target + "." + c.Action
	}
	return string(b)
}

// Reply answers every command.
type Reply struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Status *broker.Service `json:"status,omitempty"`
}

func okReply() Reply { return Reply{OK: true} }

func errorReply(err error) Reply { return Reply{OK: false, Error: err.Error()} }
