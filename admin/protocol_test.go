package admin

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permanode/broker"
)

func TestCommand_WireForms(t *testing.T) {
	tests := []struct {
		name string
		wire string
		cmd  Command
	}{
		{
			name: "add messages feed",
			wire: `{"PermanodeBroker":{"Topology":{"AddMqttMessages":"tcp://h:1883"}}}`,
			cmd:  BrokerTopology(broker.AddMqttMessages, "tcp://h:1883"),
		},
		{
			name: "remove referenced feed",
			wire: `{"PermanodeBroker":{"Topology":{"RemoveMqttMessagesReferenced":"tcp://h:1883"}}}`,
			cmd:  BrokerTopology(broker.RemoveMqttMessagesReferenced, "tcp://h:1883"),
		},
		{name: "shutdown", wire: `{"PermanodeBroker":"Shutdown"}`, cmd: BrokerShutdown()},
		{name: "exit", wire: `{"PermanodeBroker":"ExitProgram"}`, cmd: BrokerExit()},
		{name: "status", wire: `{"PermanodeBroker":"Status"}`, cmd: BrokerStatus()},
		{name: "add node", wire: `{"Scylla":{"Topology":{"AddNode":"h:9042"}}}`, cmd: ScyllaAddNode("h:9042")},
		{name: "remove node", wire: `{"Scylla":{"Topology":{"RemoveNode":"h:9042"}}}`, cmd: ScyllaRemoveNode("h:9042")},
		{name: "rebuild ring", wire: `{"Scylla":{"Topology":"RebuildRing"}}`, cmd: ScyllaRebuildRing()},
		{name: "rollback", wire: `{"General":"Rollback"}`, cmd: Rollback()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Command
			require.NoError(t, json.Unmarshal([]byte(tt.wire), &got))
			assert.Equal(t, tt.cmd, got)

			out, err := json.Marshal(tt.cmd)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wire, string(out))
		})
	}
}

func TestCommand_Rejects(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{name: "not json", wire: `PermanodeBroker`},
		{name: "two targets", wire: `{"PermanodeBroker":"Status","General":"Rollback"}`},
		{name: "unknown target", wire: `{"Hornet":"Status"}`},
		{name: "unknown action", wire: `{"PermanodeBroker":"Restart"}`},
		{name: "unknown topology", wire: `{"PermanodeBroker":{"Topology":{"AddFeed":"tcp://h:1883"}}}`},
		{name: "missing address", wire: `{"PermanodeBroker":{"Topology":{"AddMqttMessages":""}}}`},
		{name: "non string address", wire: `{"Scylla":{"Topology":{"AddNode":42}}}`},
		{name: "bare broker topology", wire: `{"PermanodeBroker":{"Topology":"RebuildRing"}}`},
		{name: "scylla shutdown", wire: `{"Scylla":"Shutdown"}`},
		{name: "general status", wire: `{"General":"Status"}`},
		{name: "nested non topology", wire: `{"PermanodeBroker":{"Feeds":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Command
			assert.Error(t, json.Unmarshal([]byte(tt.wire), &got))
		})
	}
}

func TestReply_JSON(t *testing.T) {
	status := broker.Service{Name: broker.Name, Status: broker.StatusRunning}
	out, err := json.Marshal(Reply{OK: true, Status: &status})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"status":{"name":"PermanodeBroker","status":"Running"}}`, string(out))

	out, err = json.Marshal(Reply{Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"boom"}`, string(out))
}
