package driver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"permanode/config"
)

// syncPartition is the single partition key of the sync table.
const syncPartition = "permanode"

// CreateKeyspaceCQL builds the keyspace statement with datacenters in name order.
func CreateKeyspaceCQL(ks config.KeyspaceConfig) string {
	dcs := make([]config.DatacenterConfig, len(ks.DataCenters))
	copy(dcs, ks.DataCenters)
	sort.Slice(dcs, func(i, j int) bool { return dcs[i].Name < dcs[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'NetworkTopologyStrategy'", ks.Name)
	for _, dc := range dcs {
		fmt.Fprintf(&b, ", '%s': %d", dc.Name, dc.ReplicationFactor)
	}
	b.WriteString("}")
	return b.String()
}

// CreateTablesCQL returns the idempotent table statements for a keyspace.
func CreateTablesCQL(keyspace string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.messages (
    message_id text PRIMARY KEY,
    message blob,
    metadata blob
)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.parents (
    parent_id text,
    message_id text,
    PRIMARY KEY (parent_id, message_id)
)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.indexes (
    hashed_index text,
    message_id text,
    PRIMARY KEY (hashed_index, message_id)
)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.milestones (
    milestone_index int PRIMARY KEY,
    message_id text,
    timestamp bigint
)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.referenced (
    milestone_index int,
    message_id text,
    PRIMARY KEY (milestone_index, message_id)
)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.sync (
    key text,
    milestone_index int,
    synced_by tinyint,
    logged_by tinyint,
    PRIMARY KEY (key, milestone_index)
)`, keyspace),
	}
}

type statements struct {
	insertMessage    string
	insertParent     string
	insertIndex      string
	insertMetadata   string
	insertReferenced string
	insertMilestone  string
	selectMessage    string
	selectMetadata   string
	selectMilestone  string
	selectChildren   string
	selectIndex      string
	selectReferenced string
	selectSync       string
	markSynced       string
	markLogged       string
}

func statementsFor(keyspace string) statements {
	return statements{
		insertMessage:    fmt.Sprintf("INSERT INTO %s.messages (message_id, message) VALUES (?, ?)", keyspace),
		insertParent:     fmt.Sprintf("INSERT INTO %s.parents (parent_id, message_id) VALUES (?, ?)", keyspace),
		insertIndex:      fmt.Sprintf("INSERT INTO %s.indexes (hashed_index, message_id) VALUES (?, ?)", keyspace),
		insertMetadata:   fmt.Sprintf("INSERT INTO %s.messages (message_id, metadata) VALUES (?, ?)", keyspace),
		insertReferenced: fmt.Sprintf("INSERT INTO %s.referenced (milestone_index, message_id) VALUES (?, ?)", keyspace),
		insertMilestone:  fmt.Sprintf("INSERT INTO %s.milestones (milestone_index, message_id, timestamp) VALUES (?, ?, ?)", keyspace),
		selectMessage:    fmt.Sprintf("SELECT message, metadata FROM %s.messages WHERE message_id = ?", keyspace),
		selectMetadata:   fmt.Sprintf("SELECT metadata FROM %s.messages WHERE message_id = ?", keyspace),
		selectMilestone:  fmt.Sprintf("SELECT message_id, timestamp FROM %s.milestones WHERE milestone_index = ?", keyspace),
		selectChildren:   fmt.Sprintf("SELECT message_id FROM %s.parents WHERE parent_id = ?", keyspace),
		selectIndex:      fmt.Sprintf("SELECT message_id FROM %s.indexes WHERE hashed_index = ?", keyspace),
		selectReferenced: fmt.Sprintf("SELECT message_id FROM %s.referenced WHERE milestone_index = ?", keyspace),
		selectSync:       fmt.Sprintf("SELECT milestone_index, synced_by, logged_by FROM %s.sync WHERE key = ? AND milestone_index >= ? AND milestone_index < ?", keyspace),
		markSynced:       fmt.Sprintf("UPDATE %s.sync SET synced_by = ? WHERE key = ? AND milestone_index = ?", keyspace),
		markLogged:       fmt.Sprintf("UPDATE %s.sync SET logged_by = ? WHERE key = ? AND milestone_index = ?", keyspace),
	}
}

// cqlIndex maps a milestone index onto the signed CQL int column.
func cqlIndex(index uint32) int32 {
	if index > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(index)
}
