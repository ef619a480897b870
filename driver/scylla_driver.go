// Package driver provides implementations for external dependencies.
package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"permanode/config"
	"permanode/domain"
	"permanode/metrics"
	"permanode/port"
	apperrors "permanode/utils/errors"
)

// nodeMarker is written to synced_by and logged_by.
const nodeMarker int8 = 0

// ScyllaDriver implements port.StorageDriver on a Scylla or Cassandra cluster.
type ScyllaDriver struct {
	mu      sync.RWMutex
	session *gocql.Session
	cfg     config.StorageConfig
	stmts   map[string]statements
}

// NewClusterConfig maps the storage section onto a gocql cluster configuration.
func NewClusterConfig(cfg config.StorageConfig) (*gocql.ClusterConfig, error) {
	consistency, err := gocql.ParseConsistencyWrapper(strings.ToUpper(cfg.Consistency))
	if err != nil {
		return nil, fmt.Errorf("storage consistency: %w", err)
	}

	cluster := gocql.NewCluster(cfg.Nodes...)
	cluster.Consistency = consistency
	cluster.NumConns = cfg.ThreadCount.Resolve(runtime.NumCPU())
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
		cluster.ConnectTimeout = cfg.Timeout
	}
	if cfg.LocalDatacenter != "" {
		cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(
			gocql.DCAwareRoundRobinPolicy(cfg.LocalDatacenter),
		)
	}
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	return cluster, nil
}

// NewScyllaDriver connects to the configured nodes.
func NewScyllaDriver(cfg config.StorageConfig) (*ScyllaDriver, error) {
	session, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	d := &ScyllaDriver{
		session: session,
		cfg:     cfg,
		stmts:   make(map[string]statements, len(cfg.Keyspaces)),
	}
	for _, ks := range cfg.Keyspaces {
		d.stmts[ks.Name] = statementsFor(ks.Name)
	}
	return d, nil
}

func connect(cfg config.StorageConfig) (*gocql.Session, error) {
	cluster, err := NewClusterConfig(cfg)
	if err != nil {
		return nil, err
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("driver", "scylla", "Connect", err,
			map[string]interface{}{"nodes": cfg.Nodes})
	}
	return session, nil
}

// EnsureSchema creates every configured keyspace and its tables.
func (d *ScyllaDriver) EnsureSchema(ctx context.Context) error {
	session := d.current()
	for _, ks := range d.cfg.Keyspaces {
		stmts := append([]string{CreateKeyspaceCQL(ks)}, CreateTablesCQL(ks.Name)...)
		for _, stmt := range stmts {
			if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
				return d.wrap("EnsureSchema", err, ks.Name)
			}
		}
		slog.InfoContext(ctx, "keyspace schema ready", "keyspace", ks.Name)
	}
	return nil
}

// Reconnect opens a session on nodes and swaps it in, closing the old one.
func (d *ScyllaDriver) Reconnect(ctx context.Context, nodes []string) error {
	cfg := d.cfg
	cfg.Nodes = nodes
	session, err := connect(cfg)
	if err != nil {
		return err
	}

	d.mu.Lock()
	old := d.session
	d.session = session
	d.cfg = cfg
	d.mu.Unlock()

	old.Close()
	slog.InfoContext(ctx, "storage session rebuilt", "nodes", nodes)
	return nil
}

// Close closes the session.
func (d *ScyllaDriver) Close() {
	d.current().Close()
}

// Ping runs a trivial query against the cluster.
func (d *ScyllaDriver) Ping(ctx context.Context) error {
	var release string
	if err := d.current().Query("SELECT release_version FROM system.local").WithContext(ctx).Scan(&release); err != nil {
		return d.wrap("Ping", err, "system")
	}
	return nil
}

func (d *ScyllaDriver) current() *gocql.Session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.session
}

func (d *ScyllaDriver) statements(keyspace string) (statements, error) {
	s, ok := d.stmts[keyspace]
	if !ok {
		return statements{}, apperrors.NewKeyspaceNotFoundError("driver", "scylla", "statements",
			map[string]interface{}{"keyspace": keyspace})
	}
	return s, nil
}

func (d *ScyllaDriver) wrap(operation string, err error, keyspace string) error {
	metrics.RecordStorageError(operation)
	fields := map[string]interface{}{"keyspace": keyspace}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, gocql.ErrTimeoutNoResponse) {
		return apperrors.NewOperationTimeoutError("driver", "scylla", operation, err, fields)
	}
	return apperrors.NewStorageUnavailableError("driver", "scylla", operation, err, fields)
}

func (d *ScyllaDriver) exec(ctx context.Context, operation, keyspace, stmt string, args ...interface{}) error {
	if err := d.current().Query(stmt, args...).WithContext(ctx).Exec(); err != nil {
		return d.wrap(operation, err, keyspace)
	}
	return nil
}

func (d *ScyllaDriver) InsertMessage(ctx context.Context, keyspace string, id domain.MessageID, msg *domain.Message, raw []byte) error {
	s, err := d.statements(keyspace)
	if err != nil {
		return err
	}
	key := id.String()

	if err := d.exec(ctx, "InsertMessage", keyspace, s.insertMessage, key, raw); err != nil {
		return err
	}
	for _, parent := range msg.Parents {
		if err := d.exec(ctx, "InsertParent", keyspace, s.insertParent, parent.String(), key); err != nil {
			return err
		}
	}
	if ix, ok := msg.Indexation(); ok {
		if err := d.exec(ctx, "InsertIndex", keyspace, s.insertIndex, domain.HashedIndex(ix.Index), key); err != nil {
			return err
		}
	}
	return nil
}

func (d *ScyllaDriver) InsertMetadata(ctx context.Context, keyspace string, meta *domain.MessageMetadata) error {
	s, err := d.statements(keyspace)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	key := meta.MessageID.String()

	if err := d.exec(ctx, "InsertMetadata", keyspace, s.insertMetadata, key, doc); err != nil {
		return err
	}
	if ref, ok := meta.ReferencedIndex(); ok {
		return d.exec(ctx, "InsertReferenced", keyspace, s.insertReferenced, cqlIndex(ref), key)
	}
	return nil
}

func (d *ScyllaDriver) InsertMilestone(ctx context.Context, keyspace string, milestone *domain.Milestone) error {
	s, err := d.statements(keyspace)
	if err != nil {
		return err
	}
	return d.exec(ctx, "InsertMilestone", keyspace, s.insertMilestone,
		cqlIndex(milestone.Index), milestone.MessageID.String(), milestone.Timestamp.Unix())
}

func (d *ScyllaDriver) GetMessage(ctx context.Context, keyspace string, id domain.MessageID) (*domain.FullMessage, error) {
	s, err := d.statements(keyspace)
	if err != nil {
		return nil, err
	}

	var raw, metaDoc []byte
	err = d.current().Query(s.selectMessage, id.String()).WithContext(ctx).Scan(&raw, &metaDoc)
	if errors.Is(err, gocql.ErrNotFound) || (err == nil && len(raw) == 0) {
		return nil, apperrors.NewMessageNotFoundError("driver", "scylla", "GetMessage",
			map[string]interface{}{"keyspace": keyspace, "message_id": id.String()})
	}
	if err != nil {
		return nil, d.wrap("GetMessage", err, keyspace)
	}

	var meta *domain.MessageMetadata
	if len(metaDoc) > 0 {
		if meta, err = domain.ParseMetadata(metaDoc); err != nil {
			return nil, d.wrap("GetMessage", err, keyspace)
		}
	}
	full, err := domain.NewFullMessage(raw, meta)
	if err != nil {
		return nil, d.wrap("GetMessage", err, keyspace)
	}
	return full, nil
}

func (d *ScyllaDriver) GetMetadata(ctx context.Context, keyspace string, id domain.MessageID) (*domain.MessageMetadata, error) {
	s, err := d.statements(keyspace)
	if err != nil {
		return nil, err
	}

	var doc []byte
	err = d.current().Query(s.selectMetadata, id.String()).WithContext(ctx).Scan(&doc)
	if errors.Is(err, gocql.ErrNotFound) || (err == nil && len(doc) == 0) {
		return nil, apperrors.NewMessageNotFoundError("driver", "scylla", "GetMetadata",
			map[string]interface{}{"keyspace": keyspace, "message_id": id.String()})
	}
	if err != nil {
		return nil, d.wrap("GetMetadata", err, keyspace)
	}
	meta, err := domain.ParseMetadata(doc)
	if err != nil {
		return nil, d.wrap("GetMetadata", err, keyspace)
	}
	return meta, nil
}

func (d *ScyllaDriver) GetMilestone(ctx context.Context, keyspace string, index uint32) (*domain.Milestone, error) {
	s, err := d.statements(keyspace)
	if err != nil {
		return nil, err
	}

	var (
		idText    string
		timestamp int64
	)
	err = d.current().Query(s.selectMilestone, cqlIndex(index)).WithContext(ctx).Scan(&idText, &timestamp)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, apperrors.NewMilestoneNotFoundError("driver", "scylla", "GetMilestone",
			map[string]interface{}{"keyspace": keyspace, "milestone_index": index})
	}
	if err != nil {
		return nil, d.wrap("GetMilestone", err, keyspace)
	}
	id, err := domain.ParseMessageID(idText)
	if err != nil {
		return nil, d.wrap("GetMilestone", err, keyspace)
	}
	return &domain.Milestone{
		Index:     index,
		MessageID: id,
		Timestamp: time.Unix(timestamp, 0).UTC(),
	}, nil
}

func (d *ScyllaDriver) GetChildren(ctx context.Context, keyspace string, id domain.MessageID, page port.Page) (*port.PagedIDs, error) {
	s, err := d.statements(keyspace)
	if err != nil {
		return nil, err
	}
	return d.pagedIDs(ctx, "GetChildren", keyspace, s.selectChildren, id.String(), page)
}

func (d *ScyllaDriver) GetByIndex(ctx context.Context, keyspace string, hashedIndex string, page port.Page) (*port.PagedIDs, error) {
	s, err := d.statements(keyspace)
	if err != nil {
		return nil, err
	}
	return d.pagedIDs(ctx, "GetByIndex", keyspace, s.selectIndex, hashedIndex, page)
}

// pagedIDs reads exactly one page; PageState disables gocql's automatic paging.
func (d *ScyllaDriver) pagedIDs(ctx context.Context, operation, keyspace, stmt, partition string, page port.Page) (*port.PagedIDs, error) {
	iter := d.current().Query(stmt, partition).
		WithContext(ctx).
		PageSize(page.Size).
		PageState(page.State).
		Iter()
	next := iter.PageState()

	ids := make([]domain.MessageID, 0, iter.NumRows())
	var idText string
	for iter.Scan(&idText) {
		id, err := domain.ParseMessageID(idText)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed message id row", "keyspace", keyspace, "value", idText)
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, d.wrap(operation, err, keyspace)
	}

	result := &port.PagedIDs{IDs: ids}
	if len(next) > 0 {
		result.State = next
	}
	return result, nil
}

func (d *ScyllaDriver) GetReferenced(ctx context.Context, keyspace string, milestoneIndex uint32) ([]domain.MessageID, error) {
	s, err := d.statements(keyspace)
	if err != nil {
		return nil, err
	}

	iter := d.current().Query(s.selectReferenced, cqlIndex(milestoneIndex)).WithContext(ctx).Iter()
	var (
		ids    []domain.MessageID
		idText string
	)
	for iter.Scan(&idText) {
		if id, err := domain.ParseMessageID(idText); err == nil {
			ids = append(ids, id)
		}
	}
	if err := iter.Close(); err != nil {
		return nil, d.wrap("GetReferenced", err, keyspace)
	}
	return ids, nil
}

func (d *ScyllaDriver) GetSyncRecords(ctx context.Context, keyspace string, r domain.SyncRange) ([]domain.SyncRecord, error) {
	s, err := d.statements(keyspace)
	if err != nil {
		return nil, err
	}

	iter := d.current().Query(s.selectSync, syncPartition, cqlIndex(r.From), cqlIndex(r.To)).WithContext(ctx).Iter()
	var (
		records  []domain.SyncRecord
		index    int32
		syncedBy *int8
		loggedBy *int8
	)
	for iter.Scan(&index, &syncedBy, &loggedBy) {
		records = append(records, domain.SyncRecord{
			MilestoneIndex: uint32(index),
			SyncedBy:       toMarker(syncedBy),
			LoggedBy:       toMarker(loggedBy),
		})
		syncedBy, loggedBy = nil, nil
	}
	if err := iter.Close(); err != nil {
		return nil, d.wrap("GetSyncRecords", err, keyspace)
	}
	return records, nil
}

func toMarker(v *int8) *uint8 {
	if v == nil {
		return nil
	}
	u := uint8(*v)
	return &u
}

func (d *ScyllaDriver) MarkSynced(ctx context.Context, keyspace string, index uint32) error {
	s, err := d.statements(keyspace)
	if err != nil {
		return err
	}
	return d.exec(ctx, "MarkSynced", keyspace, s.markSynced, nodeMarker, syncPartition, cqlIndex(index))
}

func (d *ScyllaDriver) MarkLogged(ctx context.Context, keyspace string, index uint32) error {
	s, err := d.statements(keyspace)
	if err != nil {
		return err
	}
	return d.exec(ctx, "MarkLogged", keyspace, s.markLogged, nodeMarker, syncPartition, cqlIndex(index))
}
