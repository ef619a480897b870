// Package gateway provides anti-corruption layer implementations.
package gateway

import (
	"context"
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"permanode/domain"
	"permanode/port"
	apperrors "permanode/utils/errors"
)

type cacheKey struct {
	keyspace string
	id       domain.MessageID
}

// StorageGateway routes storage calls to configured keyspaces and caches
// message reads.
type StorageGateway struct {
	driver      port.StorageDriver
	stores      map[string]*keyspaceStore
	defaultName string
	cache       *lru.Cache[cacheKey, *domain.FullMessage]
}

// NewStorageGateway creates a gateway over the given keyspaces. The first
// keyspace is the default. cacheSize <= 0 disables the message cache.
func NewStorageGateway(driver port.StorageDriver, keyspaces []string, cacheSize int) (*StorageGateway, error) {
	if len(keyspaces) == 0 {
		return nil, errors.New("storage gateway needs at least one keyspace")
	}

	g := &StorageGateway{
		driver:      driver,
		stores:      make(map[string]*keyspaceStore, len(keyspaces)),
		defaultName: keyspaces[0],
	}
	if cacheSize > 0 {
		cache, err := lru.New[cacheKey, *domain.FullMessage](cacheSize)
		if err != nil {
			return nil, err
		}
		g.cache = cache
	}
	for _, name := range keyspaces {
		g.stores[name] = &keyspaceStore{gw: g, name: name}
	}
	return g, nil
}

// ForKeyspace returns the store for name. An empty name selects the default.
func (g *StorageGateway) ForKeyspace(name string) (port.KeyspaceStore, error) {
	if name == "" {
		return g.DefaultKeyspace(), nil
	}
	store, ok := g.stores[name]
	if !ok {
		return nil, apperrors.NewKeyspaceNotFoundError("gateway", "StorageGateway", "ForKeyspace",
			map[string]interface{}{"keyspace": name})
	}
	return store, nil
}

func (g *StorageGateway) DefaultKeyspace() port.KeyspaceStore {
	return g.stores[g.defaultName]
}

func (g *StorageGateway) cached(keyspace string, id domain.MessageID) (*domain.FullMessage, bool) {
	if g.cache == nil {
		return nil, false
	}
	return g.cache.Get(cacheKey{keyspace, id})
}

func (g *StorageGateway) remember(keyspace string, msg *domain.FullMessage) {
	if g.cache != nil {
		g.cache.Add(cacheKey{keyspace, msg.MessageID}, msg)
	}
}

func (g *StorageGateway) forget(keyspace string, id domain.MessageID) {
	if g.cache != nil {
		g.cache.Remove(cacheKey{keyspace, id})
	}
}

// storageError keeps driver AppContextErrors as they are and wraps anything
// else as a storage failure.
func storageError(operation, keyspace string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppContextError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewStorageUnavailableError("gateway", "StorageGateway", operation, err,
		map[string]interface{}{"keyspace": keyspace})
}

type keyspaceStore struct {
	gw   *StorageGateway
	name string
}

func (s *keyspaceStore) Keyspace() string { return s.name }

func (s *keyspaceStore) InsertMessage(ctx context.Context, id domain.MessageID, msg *domain.Message, raw []byte) error {
	return storageError("InsertMessage", s.name, s.gw.driver.InsertMessage(ctx, s.name, id, msg, raw))
}

func (s *keyspaceStore) InsertMetadata(ctx context.Context, meta *domain.MessageMetadata) error {
	s.gw.forget(s.name, meta.MessageID)
	return storageError("InsertMetadata", s.name, s.gw.driver.InsertMetadata(ctx, s.name, meta))
}

func (s *keyspaceStore) InsertMilestone(ctx context.Context, milestone *domain.Milestone) error {
	return storageError("InsertMilestone", s.name, s.gw.driver.InsertMilestone(ctx, s.name, milestone))
}

func (s *keyspaceStore) GetMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error) {
	if msg, ok := s.gw.cached(s.name, id); ok {
		return msg, nil
	}
	msg, err := s.gw.driver.GetMessage(ctx, s.name, id)
	if err != nil {
		return nil, storageError("GetMessage", s.name, err)
	}
	if msg.MessageID != id {
		slog.WarnContext(ctx, "stored message does not hash to its key",
			"keyspace", s.name,
			"message_id", id.String(),
			"computed_id", msg.MessageID.String(),
		)
		return nil, apperrors.NewInternalContextError("stored message is corrupt", "gateway", "StorageGateway", "GetMessage", nil,
			map[string]interface{}{"keyspace": s.name, "message_id": id.String()})
	}
	s.gw.remember(s.name, msg)
	return msg, nil
}

func (s *keyspaceStore) GetMetadata(ctx context.Context, id domain.MessageID) (*domain.MessageMetadata, error) {
	if msg, ok := s.gw.cached(s.name, id); ok && msg.Metadata != nil {
		return msg.Metadata, nil
	}
	meta, err := s.gw.driver.GetMetadata(ctx, s.name, id)
	return meta, storageError("GetMetadata", s.name, err)
}

func (s *keyspaceStore) GetMilestone(ctx context.Context, index uint32) (*domain.Milestone, error) {
	ms, err := s.gw.driver.GetMilestone(ctx, s.name, index)
	return ms, storageError("GetMilestone", s.name, err)
}

func (s *keyspaceStore) GetChildren(ctx context.Context, id domain.MessageID, page port.Page) (*port.PagedIDs, error) {
	ids, err := s.gw.driver.GetChildren(ctx, s.name, id, page)
	return ids, storageError("GetChildren", s.name, err)
}

func (s *keyspaceStore) GetByIndex(ctx context.Context, hashedIndex string, page port.Page) (*port.PagedIDs, error) {
	ids, err := s.gw.driver.GetByIndex(ctx, s.name, hashedIndex, page)
	return ids, storageError("GetByIndex", s.name, err)
}

func (s *keyspaceStore) GetReferenced(ctx context.Context, milestoneIndex uint32) ([]domain.MessageID, error) {
	ids, err := s.gw.driver.GetReferenced(ctx, s.name, milestoneIndex)
	return ids, storageError("GetReferenced", s.name, err)
}

func (s *keyspaceStore) GetSyncRecords(ctx context.Context, r domain.SyncRange) ([]domain.SyncRecord, error) {
	records, err := s.gw.driver.GetSyncRecords(ctx, s.name, r)
	return records, storageError("GetSyncRecords", s.name, err)
}

func (s *keyspaceStore) MarkSynced(ctx context.Context, index uint32) error {
	return storageError("MarkSynced", s.name, s.gw.driver.MarkSynced(ctx, s.name, index))
}

func (s *keyspaceStore) MarkLogged(ctx context.Context, index uint32) error {
	return storageError("MarkLogged", s.name, s.gw.driver.MarkLogged(ctx, s.name, index))
}
