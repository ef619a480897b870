// Package port defines interfaces for external dependencies.
package port

//go:generate go run go.uber.org/mock/mockgen -source=storage_port.go -destination=../mocks/mock_storage_port.go -package=mocks

import (
	"context"

	"permanode/domain"
)

// Page requests one page of a partition scan. State is the opaque paging
// state returned with the previous page, nil for the first page.
type Page struct {
	Size  int
	State []byte
}

// PagedIDs is one page of message ids. State is nil on the last page.
type PagedIDs struct {
	IDs   []domain.MessageID
	State []byte
}

// MessageRepository stores and reads messages of one keyspace.
type MessageRepository interface {
	// InsertMessage writes the raw message, its parent edges and its index row.
	InsertMessage(ctx context.Context, id domain.MessageID, msg *domain.Message, raw []byte) error
	// InsertMetadata writes the metadata and, when referenced, the milestone edge.
	InsertMetadata(ctx context.Context, meta *domain.MessageMetadata) error
	InsertMilestone(ctx context.Context, milestone *domain.Milestone) error

	GetMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error)
	GetMetadata(ctx context.Context, id domain.MessageID) (*domain.MessageMetadata, error)
	GetMilestone(ctx context.Context, index uint32) (*domain.Milestone, error)
	GetChildren(ctx context.Context, id domain.MessageID, page Page) (*PagedIDs, error)
	GetByIndex(ctx context.Context, hashedIndex string, page Page) (*PagedIDs, error)
	GetReferenced(ctx context.Context, milestoneIndex uint32) ([]domain.MessageID, error)
}

// SyncRepository tracks which milestones are synced and logged.
type SyncRepository interface {
	GetSyncRecords(ctx context.Context, r domain.SyncRange) ([]domain.SyncRecord, error)
	MarkSynced(ctx context.Context, index uint32) error
	MarkLogged(ctx context.Context, index uint32) error
}

// KeyspaceStore is every storage operation bound to one keyspace.
type KeyspaceStore interface {
	MessageRepository
	SyncRepository
	Keyspace() string
}

// KeyspaceResolver routes requests to a configured keyspace.
type KeyspaceResolver interface {
	ForKeyspace(name string) (KeyspaceStore, error)
	DefaultKeyspace() KeyspaceStore
}

// StorageDriver is the keyspace-addressed storage backend.
type StorageDriver interface {
	InsertMessage(ctx context.Context, keyspace string, id domain.MessageID, msg *domain.Message, raw []byte) error
	InsertMetadata(ctx context.Context, keyspace string, meta *domain.MessageMetadata) error
	InsertMilestone(ctx context.Context, keyspace string, milestone *domain.Milestone) error

	GetMessage(ctx context.Context, keyspace string, id domain.MessageID) (*domain.FullMessage, error)
	GetMetadata(ctx context.Context, keyspace string, id domain.MessageID) (*domain.MessageMetadata, error)
	GetMilestone(ctx context.Context, keyspace string, index uint32) (*domain.Milestone, error)
	GetChildren(ctx context.Context, keyspace string, id domain.MessageID, page Page) (*PagedIDs, error)
	GetByIndex(ctx context.Context, keyspace string, hashedIndex string, page Page) (*PagedIDs, error)
	GetReferenced(ctx context.Context, keyspace string, milestoneIndex uint32) ([]domain.MessageID, error)

	GetSyncRecords(ctx context.Context, keyspace string, r domain.SyncRange) ([]domain.SyncRecord, error)
	MarkSynced(ctx context.Context, keyspace string, index uint32) error
	MarkLogged(ctx context.Context, keyspace string, index uint32) error
}
