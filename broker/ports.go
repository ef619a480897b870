package broker

import (
	"context"

	"permanode/domain"
)

// Ingester stores feed messages. Implemented by usecase.IngestUsecase.
type Ingester interface {
	Keyspace() string
	StoreMessage(ctx context.Context, full *domain.FullMessage) error
	StoreMetadata(ctx context.Context, meta *domain.MessageMetadata) error
}

// MilestoneService is the milestone side of storage and the node API.
// Implemented by usecase.MilestoneUsecase.
type MilestoneService interface {
	CompleteMilestone(ctx context.Context, data *domain.MilestoneData) error
	MarkLogged(ctx context.Context, index uint32, archive string) error
	LoadMilestoneData(ctx context.Context, index uint32) (*domain.MilestoneData, error)
	SyncData(ctx context.Context, r domain.SyncRange) (*domain.SyncData, error)
	StoredMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error)
	FetchMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error)
	FetchMilestone(ctx context.Context, index uint32) (*domain.Milestone, error)
}

// ArchiveLog is an open archive file accepting contiguous milestones.
type ArchiveLog interface {
	Append(data *domain.MilestoneData) error
	Finish() (string, error)
	From() uint32
	Next() uint32
	Size() int64
	Path() string
}

// ArchiveOpener starts a new archive file at from.
type ArchiveOpener func(dir string, from uint32) (ArchiveLog, error)
