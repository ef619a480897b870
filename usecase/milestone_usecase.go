package usecase

import (
	"context"
	"log/slog"

	"permanode/domain"
	"permanode/metrics"
	"permanode/port"
	apperrors "permanode/utils/errors"
)

// MilestoneUsecase records solidified and archived milestones and resolves
// messages missing from a milestone cone.
type MilestoneUsecase struct {
	store  port.KeyspaceStore
	node   port.NodeAPI
	events port.EventPublisher
}

// NewMilestoneUsecase creates a new MilestoneUsecase.
func NewMilestoneUsecase(store port.KeyspaceStore, node port.NodeAPI, events port.EventPublisher) *MilestoneUsecase {
	return &MilestoneUsecase{store: store, node: node, events: events}
}

func (u *MilestoneUsecase) Keyspace() string { return u.store.Keyspace() }

// CompleteMilestone stores the milestone row and marks it synced. Every
// message of data must already be stored.
func (u *MilestoneUsecase) CompleteMilestone(ctx context.Context, data *domain.MilestoneData) error {
	if data.Milestone == nil {
		return apperrors.NewValidationContextError("milestone data without milestone", "usecase", "MilestoneUsecase", "CompleteMilestone",
			map[string]interface{}{"milestone_index": data.MilestoneIndex})
	}
	if err := u.store.InsertMilestone(ctx, data.Milestone); err != nil {
		return err
	}
	if err := u.store.MarkSynced(ctx, data.MilestoneIndex); err != nil {
		return err
	}
	metrics.MilestonesSolidified.Inc()
	u.events.MilestoneSynced(ctx, u.store.Keyspace(), data.Milestone, len(data.Messages))
	return nil
}

// MarkLogged records that index was durably written to archive.
func (u *MilestoneUsecase) MarkLogged(ctx context.Context, index uint32, archive string) error {
	if err := u.store.MarkLogged(ctx, index); err != nil {
		return err
	}
	metrics.MilestonesArchived.Inc()
	u.events.MilestoneLogged(ctx, u.store.Keyspace(), index, archive)
	return nil
}

// LoadMilestoneData rebuilds a synced milestone from storage.
func (u *MilestoneUsecase) LoadMilestoneData(ctx context.Context, index uint32) (*domain.MilestoneData, error) {
	ms, err := u.store.GetMilestone(ctx, index)
	if err != nil {
		return nil, err
	}
	ids, err := u.store.GetReferenced(ctx, index)
	if err != nil {
		return nil, err
	}

	data := &domain.MilestoneData{
		MilestoneIndex: index,
		Milestone:      ms,
		Messages:       make([]*domain.FullMessage, 0, len(ids)),
	}
	for _, id := range ids {
		msg, err := u.store.GetMessage(ctx, id)
		if err != nil {
			return nil, err
		}
		data.Messages = append(data.Messages, msg)
	}
	data.SortMessages()
	return data, nil
}

// SyncData classifies r from the sync table.
func (u *MilestoneUsecase) SyncData(ctx context.Context, r domain.SyncRange) (*domain.SyncData, error) {
	records, err := u.store.GetSyncRecords(ctx, r)
	if err != nil {
		return nil, err
	}
	return domain.BuildSyncData(r, records), nil
}

// StoredMessage reads a message from storage only.
func (u *MilestoneUsecase) StoredMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error) {
	return u.store.GetMessage(ctx, id)
}

// FetchMessage returns a message from storage, falling back to node
// endpoints. A message fetched from a node is stored before it is returned.
func (u *MilestoneUsecase) FetchMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error) {
	msg, err := u.store.GetMessage(ctx, id)
	if err == nil && msg.Metadata != nil {
		return msg, nil
	}
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	fetched, err := u.node.FetchMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "message fetched from node", "message_id", id.String())

	m, err := fetched.Message()
	if err != nil {
		return nil, err
	}
	if err := u.store.InsertMessage(ctx, id, m, fetched.Raw); err != nil {
		return nil, err
	}
	if fetched.Metadata != nil {
		if err := u.store.InsertMetadata(ctx, fetched.Metadata); err != nil {
			return nil, err
		}
	}
	return fetched, nil
}

// FetchMilestone asks node endpoints for the milestone at index.
func (u *MilestoneUsecase) FetchMilestone(ctx context.Context, index uint32) (*domain.Milestone, error) {
	return u.node.FetchMilestone(ctx, index)
}
