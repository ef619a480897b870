// Package usecase contains the permanode business logic.
package usecase

import (
	"context"

	"permanode/domain"
	"permanode/metrics"
	"permanode/port"
	apperrors "permanode/utils/errors"
)

// IngestUsecase stores feed messages and metadata in one keyspace.
type IngestUsecase struct {
	store  port.KeyspaceStore
	events port.EventPublisher
}

// NewIngestUsecase creates a new IngestUsecase.
func NewIngestUsecase(store port.KeyspaceStore, events port.EventPublisher) *IngestUsecase {
	return &IngestUsecase{store: store, events: events}
}

func (u *IngestUsecase) Keyspace() string { return u.store.Keyspace() }

// DecodeMessage validates raw and returns it with its computed id.
func DecodeMessage(raw []byte) (*domain.FullMessage, error) {
	full, err := domain.NewFullMessage(raw, nil)
	if err != nil {
		return nil, apperrors.NewValidationContextError(err.Error(), "usecase", "IngestUsecase", "DecodeMessage", nil)
	}
	return full, nil
}

// StoreMessage writes a decoded message with its edges.
func (u *IngestUsecase) StoreMessage(ctx context.Context, full *domain.FullMessage) error {
	msg, err := full.Message()
	if err != nil {
		return apperrors.NewValidationContextError(err.Error(), "usecase", "IngestUsecase", "StoreMessage", nil)
	}
	if err := u.store.InsertMessage(ctx, full.MessageID, msg, full.Raw); err != nil {
		return err
	}
	metrics.MessagesStored.WithLabelValues(u.store.Keyspace(), "message").Inc()
	u.events.MessageStored(ctx, u.store.Keyspace(), full.MessageID)
	return nil
}

func (u *IngestUsecase) StoreMetadata(ctx context.Context, meta *domain.MessageMetadata) error {
	if err := u.store.InsertMetadata(ctx, meta); err != nil {
		return err
	}
	metrics.MessagesStored.WithLabelValues(u.store.Keyspace(), "metadata").Inc()
	return nil
}

// StoreFull writes a message and, when present, its metadata.
func (u *IngestUsecase) StoreFull(ctx context.Context, full *domain.FullMessage) error {
	if err := u.StoreMessage(ctx, full); err != nil {
		return err
	}
	if full.Metadata != nil {
		return u.StoreMetadata(ctx, full.Metadata)
	}
	return nil
}
