package port

//go:generate go run go.uber.org/mock/mockgen -source=event_port.go -destination=../mocks/mock_event_port.go -package=mocks

import (
	"context"

	"permanode/domain"
)

// StreamPort defines the interface for Redis Streams operations.
type StreamPort interface {
	// Publish publishes an event to a stream and returns the message ID.
	Publish(ctx context.Context, stream domain.StreamKey, event *domain.Event) (string, error)
	Ping(ctx context.Context) error
}

// EventPublisher emits downstream notifications. Implementations never block
// ingestion on a failed publish.
type EventPublisher interface {
	MessageStored(ctx context.Context, keyspace string, id domain.MessageID)
	MilestoneSynced(ctx context.Context, keyspace string, milestone *domain.Milestone, messages int)
	MilestoneLogged(ctx context.Context, keyspace string, index uint32, archive string)
}
