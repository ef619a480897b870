package port

//go:generate go run go.uber.org/mock/mockgen -source=node_port.go -destination=../mocks/mock_node_port.go -package=mocks

import (
	"context"

	"permanode/domain"
)

// NodeDriver is a REST client for node endpoints.
type NodeDriver interface {
	GetMessageRaw(ctx context.Context, id domain.MessageID) ([]byte, error)
	GetMessageMetadata(ctx context.Context, id domain.MessageID) (*domain.MessageMetadata, error)
	GetMilestone(ctx context.Context, index uint32) (*domain.Milestone, error)
}

// NodeAPI fetches verified ledger data from nodes.
type NodeAPI interface {
	// FetchMessage returns the message with its metadata. The raw bytes are
	// checked to hash to id.
	FetchMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error)
	FetchMilestone(ctx context.Context, index uint32) (*domain.Milestone, error)
}
