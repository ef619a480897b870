package gateway

import (
	"context"
	"fmt"

	"permanode/domain"
	"permanode/port"
	apperrors "permanode/utils/errors"
)

// NodeGateway implements port.NodeAPI. Node responses are not trusted: the
// raw bytes must hash to the requested id.
type NodeGateway struct {
	driver port.NodeDriver
}

// NewNodeGateway creates a new NodeGateway.
func NewNodeGateway(driver port.NodeDriver) *NodeGateway {
	return &NodeGateway{driver: driver}
}

func (g *NodeGateway) FetchMessage(ctx context.Context, id domain.MessageID) (*domain.FullMessage, error) {
	raw, err := g.driver.GetMessageRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	if computed := domain.ComputeMessageID(raw); computed != id {
		return nil, apperrors.NewAppContextError(apperrors.CodeExternalAPI, "node returned a different message",
			"gateway", "NodeGateway", "FetchMessage",
			fmt.Errorf("%w: got %s", apperrors.ErrEndpointUnavailable, computed),
			map[string]interface{}{"message_id": id.String()})
	}

	meta, err := g.driver.GetMessageMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	full, err := domain.NewFullMessage(raw, meta)
	if err != nil {
		return nil, apperrors.NewAppContextError(apperrors.CodeExternalAPI, "node returned an invalid message",
			"gateway", "NodeGateway", "FetchMessage", err,
			map[string]interface{}{"message_id": id.String()})
	}
	return full, nil
}

func (g *NodeGateway) FetchMilestone(ctx context.Context, index uint32) (*domain.Milestone, error) {
	return g.driver.GetMilestone(ctx, index)
}
