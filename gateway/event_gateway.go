package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"permanode/domain"
	"permanode/metrics"
	"permanode/port"
)

// EventGateway implements port.EventPublisher on top of a StreamPort. A nil
// stream turns every call into a no-op. Publish failures are logged and
// counted, never returned.
type EventGateway struct {
	stream port.StreamPort
}

// NewEventGateway creates a new EventGateway.
func NewEventGateway(stream port.StreamPort) *EventGateway {
	return &EventGateway{stream: stream}
}

// Enabled reports whether events go anywhere.
func (g *EventGateway) Enabled() bool {
	return g.stream != nil
}

func (g *EventGateway) MessageStored(ctx context.Context, keyspace string, id domain.MessageID) {
	g.publish(ctx, domain.EventTypeMessageStored, keyspace, map[string]any{
		"message_id": id.String(),
	}, map[string]string{"message_id": id.String()})
}

func (g *EventGateway) MilestoneSynced(ctx context.Context, keyspace string, milestone *domain.Milestone, messages int) {
	index := strconv.FormatUint(uint64(milestone.Index), 10)
	g.publish(ctx, domain.EventTypeMilestoneSynced, keyspace, map[string]any{
		"milestone_index": milestone.Index,
		"message_id":      milestone.MessageID.String(),
		"timestamp":       milestone.Timestamp.Unix(),
		"messages":        messages,
	}, map[string]string{"milestone_index": index})
}

func (g *EventGateway) MilestoneLogged(ctx context.Context, keyspace string, index uint32, archive string) {
	g.publish(ctx, domain.EventTypeMilestoneLogged, keyspace, map[string]any{
		"milestone_index": index,
		"archive":         archive,
	}, map[string]string{"milestone_index": strconv.FormatUint(uint64(index), 10)})
}

func (g *EventGateway) publish(ctx context.Context, eventType domain.EventType, keyspace string, payload map[string]any, meta map[string]string) {
	if g.stream == nil {
		return
	}
	stream := eventType.StreamFor()

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode event payload", "event_type", string(eventType), "error", err)
		metrics.EventsPublished.WithLabelValues(stream.String(), "error").Inc()
		return
	}
	event, err := domain.NewEvent(eventType, keyspace, body, meta)
	if err != nil {
		slog.ErrorContext(ctx, "invalid event", "event_type", string(eventType), "error", err)
		metrics.EventsPublished.WithLabelValues(stream.String(), "error").Inc()
		return
	}

	id, err := g.stream.Publish(ctx, stream, event)
	if err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			"stream", stream.String(),
			"event_type", string(eventType),
			"keyspace", keyspace,
			"error", err,
		)
		metrics.EventsPublished.WithLabelValues(stream.String(), "error").Inc()
		return
	}
	slog.DebugContext(ctx, "event published",
		"stream", stream.String(),
		"event_id", event.EventID,
		"stream_id", id,
	)
	metrics.EventsPublished.WithLabelValues(stream.String(), "ok").Inc()
}
