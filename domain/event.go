package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of downstream notification.
type EventType string

const (
	// EventTypeMessageStored is emitted after a message is written to storage.
	EventTypeMessageStored EventType = "MessageStored"
	// EventTypeMilestoneSynced is emitted when a milestone cone is fully stored.
	EventTypeMilestoneSynced EventType = "MilestoneSynced"
	// EventTypeMilestoneLogged is emitted when a milestone is written to an archive.
	EventTypeMilestoneLogged EventType = "MilestoneLogged"
)

// StreamFor returns the stream an event type is published to.
func (t EventType) StreamFor() StreamKey {
	if t == EventTypeMessageStored {
		return StreamKeyMessages
	}
	return StreamKeyMilestones
}

// Event is a notification published to Redis Streams.
type Event struct {
	// EventID is the unique identifier for this event (UUID v4).
	EventID   string
	EventType EventType
	// Source is the keyspace the event belongs to.
	Source    string
	CreatedAt time.Time
	Payload   []byte
	Metadata  map[string]string
}

// NewEvent creates a new Event with a generated UUID and current timestamp.
func NewEvent(eventType EventType, source string, payload []byte, metadata map[string]string) (*Event, error) {
	event := &Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Source:    source,
		CreatedAt: time.Now(),
		Payload:   payload,
		Metadata:  metadata,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the event has all required fields.
func (e *Event) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.EventType == "" {
		return errors.New("event_type is required")
	}
	if e.Source == "" {
		return errors.New("source is required")
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	return nil
}
