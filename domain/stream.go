package domain

// StreamKey represents a Redis Stream key.
type StreamKey string

const (
	StreamKeyMessages   StreamKey = "permanode:events:messages"
	StreamKeyMilestones StreamKey = "permanode:events:milestones"
)

var validStreamKeys = map[StreamKey]bool{
	StreamKeyMessages:   true,
	StreamKeyMilestones: true,
}

// IsValid returns true if the stream key is a known valid key.
func (s StreamKey) IsValid() bool {
	return validStreamKeys[s]
}

func (s StreamKey) String() string {
	return string(s)
}
