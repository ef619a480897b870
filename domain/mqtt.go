package domain

import "fmt"

// MqttType selects which node feed a subscription consumes.
type MqttType string

const (
	MqttMessages           MqttType = "messages"
	MqttMessagesReferenced MqttType = "messages_referenced"
)

// Topic returns the MQTT topic for the feed type.
func (t MqttType) Topic() string {
	switch t {
	case MqttMessagesReferenced:
		return "messages/referenced"
	default:
		return "messages"
	}
}

// QoS is the subscription quality of service. Both feeds use at-most-once.
func (t MqttType) QoS() byte { return 0 }

func (t MqttType) IsValid() bool {
	return t == MqttMessages || t == MqttMessagesReferenced
}

func ParseMqttType(s string) (MqttType, error) {
	t := MqttType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown mqtt type %q", s)
	}
	return t, nil
}
