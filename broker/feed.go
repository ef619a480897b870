package broker

import (
	"fmt"
	"sync/atomic"

	"permanode/domain"
	"permanode/port"
)

type feedKey struct {
	kind domain.MqttType
	url  string
}

func (k feedKey) name() string {
	if k.kind == domain.MqttMessagesReferenced {
		return fmt.Sprintf("MqttMessagesReferenced(%s)", k.url)
	}
	return fmt.Sprintf("MqttMessages(%s)", k.url)
}

// feed is one MQTT subscription. connected follows the status callbacks
// of the subscriber.
type feed struct {
	key       feedKey
	sub       port.FeedSubscription
	connected atomic.Bool
}

func (f *feed) service() Service {
	status := StatusRunning
	if !f.connected.Load() {
		status = StatusDegraded
	}
	return Service{Name: f.key.name(), Status: status}
}
