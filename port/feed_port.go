package port

import (
	"context"

	"permanode/domain"
)

// FeedHandler receives one MQTT payload.
type FeedHandler func(payload []byte)

// FeedStatusHandler is told about connection changes.
type FeedStatusHandler func(connected bool, err error)

// FeedSubscription is one live MQTT subscription.
type FeedSubscription interface {
	IsConnected() bool
	Close()
}

// FeedSubscriber opens MQTT subscriptions.
type FeedSubscriber interface {
	Subscribe(ctx context.Context, url string, kind domain.MqttType, onPayload FeedHandler, onStatus FeedStatusHandler) (FeedSubscription, error)
}
