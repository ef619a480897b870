package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"permanode/domain"
	"permanode/metrics"
	"permanode/port"
)

const (
	mqttConnectTimeout  = 10 * time.Second
	mqttDisconnectQuiet = 250 // milliseconds
)

// MQTTDriver opens paho subscriptions to node MQTT brokers.
type MQTTDriver struct {
	clientPrefix   string
	connectTimeout time.Duration
	newClient      func(*mqtt.ClientOptions) mqtt.Client
}

// NewMQTTDriver returns a driver whose client ids start with clientPrefix.
func NewMQTTDriver(clientPrefix string) *MQTTDriver {
	if clientPrefix == "" {
		clientPrefix = "permanode"
	}
	return &MQTTDriver{
		clientPrefix:   clientPrefix,
		connectTimeout: mqttConnectTimeout,
		newClient:      mqtt.NewClient,
	}
}

type mqttSubscription struct {
	client mqtt.Client
	url    string
	kind   domain.MqttType
	once   sync.Once
}

func (s *mqttSubscription) IsConnected() bool {
	return s.client.IsConnectionOpen()
}

func (s *mqttSubscription) Close() {
	s.once.Do(func() {
		if s.client.IsConnected() {
			s.client.Unsubscribe(s.kind.Topic()).WaitTimeout(time.Second)
		}
		s.client.Disconnect(mqttDisconnectQuiet)
		metrics.SetFeedConnected(s.url, string(s.kind), false)
	})
}

// Subscribe connects to url and subscribes to the topic of kind. The
// subscription is renewed on every reconnect. Subscribe fails only when the
// first connection attempt fails within the connect timeout.
func (d *MQTTDriver) Subscribe(
	ctx context.Context,
	url string,
	kind domain.MqttType,
	onPayload port.FeedHandler,
	onStatus port.FeedStatusHandler,
) (port.FeedSubscription, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("subscribe %s: unknown feed type %q", url, kind)
	}
	if onStatus == nil {
		onStatus = func(bool, error) {}
	}

	log := slog.Default().With("feed_url", url, "feed_type", string(kind))
	handler := func(_ mqtt.Client, m mqtt.Message) {
		metrics.MessagesReceived.WithLabelValues(string(kind)).Inc()
		onPayload(m.Payload())
	}

	opts := mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(fmt.Sprintf("%s-%s-%s", d.clientPrefix, strings.ReplaceAll(string(kind), "_", "-"), uuid.NewString()[:8])).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectTimeout(d.connectTimeout).
		SetOnConnectHandler(func(c mqtt.Client) {
			tok := c.Subscribe(kind.Topic(), kind.QoS(), handler)
			if tok.WaitTimeout(d.connectTimeout) && tok.Error() != nil {
				log.Error("mqtt subscribe failed", "error", tok.Error())
				metrics.SetFeedConnected(url, string(kind), false)
				onStatus(false, tok.Error())
				return
			}
			log.Info("mqtt feed connected", "topic", kind.Topic())
			metrics.SetFeedConnected(url, string(kind), true)
			onStatus(true, nil)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("mqtt feed connection lost", "error", err)
			metrics.SetFeedConnected(url, string(kind), false)
			onStatus(false, err)
		})

	client := d.newClient(opts)
	tok := client.Connect()

	select {
	case <-tok.Done():
	case <-ctx.Done():
		client.Disconnect(0)
		return nil, ctx.Err()
	case <-time.After(d.connectTimeout):
		client.Disconnect(0)
		return nil, fmt.Errorf("subscribe %s: connect timed out after %s", url, d.connectTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", url, err)
	}

	return &mqttSubscription{client: client, url: url, kind: kind}, nil
}
