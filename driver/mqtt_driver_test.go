package driver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permanode/domain"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeMessage struct{ payload []byte }

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return "messages" }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeClient struct {
	mu           sync.Mutex
	opts         *mqtt.ClientOptions
	connectErr   error
	connected    bool
	topic        string
	handler      mqtt.MessageHandler
	disconnected bool
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) IsConnectionOpen() bool { return c.IsConnected() }

func (c *fakeClient) Connect() mqtt.Token {
	if c.connectErr != nil {
		return newFakeToken(c.connectErr)
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.opts.OnConnect(c)
	return newFakeToken(nil)
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.disconnected = true
}

func (c *fakeClient) Publish(string, byte, bool, interface{}) mqtt.Token { return newFakeToken(nil) }

func (c *fakeClient) Subscribe(topic string, _ byte, h mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = topic
	c.handler = h
	return newFakeToken(nil)
}

func (c *fakeClient) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return newFakeToken(nil)
}

func (c *fakeClient) Unsubscribe(...string) mqtt.Token { return newFakeToken(nil) }

func (c *fakeClient) AddRoute(string, mqtt.MessageHandler) {}

func (c *fakeClient) OptionsReader() mqtt.ClientOptionsReader { return mqtt.ClientOptionsReader{} }

func (c *fakeClient) deliver(payload []byte) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	h(c, fakeMessage{payload: payload})
}

func newTestMQTTDriver(client *fakeClient) *MQTTDriver {
	d := NewMQTTDriver("test")
	d.connectTimeout = time.Second
	d.newClient = func(opts *mqtt.ClientOptions) mqtt.Client {
		client.opts = opts
		return client
	}
	return d
}

func TestMQTTDriver_SubscribeDeliversPayloads(t *testing.T) {
	client := &fakeClient{}
	d := newTestMQTTDriver(client)

	var got [][]byte
	var statuses []bool
	sub, err := d.Subscribe(context.Background(), "tcp://localhost:1883", domain.MqttMessagesReferenced,
		func(p []byte) { got = append(got, p) },
		func(connected bool, _ error) { statuses = append(statuses, connected) },
	)
	require.NoError(t, err)
	assert.Equal(t, "messages/referenced", client.topic)
	assert.True(t, sub.IsConnected())

	client.deliver([]byte("a"))
	client.deliver([]byte("b"))
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, got)

	client.opts.OnConnectionLost(client, errors.New("eof"))
	assert.Equal(t, []bool{true, false}, statuses)

	sub.Close()
	sub.Close()
	assert.True(t, client.disconnected)
}

func TestMQTTDriver_ConnectError(t *testing.T) {
	client := &fakeClient{connectErr: errors.New("refused")}
	d := newTestMQTTDriver(client)

	_, err := d.Subscribe(context.Background(), "tcp://localhost:1883", domain.MqttMessages, func([]byte) {}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestMQTTDriver_UnknownType(t *testing.T) {
	d := NewMQTTDriver("")
	_, err := d.Subscribe(context.Background(), "tcp://localhost:1883", domain.MqttType("bogus"), func([]byte) {}, nil)
	assert.Error(t, err)
}
