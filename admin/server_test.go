package admin

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permanode/broker"
	"permanode/config"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func startServer(t *testing.T, secret string, b *fakeBroker) *httptest.Server {
	t.Helper()
	s := NewServer(config.WebsocketConfig{AuthSecret: secret}, NewDispatcher(b, &fakeStorage{}, nil))
	srv := httptest.NewServer(s)
	t.Cleanup(func() {
		s.closeAll()
		srv.Close()
	})
	return srv
}

func TestServer_CommandRoundTrip(t *testing.T) {
	b := &fakeBroker{}
	srv := startServer(t, "", b)
	ctx := context.Background()

	c, err := Dial(ctx, wsURL(srv), "")
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.Send(ctx, BrokerTopology(broker.AddMqttMessages, "tcp://h:1883"))
	require.NoError(t, err)
	assert.True(t, reply.OK)

	reply, err = c.Send(ctx, BrokerStatus())
	require.NoError(t, err)
	require.NotNil(t, reply.Status)
	assert.Equal(t, broker.StatusRunning, reply.Status.Status)

	b.mu.Lock()
	assert.Len(t, b.topologies, 1)
	b.mu.Unlock()
}

func TestServer_MalformedCommandGetsErrorReply(t *testing.T) {
	srv := startServer(t, "", &fakeBroker{})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"PermanodeBroker":"Restart"}`)))
	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.False(t, reply.OK)
	assert.Contains(t, reply.Error, "Restart")
}

func TestServer_RequiresToken(t *testing.T) {
	srv := startServer(t, "s3cret", &fakeBroker{})
	ctx := context.Background()

	_, err := Dial(ctx, wsURL(srv), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = Dial(ctx, wsURL(srv), "wrong")
	require.Error(t, err)

	c, err := Dial(ctx, wsURL(srv), "s3cret")
	require.NoError(t, err)
	defer c.Close()
	reply, err := c.Send(ctx, BrokerStatus())
	require.NoError(t, err)
	assert.True(t, reply.OK)
}

func TestAuthorize(t *testing.T) {
	secret := []byte("s3cret")
	valid, err := NewToken("s3cret", time.Minute)
	require.NoError(t, err)
	expired, err := NewToken("s3cret", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		ok     bool
	}{
		{name: "valid", header: "Bearer " + valid, ok: true},
		{name: "missing", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "expired", header: "Bearer " + expired},
		{name: "garbage", header: "Bearer abc.def.ghi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			err := authorize(r, secret)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.NoError(t, authorize(httptest.NewRequest(http.MethodGet, "/", nil), nil))
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s := NewServer(config.WebsocketConfig{}, NewDispatcher(&fakeBroker{}, nil, nil))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	c, err := Dial(context.Background(), "ws://"+ln.Addr().String(), "")
	require.NoError(t, err)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	_, err = c.Send(context.Background(), BrokerStatus())
	assert.Error(t, err)
	_ = c.Close()
}
