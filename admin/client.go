package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Client sends admin commands to a running daemon.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the admin channel at url (ws://host:port). A non-empty
// secret signs a short lived bearer token.
func Dial(ctx context.Context, url, secret string) (*Client, error) {
	header := http.Header{}
	if secret != "" {
		token, err := NewToken(secret, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("signing admin token: %w", err)
		}
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (http %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes cmd and waits for its reply.
func (c *Client) Send(ctx context.Context, cmd Command) (Reply, error) {
	if err := cmd.Validate(); err != nil {
		return Reply{}, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	payload, err := json.Marshal(cmd)
	if err != nil {
		return Reply{}, err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return Reply{}, fmt.Errorf("send %s: %w", cmd, err)
	}
	var reply Reply
	if err := c.conn.ReadJSON(&reply); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

// Close says goodbye and closes the connection.
func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
