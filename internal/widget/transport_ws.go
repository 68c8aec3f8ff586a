package widget

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

// WSTransport sends exchanges over a persistent websocket to /api/ws and
// uses HTTP for everything else. The connection is dialed on first use and
// redialed after any failure. A background reader keeps the connection
// alive between sends by answering server pings.
type WSTransport struct {
	*HTTPTransport

	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *wsConn
}

// wsConn is one dialed connection and its reader goroutine.
type wsConn struct {
	conn    *websocket.Conn
	replies chan chat.ExchangeReply
	done    chan struct{}
	// err is set before done is closed.
	err error
}

func newWSConn(conn *websocket.Conn) *wsConn {
	c := &wsConn{
		conn:    conn,
		replies: make(chan chat.ExchangeReply, 1),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop 持续读取以便处理 ping 控制帧，应答帧交给等待中的 Send。
func (c *wsConn) readLoop() {
	defer close(c.done)
	for {
		var reply chat.ExchangeReply
		if err := c.conn.ReadJSON(&reply); err != nil {
			c.err = err
			return
		}
		select {
		case c.replies <- reply:
		default:
			// 无人等待的应答（发送方已取消），丢弃。
		}
	}
}

func (c *wsConn) alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// NewWSTransport derives the websocket URL from an http(s) base URL.
func NewWSTransport(baseURL string, client *http.Client) *WSTransport {
	base := strings.TrimRight(baseURL, "/")
	wsURL := base
	switch {
	case strings.HasPrefix(base, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(base, "http://")
	}

	return &WSTransport{
		HTTPTransport: NewHTTPTransport(baseURL, client),
		url:           wsURL + "/api/ws",
		dialer:        websocket.DefaultDialer,
	}
}

// Send writes one request frame and waits for its answer frame. A write
// failure on a reused connection is retried once on a fresh one.
func (t *WSTransport) Send(ctx context.Context, req chat.ChatRequest) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, reused, err := t.connect(ctx)
	if err != nil {
		return "", err
	}
	if err := c.write(ctx, req); err != nil {
		t.drop()
		if !reused {
			return "", errors.Wrap(err, "write exchange frame")
		}
		if c, _, err = t.connect(ctx); err != nil {
			return "", err
		}
		if err := c.write(ctx, req); err != nil {
			t.drop()
			return "", errors.Wrap(err, "write exchange frame")
		}
	}

	var reply chat.ExchangeReply
	select {
	case reply = <-c.replies:
	case <-c.done:
		t.drop()
		select {
		case reply = <-c.replies:
		default:
			return "", errors.Wrap(c.err, "read exchange frame")
		}
	case <-ctx.Done():
		t.drop()
		return "", errors.Wrap(ctx.Err(), "wait exchange frame")
	}

	if reply.Error != "" {
		details := reply.Details
		if details == "" {
			details = reply.Error
		}
		return "", &StatusError{Details: details}
	}
	return replyText(&reply.Response)
}

func (c *wsConn) write(ctx context.Context, req chat.ChatRequest) error {
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	return c.conn.WriteJSON(req)
}

// Close closes the websocket if open.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.conn.Close()
	t.conn = nil
	return err
}

// connect returns the cached connection when its reader is still running,
// otherwise dials a new one. reused reports whether the cached one was used.
func (t *WSTransport) connect(ctx context.Context) (c *wsConn, reused bool, err error) {
	if t.conn != nil {
		if t.conn.alive() {
			return t.conn, true, nil
		}
		t.drop()
	}
	conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return nil, false, errors.Wrapf(err, "dial %s", t.url)
	}
	t.conn = newWSConn(conn)
	return t.conn, false, nil
}

func (t *WSTransport) drop() {
	if t.conn != nil {
		_ = t.conn.conn.Close()
		t.conn = nil
	}
}
