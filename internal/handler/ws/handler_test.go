package ws

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
	"github.com/zhouzirui/sms-sim/internal/service/conversation"
	"github.com/zhouzirui/sms-sim/internal/widget"
)

type echoResponder struct{}

func (echoResponder) Respond(_ context.Context, req chat.ChatRequest) (*chat.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, conversation.ErrInvalidRequest
	}
	return &chat.ChatResponse{Response: "echo: " + req.Message}, nil
}

func newServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		New(echoResponder{}, opts...).RegisterRoutes(r)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, opts ...Option) *websocket.Conn {
	t.Helper()
	srv := newServer(t, opts...)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketExchange(t *testing.T) {
	conn := dial(t)

	for _, msg := range []string{"hi", "still there?"} {
		require.NoError(t, conn.WriteJSON(chat.ChatRequest{SessionID: "s", Message: msg}))

		var reply chat.ExchangeReply
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, "echo: "+msg, reply.Response)
		assert.Empty(t, reply.Error)
	}
}

func TestWebSocketErrorFrame(t *testing.T) {
	conn := dial(t)

	require.NoError(t, conn.WriteJSON(chat.ChatRequest{SessionID: "s"}))

	var reply chat.ExchangeReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Empty(t, reply.Response)
	assert.Equal(t, "invalid request", reply.Error)
}

func TestWebSocketClientSurvivesIdleGap(t *testing.T) {
	srv := newServer(t, WithKeepalive(20*time.Millisecond, 100*time.Millisecond))

	tr := widget.NewWSTransport(srv.URL, nil)
	defer tr.Close()
	ctx := context.Background()

	reply, err := tr.Send(ctx, chat.ChatRequest{SessionID: "s", Message: "first"})
	require.NoError(t, err)
	assert.Equal(t, "echo: first", reply)

	// several pong deadlines pass while the user is thinking
	time.Sleep(400 * time.Millisecond)

	reply, err = tr.Send(ctx, chat.ChatRequest{SessionID: "s", Message: "second"})
	require.NoError(t, err)
	assert.Equal(t, "echo: second", reply)
}

func TestWebSocketDropsSilentPeer(t *testing.T) {
	conn := dial(t, WithKeepalive(20*time.Millisecond, 100*time.Millisecond))

	// never reading means pings go unanswered
	time.Sleep(300 * time.Millisecond)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply chat.ExchangeReply
	err := conn.ReadJSON(&reply)
	require.Error(t, err)

	var netErr net.Error
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "server should have closed the connection: %v", err)
	}
}
