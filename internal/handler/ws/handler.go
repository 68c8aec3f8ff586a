package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	chathandler "github.com/zhouzirui/sms-sim/internal/handler/chat"
	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

const (
	defaultPongWait     = 60 * time.Second
	defaultPingInterval = 25 * time.Second
	writeTimeout        = 10 * time.Second
)

// Responder answers a chat request.
type Responder interface {
	Respond(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error)
}

// Handler WebSocket 对话处理器。每个入站帧是一个聊天请求，按顺序逐一应答。
// 连接在 pongWait 内没有任何入站帧（含 pong）时被关闭。
type Handler struct {
	svc          Responder
	upgrader     websocket.Upgrader
	pongWait     time.Duration
	pingInterval time.Duration
}

// Option customises a Handler.
type Option func(*Handler)

// WithKeepalive sets the ping interval and how long the peer may stay
// silent. pingInterval should be well below pongWait.
func WithKeepalive(pingInterval, pongWait time.Duration) Option {
	return func(h *Handler) {
		h.pingInterval = pingInterval
		h.pongWait = pongWait
	}
}

// New 创建WebSocket处理器
func New(svc Responder, opts ...Option) *Handler {
	h := &Handler{
		svc:          svc,
		pongWait:     defaultPongWait,
		pingInterval: defaultPingInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// 连接的生命周期不跟随 HTTP 请求的超时设置。
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	go pingLoop(ctx, conn, h.pingInterval)

	logger.Debug().Msg("websocket connected")
	for {
		var req chat.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		reply := h.answer(ctx, req)
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
}

func (h *Handler) answer(ctx context.Context, req chat.ChatRequest) chat.ExchangeReply {
	resp, err := h.svc.Respond(ctx, req)
	if err != nil {
		status, body := chathandler.DescribeError(err)
		zerolog.Ctx(ctx).Warn().Err(err).Str("session", req.SessionID).Int("status", status).Msg("websocket exchange failed")
		return chat.ExchangeReply{Error: body.Error, Details: body.Details}
	}
	return chat.ExchangeReply{Response: resp.Response}
}

func pingLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
