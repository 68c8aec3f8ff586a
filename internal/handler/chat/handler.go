package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
	"github.com/zhouzirui/sms-sim/internal/service/ai"
	chatservice "github.com/zhouzirui/sms-sim/internal/service/chat"
	"github.com/zhouzirui/sms-sim/internal/service/conversation"
	"github.com/zhouzirui/sms-sim/pkg/utils"
)

// maxBodyBytes 限制单次请求体大小。
const maxBodyBytes = 1 << 20

// Responder answers chat requests and forgets sessions.
type Responder interface {
	Respond(ctx context.Context, req chat.ChatRequest) (*chat.ChatResponse, error)
	Forget(ctx context.Context, sessionID string) error
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	svc Responder
}

// New 创建聊天处理器
func New(svc Responder) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Delete("/sessions/{sessionID}", h.handleDeleteSession)
}

// handleChat 生成一条回复
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	resp, err := h.svc.Respond(r.Context(), req)
	if err != nil {
		status, body := DescribeError(err)
		logFailure(r.Context(), req.SessionID, status, err)
		utils.RespondError(w, status, body.Error, body.Details)
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleDeleteSession 删除会话记录
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if err := h.svc.Forget(r.Context(), sessionID); err != nil {
		status, body := DescribeError(err)
		logFailure(r.Context(), sessionID, status, err)
		utils.RespondError(w, status, body.Error, body.Details)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DescribeError maps an exchange failure to an HTTP status and error body.
func DescribeError(err error) (int, chat.ErrorResponse) {
	switch {
	case errors.Is(err, conversation.ErrInvalidRequest), errors.Is(err, chatservice.ErrSessionRequired):
		return http.StatusBadRequest, chat.ErrorResponse{Error: "invalid request", Details: err.Error()}
	case errors.Is(err, ai.ErrModelUnavailable):
		return http.StatusServiceUnavailable, chat.ErrorResponse{Error: "model unavailable", Details: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, chat.ErrorResponse{Error: "model timed out", Details: err.Error()}
	case errors.Is(err, ai.ErrEmptyReply):
		return http.StatusBadGateway, chat.ErrorResponse{Error: "empty reply", Details: err.Error()}
	default:
		return http.StatusInternalServerError, chat.ErrorResponse{Error: "failed to get response", Details: err.Error()}
	}
}

func logFailure(ctx context.Context, sessionID string, status int, err error) {
	logger := zerolog.Ctx(ctx)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Str("session", sessionID).Int("status", status).Msg("chat request failed")
}
