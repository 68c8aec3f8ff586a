package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
	"github.com/zhouzirui/sms-sim/pkg/utils"
)

// Checker reports whether the backend can reach any model.
type Checker interface {
	HasAPIKey() bool
	AvailableModels() []string
}

// Handler 健康检查处理器
type Handler struct {
	checker Checker
}

// New 创建健康检查处理器。checker 为空时视为未配置密钥。
func New(checker Checker) *Handler {
	return &Handler{checker: checker}
}

// RegisterRoutes 注册健康检查路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := chat.HealthResponse{Status: "ok"}
	if h.checker != nil {
		resp.HasAPIKey = h.checker.HasAPIKey()
		resp.Models = h.checker.AvailableModels()
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
