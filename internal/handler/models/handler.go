package models

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/sms-sim/internal/service/ai"
	"github.com/zhouzirui/sms-sim/pkg/utils"
)

// Lister exposes the model catalog.
type Lister interface {
	List() []ai.ModelInfo
	DefaultModel() string
}

// ListResponse is the body of GET /api/models.
type ListResponse struct {
	Default string         `json:"default"`
	Models  []ai.ModelInfo `json:"models"`
}

// Handler 模型列表处理器
type Handler struct {
	catalog Lister
}

// New 创建模型列表处理器
func New(catalog Lister) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes 注册模型相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/models", h.handleListModels)
}

// handleListModels 列出所有模型及其可用状态
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, ListResponse{
		Default: h.catalog.DefaultModel(),
		Models:  h.catalog.List(),
	})
}
