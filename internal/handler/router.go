package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/sms-sim/internal/handler/chat"
	"github.com/zhouzirui/sms-sim/internal/handler/health"
	"github.com/zhouzirui/sms-sim/internal/handler/models"
	"github.com/zhouzirui/sms-sim/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/sms-sim/internal/middleware"
	"github.com/zhouzirui/sms-sim/pkg/utils"
)

// Services groups what the routes depend on.
type Services struct {
	Chat      chat.Responder
	Health    health.Checker
	Models    models.Lister
	StaticDir string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(logger zerolog.Logger, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		health.New(svc.Health).RegisterRoutes(api)
		chat.New(svc.Chat).RegisterRoutes(api)
		ws.New(svc.Chat).RegisterRoutes(api)
		if svc.Models != nil {
			models.New(svc.Models).RegisterRoutes(api)
		}

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondError(w, http.StatusNotFound, "not found", r.URL.Path)
		})
	})

	if svc.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(svc.StaticDir)))
	}

	return r
}
