package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kroy92/copilot-automation-testing/internal/config"
	"github.com/kroy92/copilot-automation-testing/internal/handler/mockbot"
	conversationService "github.com/kroy92/copilot-automation-testing/internal/service/conversation"
	"github.com/kroy92/copilot-automation-testing/pkg/utils"
)

// NewRouter wires the mock Direct Line routes to the conversation store.
func NewRouter(conversations *conversationService.Service, responder mockbot.Responder, serverCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mockbot.New(conversations, responder, serverCfg.ChunkSize).RegisterRoutes(r)

	return r
}
