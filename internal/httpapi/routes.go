package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kyaha-vine/DistruptFightingICE/internal/core"
	"github.com/kyaha-vine/DistruptFightingICE/internal/ws"
)

func SetupRoutes(c *core.Core, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/ws", ws.Handler(c, log))
	r.Post("/chat/command", ChatCommand(c))
	r.Get("/status", Status(c))
	r.Get("/healthz", Healthz)
	return r
}
