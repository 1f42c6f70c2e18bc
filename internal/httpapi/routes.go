package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/hub"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/ws"
)

func SetupRoutes(h *hub.Hub, logger *zap.Logger, defaultPickClockSec int, archive PickArchive) http.Handler {
	r := chi.NewRouter()

	r.Post("/drafts", CreateDraft(h, logger, defaultPickClockSec))
	r.Post("/drafts/{code}/start", StartDraft(h))
	r.Get("/drafts/{code}/picks", DraftPicks(archive))
	r.Get("/ws", ws.Handler(h, logger))
	r.Get("/healthz", Healthz)
	return r
}
