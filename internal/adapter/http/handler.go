package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"marketplace-ads/internal/core/port"
	"marketplace-ads/internal/metrics"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP: requests are decoded, authenticated and handed to the AdUseCase,
// whose domain errors are mapped back to status codes.
type Handler struct {
	svc      port.AdUseCase
	auth     *Authenticator
	validate *validator.Validate
	logger   *slog.Logger
	router   chi.Router
}

// NewHandler creates a handler with all routes configured. Campaign
// management requires a bearer token; ad selection and clicks are public.
func NewHandler(svc port.AdUseCase, auth *Authenticator, logger *slog.Logger) *Handler {
	h := &Handler{
		svc:      svc,
		auth:     auth,
		validate: newValidator(),
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, h.instrument)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ads/select", h.handleSelectAds)
		r.Get("/ads/click/{id}", h.handleAdClick)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)

			r.Post("/campaigns", h.handleCreateCampaign)
			r.Get("/campaigns", h.handleListCampaigns)
			r.Route("/campaigns/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetCampaign)
				r.Delete("/", h.handleDeleteCampaign)
				r.Get("/stats", h.handleCampaignStats)
				r.Get("/history", h.handleCampaignHistory)
				r.Post("/approve", h.handleTransition(svc.ApproveCampaign))
				r.Post("/reject", h.handleTransition(svc.RejectCampaign))
				r.Post("/pause", h.handleTransition(svc.PauseCampaign))
				r.Post("/resume", h.handleTransition(svc.ResumeCampaign))
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
