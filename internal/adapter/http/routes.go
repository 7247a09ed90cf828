package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quorumforge/verdict/internal/adapter/ws"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, hub *ws.Hub) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Consensus
		r.Post("/consensus/evaluate", h.EvaluateConsensus)
		r.Post("/votes/aggregate", h.AggregateVotes)

		// Features
		r.Post("/features", h.CreateFeature)
		r.Get("/features/{id}", h.GetFeature)
		r.Post("/features/{id}/scores", h.AddScore)
		r.Put("/features/{id}/issues", h.SetIssues)
		r.Post("/features/{id}/approve-spec", h.ApproveSpec)
		r.Post("/features/{id}/greenlight", h.Greenlight)
		r.Post("/features/{id}/veto", h.VetoSpec)
		r.Put("/features/{id}/manual-mode", h.SetManualMode)

		// Bugs
		r.Post("/bugs", h.CreateBug)
		r.Get("/bugs/{id}", h.GetBug)
		r.Put("/bugs/{id}/fix-plan", h.SetFixPlan)
		r.Post("/bugs/{id}/approve-fix", h.ApproveFix)
		r.Post("/bugs/{id}/veto", h.VetoFix)
		r.Put("/bugs/{id}/manual-mode", h.SetManualMode)
	})

	if hub != nil {
		r.Get("/ws", hub.HandleWS)
	}
}
