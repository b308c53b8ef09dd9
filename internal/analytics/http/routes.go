package analytichttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/summary", h.Summary)
		r.Get("/revenue", h.Revenue)
	})
}
