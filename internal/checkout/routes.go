package checkout

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers checkout routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Summary)
	r.Get("/customer/{phone}", h.ResolveCustomer)
	r.Post("/", h.Submit)
}
