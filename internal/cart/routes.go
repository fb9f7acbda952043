package cart

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers cart routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/add", h.Add)
	r.Post("/lines/{lineID}/increase", h.Increase)
	r.Post("/lines/{lineID}/decrease", h.Decrease)
}
