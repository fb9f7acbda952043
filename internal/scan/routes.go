package scan

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers scan session routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/session", h.Open)
	r.Delete("/session", h.Close)
	r.Get("/session", h.Show)
	r.Post("/session/scan", h.Scan)
	r.Delete("/session/items/{identifier}", h.Remove)
	r.Post("/session/items/{identifier}/cart", h.AddOne)
	r.Post("/session/cart", h.AddAll)
}
