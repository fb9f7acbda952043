package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vedaro/shopdesk/internal/auth"
	"github.com/vedaro/shopdesk/internal/cart"
	"github.com/vedaro/shopdesk/internal/checkout"
	"github.com/vedaro/shopdesk/internal/history"
	"github.com/vedaro/shopdesk/internal/scan"
	"github.com/vedaro/shopdesk/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	AuthHandler     *auth.Handler
	ScanHandler     *scan.Handler
	CartHandler     *cart.Handler
	CheckoutHandler *checkout.Handler
	HistoryHandler  *history.Handler
}

// NewRouter constructs the chi.Router with Shopdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything past login runs against the staff bearer token.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		r.Route("/scan", params.ScanHandler.MountRoutes)
		r.Route("/cart", params.CartHandler.MountRoutes)
		r.Route("/checkout", params.CheckoutHandler.MountRoutes)
		r.Route("/history", params.HistoryHandler.MountRoutes)
	})

	return r
}
