package scan

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vedaro/shopdesk/internal/platform/httpx"
	"github.com/vedaro/shopdesk/internal/shared"
)

// Handler exposes the scan session to the terminal UI. Sessions are keyed by
// the staff HTTP session, so each terminal gets its own.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func sessionKey(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.ID
	}
	return ""
}

// Open starts or resets the compare-scan session (view enter/re-enter).
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Open(sessionKey(r)))
}

// Close destroys the session (view exit).
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.service.Close(sessionKey(r))
	w.WriteHeader(http.StatusNoContent)
}

// Show returns the current session view.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(sessionKey(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type scanRequest struct {
	Code string `json:"code"`
}

// Scan processes one raw scan event.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Code == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "scan code required")
		return
	}
	result, err := h.service.Scan(r.Context(), sessionKey(r), req.Code)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// Remove drops one item from the session.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Remove(sessionKey(r), chi.URLParam(r, "identifier"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// AddOne inserts one held item into the cart.
func (h *Handler) AddOne(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.AddOne(r.Context(), sessionKey(r), chi.URLParam(r, "identifier"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// AddAll inserts every held item into the cart.
func (h *Handler) AddAll(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.AddAll(r.Context(), sessionKey(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrScanLimit):
		httpx.Problem(w, http.StatusConflict, "Limit Reached", "you can scan max 3 items")
	case errors.Is(err, ErrSessionNotFound):
		httpx.Problem(w, http.StatusConflict, "Session Not Open", "open the compare view first")
	case errors.Is(err, ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "item not in session")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Invalid QR", "no product found")
	default:
		h.logger.Error("scan request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
