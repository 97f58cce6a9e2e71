// Package handlers exposes the bookings read API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/athoward/bookhound/internal/domain"
	"github.com/athoward/bookhound/internal/modules/bookings"
)

// Handler serves booking, order and session queries.
type Handler struct {
	repo *bookings.Repository
	log  zerolog.Logger
}

// NewHandler creates a bookings handler.
func NewHandler(repo *bookings.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("component", "bookings-handlers").Logger(),
	}
}

// RegisterRoutes registers all bookings routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{bookingID}", h.handleGet)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/{mjrID}", h.handleOrder)
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.handleSessions)
		r.Get("/{sessionID}", h.handleSession)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := bookings.Filter{
		Status: domain.ProcessingStatus(q.Get("status")),
		MJRID:  q.Get("mjr_id"),
		Date:   q.Get("date"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	rows, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list bookings")
		h.respondError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"bookings": rows,
		"count":    len(rows),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	b, err := h.repo.Get(r.Context(), bookingID)
	if err != nil {
		h.log.Error().Err(err).Str("booking_id", bookingID).Msg("Failed to get booking")
		h.respondError(w, http.StatusInternalServerError, "failed to get booking")
		return
	}
	if b == nil {
		h.respondError(w, http.StatusNotFound, "booking not found")
		return
	}
	h.respondJSON(w, http.StatusOK, b)
}

// handleOrder returns an order's day rows plus, for multi-day orders, the
// shared header.
func (h *Handler) handleOrder(w http.ResponseWriter, r *http.Request) {
	mjrID := chi.URLParam(r, "mjrID")

	days, err := h.repo.List(r.Context(), bookings.Filter{MJRID: mjrID})
	if err != nil {
		h.log.Error().Err(err).Str("mjr_id", mjrID).Msg("Failed to list order days")
		h.respondError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	if len(days) == 0 {
		h.respondError(w, http.StatusNotFound, "order not found")
		return
	}

	header, err := h.repo.GetOrderHeader(r.Context(), mjrID)
	if err != nil {
		h.log.Error().Err(err).Str("mjr_id", mjrID).Msg("Failed to get order header")
		h.respondError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"mjr_id": mjrID,
		"header": header,
		"days":   days,
	})
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	sessions, err := h.repo.RecentSessions(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sessions")
		h.respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s, err := h.repo.GetSession(r.Context(), sessionID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to get session")
		h.respondError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if s == nil {
		h.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	h.respondJSON(w, http.StatusOK, s)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
