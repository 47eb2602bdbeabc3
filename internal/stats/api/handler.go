package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/stats"
	"ms-booking/internal/utils"
)

type Handler struct {
	Service *stats.Service
	Logger  *logger.Logger
}

func NewHandler(service *stats.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/bookings/stats", h.GlobalStats)
	r.Get("/events/{eventId}/stats", h.EventStats)
}

// GlobalStats is admin-only: ledger-wide revenue belongs to operators.
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok || !holder.Admin {
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("admin access required"))
		return
	}

	result, err := h.Service.GlobalStats(r.Context())
	if err != nil {
		h.Logger.Error("STATS", fmt.Sprintf("GlobalStats: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("internal error"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", result))
}

func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok || !holder.Admin {
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("admin access required"))
		return
	}

	eventID := chi.URLParam(r, "eventId")

	result, err := h.Service.StatsForEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("STATS", fmt.Sprintf("EventStats: event=%s: %v", eventID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("internal error"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", result))
}
