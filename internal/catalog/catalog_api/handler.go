package catalog_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-booking/internal/auth"
	"ms-booking/internal/catalog"
	"ms-booking/internal/logger"
	"ms-booking/internal/utils"
)

type Handler struct {
	Catalog *catalog.Service
	Logger  *logger.Logger
}

func NewHandler(service *catalog.Service, log *logger.Logger) *Handler {
	return &Handler{Catalog: service, Logger: log}
}

// RegisterPublicRoutes mounts the read-only catalog endpoints.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{eventId}", h.GetEvent)
	})
}

// RegisterAdminRoutes mounts the authenticated catalog mutations.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Put("/{eventId}/capacity", h.ChangeCapacity)
		r.Put("/{eventId}/price", h.ChangePrice)
		r.Put("/{eventId}/deactivate", h.DeactivateEvent)
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Catalog.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.ListResponse(len(events), events))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.Catalog.GetWithAvailability(r.Context(), eventID)
	if err != nil {
		h.writeError(w, "GetEvent", err)
		return
	}

	if event.Capacity > 0 {
		h.Logger.LogCapacity(eventID, event.Capacity-event.AvailableSpots, event.Capacity)
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", event))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	var in catalog.CreateEventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body"))
		return
	}

	event, err := h.Catalog.Create(r.Context(), holder, in)
	if err != nil {
		h.writeError(w, "CreateEvent", err)
		return
	}

	h.Logger.Info("CATALOG", fmt.Sprintf("event created: %s (%s)", event.ID, event.Title))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created successfully", event))
}

func (h *Handler) ChangeCapacity(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	eventID := chi.URLParam(r, "eventId")

	var body struct {
		Capacity int `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body"))
		return
	}

	if err := h.Catalog.ChangeCapacity(r.Context(), holder, eventID, body.Capacity); err != nil {
		h.writeError(w, "ChangeCapacity", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Capacity updated", nil))
}

func (h *Handler) ChangePrice(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	eventID := chi.URLParam(r, "eventId")

	var body struct {
		Price int64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body"))
		return
	}

	if err := h.Catalog.ChangePrice(r.Context(), holder, eventID, body.Price); err != nil {
		h.writeError(w, "ChangePrice", err)
		return
	}

	h.Logger.Info("CATALOG", fmt.Sprintf("event %s price changed to %d", eventID, body.Price))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Price updated", nil))
}

func (h *Handler) DeactivateEvent(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	eventID := chi.URLParam(r, "eventId")

	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := h.Catalog.Deactivate(r.Context(), holder, eventID, body.Reason); err != nil {
		h.writeError(w, "DeactivateEvent", err)
		return
	}

	h.Logger.Info("CATALOG", fmt.Sprintf("event deactivated: %s", eventID))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deactivated", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidEvent), errors.Is(err, catalog.ErrCapacityCommitted):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotAuthorized):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteJSON(w, status, utils.ErrorResponse("internal error"))
		return
	}

	h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
	utils.WriteJSON(w, status, utils.ErrorResponse(err.Error()))
}
