package booking_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-booking/internal/auth"
	"ms-booking/internal/booking"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

// BookingAPI is the slice of the booking service the HTTP layer consumes.
type BookingAPI interface {
	Create(ctx context.Context, holder models.Holder, req models.BookingRequest) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor models.Holder, reason string) (*models.Booking, error)
	Get(ctx context.Context, bookingID string, actor models.Holder) (*models.Booking, error)
	ListAll(ctx context.Context, actor models.Holder) ([]models.Booking, error)
	ListByHolder(ctx context.Context, holderID string) ([]models.Booking, error)
	ListByEvent(ctx context.Context, eventID string, actor models.Holder) ([]models.Booking, error)
}

// QRRenderer renders a confirmation QR PNG for a booking.
type QRRenderer interface {
	ConfirmationQR(b models.Booking) ([]byte, error)
}

type Handler struct {
	BookingService BookingAPI
	QR             QRRenderer
	Logger         *logger.Logger
}

func NewHandler(service BookingAPI, qr QRRenderer, log *logger.Logger) *Handler {
	return &Handler{BookingService: service, QR: qr, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.CreateBooking)
		r.Get("/", h.AllBookings)
		r.Get("/my", h.MyBookings)
		r.Get("/event/{eventId}", h.EventBookings)
		r.Get("/{bookingId}", h.GetBooking)
		r.Get("/{bookingId}/qr", h.BookingQR)
		r.Put("/{bookingId}/cancel", h.CancelBooking)
	})
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: invalid body: %v", err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body"))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateBooking: event=%s tickets=%d holder=%s", req.EventID, req.NumberOfTickets, holder.ID))

	b, err := h.BookingService.Create(r.Context(), holder, req)
	if err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}

	h.Logger.LogBooking("CREATE", b.BookingID, fmt.Sprintf("reference=%s tickets=%d amount=%d", b.Reference, b.TicketCount, b.TotalAmount))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Booking created successfully", b))
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	bookingID := chi.URLParam(r, "bookingId")

	var req models.CancelRequest
	if r.Body != nil {
		// A missing or empty body means no reason was given.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	h.Logger.Info("API", fmt.Sprintf("CancelBooking: id=%s holder=%s", bookingID, holder.ID))

	b, err := h.BookingService.Cancel(r.Context(), bookingID, holder, req.Reason)
	if err != nil {
		h.writeError(w, "CancelBooking", err)
		return
	}

	h.Logger.LogBooking("CANCEL", b.BookingID, fmt.Sprintf("reason=%q", b.CancellationNote))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Booking cancelled successfully", b))
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.BookingService.Get(r.Context(), bookingID, holder)
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("", b))
}

// AllBookings returns the whole ledger to administrators.
func (h *Handler) AllBookings(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	bookings, err := h.BookingService.ListAll(r.Context(), holder)
	if err != nil {
		h.writeError(w, "AllBookings", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.ListResponse(len(bookings), bookings))
}

func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	bookings, err := h.BookingService.ListByHolder(r.Context(), holder.ID)
	if err != nil {
		h.writeError(w, "MyBookings", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.ListResponse(len(bookings), bookings))
}

func (h *Handler) EventBookings(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	eventID := chi.URLParam(r, "eventId")

	bookings, err := h.BookingService.ListByEvent(r.Context(), eventID, holder)
	if err != nil {
		h.writeError(w, "EventBookings", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.ListResponse(len(bookings), bookings))
}

func (h *Handler) BookingQR(w http.ResponseWriter, r *http.Request) {
	holder, ok := auth.HolderFrom(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("no authenticated holder"))
		return
	}

	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.BookingService.Get(r.Context(), bookingID, holder)
	if err != nil {
		h.writeError(w, "BookingQR", err)
		return
	}

	png, err := h.QR.ConfirmationQR(*b)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookingQR: render failed: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to render QR"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// writeError maps business errors onto the wire envelope. Anything not in
// the taxonomy is a storage failure and comes back as a 500.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, booking.ErrEventNotFound), errors.Is(err, booking.ErrBookingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidTicketCount),
		errors.Is(err, booking.ErrCapacityExceeded),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrEventInactive):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, booking.ErrEventBusy):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteJSON(w, status, utils.ErrorResponse("internal error"))
		return
	}

	h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
	utils.WriteJSON(w, status, utils.ErrorResponse(err.Error()))
}
