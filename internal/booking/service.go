package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

// LedgerStore is the full ledger contract: append, status update and the
// queries the service and guard run. Bookings are never deleted.
type LedgerStore interface {
	LedgerReader
	InsertBooking(ctx context.Context, b models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, b models.Booking) error
	ListAll(ctx context.Context) ([]models.Booking, error)
	ListByHolder(ctx context.Context, holderID string) ([]models.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Booking, error)
	ListConfirmedByEvent(ctx context.Context, eventID string) ([]models.Booking, error)
}

// EventCatalog resolves event inventory for the guard. A missing event is
// (nil, nil), not an error; storage failures are errors.
type EventCatalog interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

// EventLocker serializes capacity check and insert per event. Lock returns
// false when another request holds the event.
type EventLocker interface {
	Lock(ctx context.Context, eventID, ownerID string) (bool, error)
	Unlock(ctx context.Context, eventID, ownerID string) error
}

type EventPublisher interface {
	PublishBookingCreated(b models.Booking) error
	PublishBookingCancelled(b models.Booking) error
}

type BookingService struct {
	Ledger  LedgerStore
	Catalog EventCatalog
	Locker  EventLocker
	Kafka   EventPublisher
	Guard   *CapacityGuard
}

func NewBookingService(ledger LedgerStore, catalog EventCatalog, locker EventLocker, kafka EventPublisher) *BookingService {
	return &BookingService{
		Ledger:  ledger,
		Catalog: catalog,
		Locker:  locker,
		Kafka:   kafka,
		Guard:   NewCapacityGuard(ledger),
	}
}

const (
	lockAttempts = 50
	lockRetryGap = 20 * time.Millisecond
)

// Create appends a confirmed booking if the event can accommodate the
// requested tickets. The capacity check and the insert run under the
// per-event lock; two simultaneous requests can never jointly overbook.
func (s *BookingService) Create(ctx context.Context, holder models.Holder, req models.BookingRequest) (*models.Booking, error) {
	if req.NumberOfTickets < 1 {
		return nil, ErrInvalidTicketCount
	}

	event, err := s.Catalog.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("resolve event %s: %w", req.EventID, err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsActive {
		return nil, ErrEventInactive
	}

	bookingID := uuid.NewString()

	if err := s.acquireEventLock(ctx, event.ID, bookingID); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Locker.Unlock(ctx, event.ID, bookingID); err != nil {
			fmt.Printf("failed to release booking lock for event %s: %v\n", event.ID, err)
		}
	}()

	ok, err := s.Guard.CanAccommodate(ctx, event, req.NumberOfTickets)
	if err != nil {
		return nil, fmt.Errorf("capacity check for event %s: %w", event.ID, err)
	}
	if !ok {
		return nil, ErrCapacityExceeded
	}

	// Holder contact details from the request win over the identity
	// provider's, matching the original booking form behavior.
	b := models.Booking{
		BookingID:   bookingID,
		Reference:   utils.GenerateBookingReference(),
		EventID:     event.ID,
		HolderID:    holder.ID,
		HolderName:  fallback(req.UserName, holder.Name),
		HolderEmail: fallback(req.UserEmail, holder.Email),
		HolderPhone: fallback(req.UserPhone, holder.Phone),
		TicketCount: req.NumberOfTickets,
		// Frozen at creation: later price changes never touch it.
		TotalAmount: event.Price * int64(req.NumberOfTickets),
		Currency:    event.Currency,
		Status:      models.StatusConfirmed,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.Ledger.InsertBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("append booking: %w", err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCreated(b); err != nil {
			fmt.Printf("Kafka publish error (booking created): %v\n", err)
		}
	}

	return &b, nil
}

// Cancel flips a confirmed booking to cancelled. One-way: cancelling an
// already-cancelled booking is an error and leaves the record unchanged.
func (s *BookingService) Cancel(ctx context.Context, bookingID string, actor models.Holder, reason string) (*models.Booking, error) {
	b, err := s.Ledger.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}

	if b.HolderID != actor.ID && !actor.Admin {
		return nil, ErrUnauthorized
	}

	if b.Status == models.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	now := time.Now().UTC()
	b.Status = models.StatusCancelled
	b.CancelledAt = &now
	b.CancellationNote = fallback(reason, "User cancelled")

	if err := s.Ledger.UpdateBookingStatus(ctx, *b); err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCancelled(*b); err != nil {
			fmt.Printf("Kafka publish error (booking cancelled): %v\n", err)
		}
	}

	return b, nil
}

// CancelAllForEvent soft-cancels every confirmed booking on an event. Used
// by the catalog consumer when an event is deactivated upstream.
func (s *BookingService) CancelAllForEvent(ctx context.Context, eventID, reason string) (int, error) {
	confirmed, err := s.Ledger.ListConfirmedByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("list confirmed bookings for event %s: %w", eventID, err)
	}

	cancelled := 0
	for _, b := range confirmed {
		now := time.Now().UTC()
		b.Status = models.StatusCancelled
		b.CancelledAt = &now
		b.CancellationNote = reason

		if err := s.Ledger.UpdateBookingStatus(ctx, b); err != nil {
			return cancelled, fmt.Errorf("cancel booking %s: %w", b.BookingID, err)
		}
		cancelled++

		if s.Kafka != nil {
			if err := s.Kafka.PublishBookingCancelled(b); err != nil {
				fmt.Printf("Kafka publish error (booking cancelled): %v\n", err)
			}
		}
	}

	return cancelled, nil
}

// Get returns a booking to its holder or an administrator.
func (s *BookingService) Get(ctx context.Context, bookingID string, actor models.Holder) (*models.Booking, error) {
	b, err := s.Ledger.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.HolderID != actor.ID && !actor.Admin {
		return nil, ErrUnauthorized
	}
	return b, nil
}

// ListAll returns the entire ledger. Administrators only.
func (s *BookingService) ListAll(ctx context.Context, actor models.Holder) ([]models.Booking, error) {
	if !actor.Admin {
		return nil, ErrUnauthorized
	}
	return s.Ledger.ListAll(ctx)
}

// ListByHolder returns the holder's bookings, most recent first.
func (s *BookingService) ListByHolder(ctx context.Context, holderID string) ([]models.Booking, error) {
	return s.Ledger.ListByHolder(ctx, holderID)
}

// ListByEvent returns an event's bookings to administrators or the event's
// creator. When the event no longer resolves, only administrators may see
// the orphaned records.
func (s *BookingService) ListByEvent(ctx context.Context, eventID string, actor models.Holder) ([]models.Booking, error) {
	event, err := s.Catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolve event %s: %w", eventID, err)
	}

	switch {
	case event == nil && !actor.Admin:
		return nil, ErrEventNotFound
	case event != nil && !actor.Admin && event.CreatedBy != actor.ID:
		return nil, ErrUnauthorized
	}

	return s.Ledger.ListByEvent(ctx, eventID)
}

func (s *BookingService) acquireEventLock(ctx context.Context, eventID, ownerID string) error {
	for i := 0; i < lockAttempts; i++ {
		ok, err := s.Locker.Lock(ctx, eventID, ownerID)
		if err != nil {
			return fmt.Errorf("booking lock for event %s: %w", eventID, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryGap):
		}
	}
	return ErrEventBusy
}

func fallback(value, alt string) string {
	if value != "" {
		return value
	}
	return alt
}
