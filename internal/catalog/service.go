package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-booking/internal/models"
)

var (
	ErrNotFound          = errors.New("event not found")
	ErrNotAuthorized     = errors.New("not authorized to modify this event")
	ErrInvalidEvent      = errors.New("invalid event definition")
	ErrCapacityCommitted = errors.New("capacity cannot change once tickets are committed")
)

// CommittedCounter reports committed tickets for an event. Satisfied by the
// booking ledger; the catalog never reads booking rows directly.
type CommittedCounter interface {
	SumConfirmedTickets(ctx context.Context, eventID string) (int, error)
}

// DeactivationPublisher announces an event deactivation so the booking side
// can cascade-cancel its confirmed bookings.
type DeactivationPublisher interface {
	PublishEventDeactivated(eventID, reason string) error
}

type Service struct {
	DB        *DB
	Committed CommittedCounter
	Kafka     DeactivationPublisher
}

func NewService(db *DB, committed CommittedCounter, kafka DeactivationPublisher) *Service {
	return &Service{DB: db, Committed: committed, Kafka: kafka}
}

type CreateEventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Venue       string    `json:"venue"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	Capacity    int       `json:"capacity"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
}

// Create registers a new event. Capacity 0 means unlimited.
func (s *Service) Create(ctx context.Context, creator models.Holder, in CreateEventInput) (*models.Event, error) {
	if !creator.Admin {
		return nil, ErrNotAuthorized
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if in.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity cannot be negative", ErrInvalidEvent)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidEvent)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	e := models.Event{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Venue:       in.Venue,
		Location:    in.Location,
		StartsAt:    in.StartsAt,
		Capacity:    in.Capacity,
		Price:       in.Price,
		Currency:    in.Currency,
		IsActive:    true,
		CreatedBy:   creator.ID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.DB.InsertEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &e, nil
}

// GetEvent satisfies the booking service's catalog contract.
func (s *Service) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, eventID)
}

// GetWithAvailability returns an event alongside its remaining spots.
func (s *Service) GetWithAvailability(ctx context.Context, eventID string) (*models.EventWithAvailability, error) {
	e, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}

	available := -1 // unlimited
	if e.Capacity > 0 {
		committed, err := s.Committed.SumConfirmedTickets(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("committed tickets for event %s: %w", eventID, err)
		}
		available = e.Capacity - committed
	}

	return &models.EventWithAvailability{Event: *e, AvailableSpots: available}, nil
}

func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

// ChangeCapacity adjusts capacity only while no tickets are committed.
func (s *Service) ChangeCapacity(ctx context.Context, actor models.Holder, eventID string, capacity int) error {
	e, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	if !actor.Admin && e.CreatedBy != actor.ID {
		return ErrNotAuthorized
	}
	if capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", ErrInvalidEvent)
	}

	committed, err := s.Committed.SumConfirmedTickets(ctx, eventID)
	if err != nil {
		return fmt.Errorf("committed tickets for event %s: %w", eventID, err)
	}
	if committed > 0 {
		return ErrCapacityCommitted
	}

	return s.DB.UpdateCapacity(ctx, eventID, capacity)
}

// ChangePrice updates the unit price charged on future bookings. Totals
// already frozen on existing bookings do not move.
func (s *Service) ChangePrice(ctx context.Context, actor models.Holder, eventID string, price int64) error {
	e, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	if !actor.Admin && e.CreatedBy != actor.ID {
		return ErrNotAuthorized
	}
	if price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidEvent)
	}

	return s.DB.UpdatePrice(ctx, eventID, price)
}

// Deactivate closes an event for booking and announces the deactivation.
func (s *Service) Deactivate(ctx context.Context, actor models.Holder, eventID, reason string) error {
	e, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	if !actor.Admin && e.CreatedBy != actor.ID {
		return ErrNotAuthorized
	}

	if err := s.DB.SetActive(ctx, eventID, false); err != nil {
		return fmt.Errorf("deactivate event %s: %w", eventID, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishEventDeactivated(eventID, reason); err != nil {
			fmt.Printf("Kafka publish error (event deactivated): %v\n", err)
		}
	}
	return nil
}
