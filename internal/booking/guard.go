package booking

import (
	"context"

	"ms-booking/internal/models"
)

// Unlimited is returned by SpotsRemaining for events with no capacity limit.
const Unlimited = -1

// LedgerReader is the read-side slice of the ledger the guard needs.
type LedgerReader interface {
	SumConfirmedTickets(ctx context.Context, eventID string) (int, error)
}

// CapacityGuard answers whether a requested number of tickets fits within an
// event's remaining capacity. Queries are pure reads over the current
// ledger; the booking service evaluates them under the per-event lock so
// the answer stays valid through the subsequent write.
type CapacityGuard struct {
	Ledger LedgerReader
}

func NewCapacityGuard(ledger LedgerReader) *CapacityGuard {
	return &CapacityGuard{Ledger: ledger}
}

// CommittedTickets → sum of ticket counts over confirmed bookings for the event.
func (g *CapacityGuard) CommittedTickets(ctx context.Context, eventID string) (int, error) {
	return g.Ledger.SumConfirmedTickets(ctx, eventID)
}

// SpotsRemaining → capacity minus committed tickets, or Unlimited when the
// event carries no capacity limit.
func (g *CapacityGuard) SpotsRemaining(ctx context.Context, event *models.Event) (int, error) {
	if event.Capacity == 0 {
		return Unlimited, nil
	}

	committed, err := g.Ledger.SumConfirmedTickets(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	return event.Capacity - committed, nil
}

// CanAccommodate → true iff requested tickets fit in the remaining spots.
func (g *CapacityGuard) CanAccommodate(ctx context.Context, event *models.Event, requested int) (bool, error) {
	remaining, err := g.SpotsRemaining(ctx, event)
	if err != nil {
		return false, err
	}
	if remaining == Unlimited {
		return true, nil
	}
	return requested <= remaining, nil
}
