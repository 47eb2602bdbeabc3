package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

// DB is the bun-backed booking ledger. The same code runs against postgres
// (networked deployment) and sqlite (local backend); the dialect is chosen
// when the bun.DB is constructed.
type DB struct {
	Bun *bun.DB
}

// ---------------- LEDGER WRITES ----------------

// InsertBooking → append a new booking record
func (d *DB) InsertBooking(ctx context.Context, b models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&b).Exec(ctx)
	return err
}

// UpdateBookingStatus → mutate only the cancel-transition fields. Identity,
// ticket count and the frozen total are never written after creation.
func (d *DB) UpdateBookingStatus(ctx context.Context, b models.Booking) error {
	_, err := d.Bun.NewUpdate().
		Model(&b).
		Column("status", "cancelled_at", "cancellation_reason").
		Where("booking_id = ?", b.BookingID).
		Exec(ctx)
	return err
}

// ---------------- LEDGER READS ----------------

// GetBookingByID → fetch one booking; (nil, nil) when absent
func (d *DB) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := d.Bun.NewSelect().
		Model(&b).
		Where("booking_id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByHolder → a holder's bookings, most recent first
func (d *DB) ListByHolder(ctx context.Context, holderID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("holder_id = ?", holderID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListAll → the whole ledger, most recent first
func (d *DB) ListAll(ctx context.Context) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByEvent → every booking on an event, most recent first
func (d *DB) ListByEvent(ctx context.Context, eventID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListConfirmedByEvent → confirmed bookings only, oldest first so cascade
// cancellation walks the ledger in creation order
func (d *DB) ListConfirmedByEvent(ctx context.Context, eventID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("event_id = ?", eventID).
		Where("status = ?", models.StatusConfirmed).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// SumConfirmedTickets → committed tickets for an event
func (d *DB) SumConfirmedTickets(ctx context.Context, eventID string) (int, error) {
	var sum int
	err := d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("COALESCE(SUM(ticket_count), 0)").
		Where("event_id = ?", eventID).
		Where("status = ?", models.StatusConfirmed).
		Scan(ctx, &sum)
	return sum, err
}

// CountByStatus → number of bookings on an event in a given status
func (d *DB) CountByStatus(ctx context.Context, eventID string, status models.BookingStatus) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("event_id = ?", eventID).
		Where("status = ?", status).
		Count(ctx)
}
