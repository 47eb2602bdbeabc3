package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

// DB is the bun-backed event store. The booking core reads it; only
// administrators write to it.
type DB struct {
	Bun *bun.DB
}

// InsertEvent → create a new event
func (d *DB) InsertEvent(ctx context.Context, e models.Event) error {
	_, err := d.Bun.NewInsert().Model(&e).Exec(ctx)
	return err
}

// GetEventByID → fetch one event; (nil, nil) when absent
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	err := d.Bun.NewSelect().
		Model(&e).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents → all events, soonest first
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := d.Bun.NewSelect().
		Model(&events).
		Order("starts_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// SetActive → flip an event's active flag
func (d *DB) SetActive(ctx context.Context, id string, active bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// UpdatePrice → change the unit price for future bookings. Existing
// bookings keep their frozen totals.
func (d *DB) UpdatePrice(ctx context.Context, id string, price int64) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("price = ?", price).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// UpdateCapacity → change the capacity. The service layer rejects this once
// tickets are committed against the event.
func (d *DB) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("capacity = ?", capacity).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
