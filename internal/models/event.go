package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event holds the inventory inputs the capacity guard reads: capacity and
// unit price. Capacity 0 means the event has no ticket limit.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	Category    string    `bun:"category,nullzero" json:"category,omitempty"`
	Venue       string    `bun:"venue,nullzero" json:"venue,omitempty"`
	Location    string    `bun:"location,nullzero" json:"location,omitempty"`
	StartsAt    time.Time `bun:"starts_at,notnull" json:"starts_at"`
	Capacity    int       `bun:"capacity,notnull" json:"capacity"`
	Price       int64     `bun:"price,notnull" json:"price"`
	Currency    string    `bun:"currency,notnull" json:"currency"`
	IsActive    bool      `bun:"is_active,notnull" json:"is_active"`
	CreatedBy   string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// EventWithAvailability is the catalog read model returned to clients.
type EventWithAvailability struct {
	Event
	AvailableSpots int `json:"available_spots"`
}
