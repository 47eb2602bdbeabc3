package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	// StatusPending is reserved for a future payment flow; nothing
	// transitions into it today.
	StatusPending BookingStatus = "pending"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID        string        `bun:"booking_id,pk" json:"booking_id"`
	Reference        string        `bun:"reference,notnull,unique" json:"reference"`
	EventID          string        `bun:"event_id,notnull" json:"event_id"`
	HolderID         string        `bun:"holder_id,notnull" json:"holder_id"`
	HolderName       string        `bun:"holder_name" json:"holder_name"`
	HolderEmail      string        `bun:"holder_email" json:"holder_email"`
	HolderPhone      string        `bun:"holder_phone" json:"holder_phone"`
	TicketCount      int           `bun:"ticket_count,notnull" json:"ticket_count"`
	TotalAmount      int64         `bun:"total_amount,notnull" json:"total_amount"`
	Currency         string        `bun:"currency,notnull" json:"currency"`
	Status           BookingStatus `bun:"status,notnull" json:"status"`
	Notes            string        `bun:"notes,nullzero" json:"notes,omitempty"`
	CreatedAt        time.Time     `bun:"created_at,notnull" json:"created_at"`
	CancelledAt      *time.Time    `bun:"cancelled_at,nullzero" json:"cancelled_at,omitempty"`
	CancellationNote string        `bun:"cancellation_reason,nullzero" json:"cancellation_reason,omitempty"`
}

// BookingRequest is the wire format accepted by POST /api/bookings.
type BookingRequest struct {
	EventID         string `json:"eventId"`
	NumberOfTickets int    `json:"numberOfTickets"`
	UserName        string `json:"userName"`
	UserEmail       string `json:"userEmail"`
	UserPhone       string `json:"userPhone"`
	Notes           string `json:"notes"`
}

// CancelRequest is the body of PUT /api/bookings/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}
