package stats

import (
	"context"

	"github.com/uptrace/bun"

	"ms-booking/internal/models"
)

// Service derives booking statistics from the ledger. Every call recomputes
// from the current rows; there is no cache to fall out of sync. Bookings
// whose event was deleted still aggregate normally because everything is
// summed from ledger columns alone.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// EventStats is the per-event aggregate over the ledger.
type EventStats struct {
	EventID        string             `json:"event_id"`
	BookingCount   int                `json:"booking_count"`
	TicketCount    int                `json:"ticket_count"`
	Revenue        int64              `json:"revenue"`
	CancelledCount int                `json:"cancelled_count"`
	DailyBookings  []DailyBookingsRow `json:"daily_bookings,omitempty"`
}

// GlobalStats is the ledger-wide aggregate.
type GlobalStats struct {
	TotalBookings     int   `json:"totalBookings"`
	CancelledBookings int   `json:"cancelledBookings"`
	TotalRevenue      int64 `json:"totalRevenue"`
	TotalTickets      int   `json:"totalTickets"`
}

// DailyBookingsRow is one day of confirmed booking activity.
type DailyBookingsRow struct {
	Date        string `bun:"booking_date" json:"date"`
	Bookings    int    `bun:"bookings" json:"bookings"`
	TicketsSold int    `bun:"tickets_sold" json:"tickets_sold"`
	Revenue     int64  `bun:"revenue" json:"revenue"`
}

// StatsForEvent returns counts and revenue for one event: confirmed
// bookings for the sums, cancelled bookings counted separately.
func (s *Service) StatsForEvent(ctx context.Context, eventID string) (*EventStats, error) {
	stats := EventStats{EventID: eventID}

	confirmed := struct {
		BookingCount int   `bun:"booking_count"`
		TicketCount  int   `bun:"ticket_count"`
		Revenue      int64 `bun:"revenue"`
	}{}

	err := s.db.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("COUNT(*) AS booking_count").
		ColumnExpr("COALESCE(SUM(ticket_count), 0) AS ticket_count").
		ColumnExpr("COALESCE(SUM(total_amount), 0) AS revenue").
		Where("event_id = ?", eventID).
		Where("status = ?", models.StatusConfirmed).
		Scan(ctx, &confirmed)
	if err != nil {
		return nil, err
	}
	stats.BookingCount = confirmed.BookingCount
	stats.TicketCount = confirmed.TicketCount
	stats.Revenue = confirmed.Revenue

	cancelled, err := s.db.NewSelect().
		Model((*models.Booking)(nil)).
		Where("event_id = ?", eventID).
		Where("status = ?", models.StatusCancelled).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.CancelledCount = cancelled

	// Daily breakdown of confirmed activity; DATE() works on both the
	// postgres and sqlite backends.
	var daily []DailyBookingsRow
	err = s.db.NewRaw(`
		SELECT
			DATE(created_at) AS booking_date,
			COUNT(*) AS bookings,
			COALESCE(SUM(ticket_count), 0) AS tickets_sold,
			COALESCE(SUM(total_amount), 0) AS revenue
		FROM bookings
		WHERE event_id = ? AND status = ?
		GROUP BY DATE(created_at)
		ORDER BY booking_date
	`, eventID, models.StatusConfirmed).Scan(ctx, &daily)
	if err != nil {
		return nil, err
	}
	stats.DailyBookings = daily

	return &stats, nil
}

// GlobalStats returns the ledger-wide totals the admin dashboard shows.
func (s *Service) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	confirmed := struct {
		TotalBookings int   `bun:"total_bookings"`
		TotalTickets  int   `bun:"total_tickets"`
		TotalRevenue  int64 `bun:"total_revenue"`
	}{}

	err := s.db.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("COUNT(*) AS total_bookings").
		ColumnExpr("COALESCE(SUM(ticket_count), 0) AS total_tickets").
		ColumnExpr("COALESCE(SUM(total_amount), 0) AS total_revenue").
		Where("status = ?", models.StatusConfirmed).
		Scan(ctx, &confirmed)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.db.NewSelect().
		Model((*models.Booking)(nil)).
		Where("status = ?", models.StatusCancelled).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	return &GlobalStats{
		TotalBookings:     confirmed.TotalBookings,
		CancelledBookings: cancelled,
		TotalRevenue:      confirmed.TotalRevenue,
		TotalTickets:      confirmed.TotalTickets,
	}, nil
}
