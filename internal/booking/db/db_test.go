package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-booking/internal/booking/db"
	"ms-booking/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// One connection so every query sees the same in-memory database.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Booking)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create bookings table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func sampleBooking(eventID, holderID string, tickets int, createdAt time.Time) models.Booking {
	return models.Booking{
		BookingID:   uuid.NewString(),
		Reference:   "BK" + uuid.NewString()[:12],
		EventID:     eventID,
		HolderID:    holderID,
		HolderName:  "Test Holder",
		HolderEmail: "holder@example.com",
		TicketCount: tickets,
		TotalAmount: int64(tickets) * 1500,
		Currency:    "USD",
		Status:      models.StatusConfirmed,
		CreatedAt:   createdAt,
	}
}

func TestInsertAndGetBooking(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := sampleBooking("event-1", "user-1", 2, time.Now())

	err := ledger.InsertBooking(context.Background(), b)
	assert.NoError(t, err)

	// Test case: fetch existing booking
	got, err := ledger.GetBookingByID(context.Background(), b.BookingID)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, b.BookingID, got.BookingID)
	assert.Equal(t, b.Reference, got.Reference)
	assert.Equal(t, int64(3000), got.TotalAmount)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	// Test case: missing booking is (nil, nil)
	got, err = ledger.GetBookingByID(context.Background(), "non-existent")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateBookingStatusOnlyTouchesCancelFields(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := sampleBooking("event-1", "user-1", 3, time.Now())
	err := ledger.InsertBooking(context.Background(), b)
	assert.NoError(t, err)

	now := time.Now().UTC()
	b.Status = models.StatusCancelled
	b.CancelledAt = &now
	b.CancellationNote = "User cancelled"
	// Mutating other fields on the struct must not reach the row.
	b.TotalAmount = 999999
	b.TicketCount = 99

	err = ledger.UpdateBookingStatus(context.Background(), b)
	assert.NoError(t, err)

	got, err := ledger.GetBookingByID(context.Background(), b.BookingID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
	assert.Equal(t, "User cancelled", got.CancellationNote)
	assert.Equal(t, int64(4500), got.TotalAmount)
	assert.Equal(t, 3, got.TicketCount)
}

func TestListByHolderOrdering(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	base := time.Now().Add(-time.Hour)
	older := sampleBooking("event-1", "user-1", 1, base)
	newer := sampleBooking("event-2", "user-1", 2, base.Add(30*time.Minute))
	other := sampleBooking("event-1", "user-2", 1, base)

	for _, b := range []models.Booking{older, newer, other} {
		assert.NoError(t, ledger.InsertBooking(context.Background(), b))
	}

	bookings, err := ledger.ListByHolder(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, bookings, 2)
	// Most recent first
	assert.Equal(t, newer.BookingID, bookings[0].BookingID)
	assert.Equal(t, older.BookingID, bookings[1].BookingID)

	// Test case: holder with no bookings gets an empty list, not nil
	bookings, err = ledger.ListByHolder(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Len(t, bookings, 0)
}

func TestListAllOrdering(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	base := time.Now().Add(-time.Hour)
	first := sampleBooking("event-1", "user-1", 1, base)
	second := sampleBooking("event-2", "user-2", 2, base.Add(10*time.Minute))
	third := sampleBooking("event-1", "user-3", 3, base.Add(20*time.Minute))

	for _, b := range []models.Booking{first, second, third} {
		assert.NoError(t, ledger.InsertBooking(context.Background(), b))
	}

	bookings, err := ledger.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, bookings, 3)
	// Most recent first, across all events and holders
	assert.Equal(t, third.BookingID, bookings[0].BookingID)
	assert.Equal(t, second.BookingID, bookings[1].BookingID)
	assert.Equal(t, first.BookingID, bookings[2].BookingID)
}

func TestListByEvent(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	base := time.Now().Add(-time.Hour)
	b1 := sampleBooking("event-1", "user-1", 1, base)
	b2 := sampleBooking("event-1", "user-2", 2, base.Add(10*time.Minute))
	b3 := sampleBooking("event-2", "user-3", 1, base)

	for _, b := range []models.Booking{b1, b2, b3} {
		assert.NoError(t, ledger.InsertBooking(context.Background(), b))
	}

	bookings, err := ledger.ListByEvent(context.Background(), "event-1")
	assert.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, b2.BookingID, bookings[0].BookingID)
}

func TestListConfirmedByEvent(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	base := time.Now().Add(-time.Hour)
	confirmed1 := sampleBooking("event-1", "user-1", 1, base)
	confirmed2 := sampleBooking("event-1", "user-2", 2, base.Add(5*time.Minute))

	cancelled := sampleBooking("event-1", "user-3", 4, base.Add(2*time.Minute))
	cancelledAt := base.Add(20 * time.Minute)
	cancelled.Status = models.StatusCancelled
	cancelled.CancelledAt = &cancelledAt

	for _, b := range []models.Booking{confirmed1, confirmed2, cancelled} {
		assert.NoError(t, ledger.InsertBooking(context.Background(), b))
	}

	bookings, err := ledger.ListConfirmedByEvent(context.Background(), "event-1")
	assert.NoError(t, err)
	assert.Len(t, bookings, 2)
	// Oldest first
	assert.Equal(t, confirmed1.BookingID, bookings[0].BookingID)
	assert.Equal(t, confirmed2.BookingID, bookings[1].BookingID)
}

func TestSumConfirmedTickets(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	base := time.Now()
	confirmed1 := sampleBooking("event-1", "user-1", 2, base)
	confirmed2 := sampleBooking("event-1", "user-2", 3, base)
	otherEvent := sampleBooking("event-2", "user-3", 7, base)

	cancelled := sampleBooking("event-1", "user-4", 5, base)
	cancelledAt := base.Add(time.Minute)
	cancelled.Status = models.StatusCancelled
	cancelled.CancelledAt = &cancelledAt

	for _, b := range []models.Booking{confirmed1, confirmed2, otherEvent, cancelled} {
		assert.NoError(t, ledger.InsertBooking(context.Background(), b))
	}

	// Cancelled tickets release their spots; other events don't count.
	sum, err := ledger.SumConfirmedTickets(context.Background(), "event-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, sum)

	// Test case: event with no bookings sums to zero
	sum, err = ledger.SumConfirmedTickets(context.Background(), "empty-event")
	assert.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func TestCountByStatus(t *testing.T) {
	ledger, bunDB := setupTestDB(t)
	defer bunDB.Close()

	base := time.Now()
	confirmed := sampleBooking("event-1", "user-1", 1, base)

	cancelled := sampleBooking("event-1", "user-2", 1, base)
	cancelledAt := base.Add(time.Minute)
	cancelled.Status = models.StatusCancelled
	cancelled.CancelledAt = &cancelledAt

	for _, b := range []models.Booking{confirmed, cancelled} {
		assert.NoError(t, ledger.InsertBooking(context.Background(), b))
	}

	count, err := ledger.CountByStatus(context.Background(), "event-1", models.StatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = ledger.CountByStatus(context.Background(), "event-1", models.StatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
