package catalog_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-booking/internal/catalog"
	"ms-booking/internal/models"
)

type stubCommitted struct {
	committed int
	err       error
}

func (s *stubCommitted) SumConfirmedTickets(ctx context.Context, eventID string) (int, error) {
	return s.committed, s.err
}

type recordingPublisher struct {
	deactivated []string
}

func (p *recordingPublisher) PublishEventDeactivated(eventID, reason string) error {
	p.deactivated = append(p.deactivated, eventID)
	return nil
}

func setupService(t *testing.T, committed *stubCommitted) (*catalog.Service, *recordingPublisher, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Event)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create events table: %v", err)
	}

	pub := &recordingPublisher{}
	svc := catalog.NewService(&catalog.DB{Bun: bunDB}, committed, pub)
	return svc, pub, bunDB
}

var admin = models.Holder{ID: "admin-1", Admin: true}

func TestCreateEvent(t *testing.T) {
	svc, _, bunDB := setupService(t, &stubCommitted{})
	defer bunDB.Close()

	in := catalog.CreateEventInput{
		Title:    "Go Meetup",
		Category: "Meetup",
		Venue:    "Main Hall",
		StartsAt: time.Now().Add(72 * time.Hour),
		Capacity: 50,
		Price:    1200,
	}

	e, err := svc.Create(context.Background(), admin, in)

	assert.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.True(t, e.IsActive)
	assert.Equal(t, "admin-1", e.CreatedBy)
	// Currency defaults when omitted
	assert.Equal(t, "USD", e.Currency)

	got, err := svc.GetEvent(context.Background(), e.ID)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "Go Meetup", got.Title)
}

func TestCreateEventValidation(t *testing.T) {
	svc, _, bunDB := setupService(t, &stubCommitted{})
	defer bunDB.Close()

	// Test case: non-admin cannot create
	_, err := svc.Create(context.Background(), models.Holder{ID: "user-1"}, catalog.CreateEventInput{Title: "X"})
	assert.ErrorIs(t, err, catalog.ErrNotAuthorized)

	// Test case: missing title
	_, err = svc.Create(context.Background(), admin, catalog.CreateEventInput{})
	assert.ErrorIs(t, err, catalog.ErrInvalidEvent)

	// Test case: negative capacity
	_, err = svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "X", Capacity: -1})
	assert.ErrorIs(t, err, catalog.ErrInvalidEvent)

	// Test case: negative price
	_, err = svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "X", Price: -5})
	assert.ErrorIs(t, err, catalog.ErrInvalidEvent)
}

func TestGetEventMissingIsNilNil(t *testing.T) {
	svc, _, bunDB := setupService(t, &stubCommitted{})
	defer bunDB.Close()

	e, err := svc.GetEvent(context.Background(), "no-such-event")
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestGetWithAvailability(t *testing.T) {
	committed := &stubCommitted{committed: 30}
	svc, _, bunDB := setupService(t, committed)
	defer bunDB.Close()

	e, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Concert", Capacity: 100, Price: 5000})
	assert.NoError(t, err)

	result, err := svc.GetWithAvailability(context.Background(), e.ID)
	assert.NoError(t, err)
	assert.Equal(t, 70, result.AvailableSpots)

	// Test case: unlimited event reports -1 and never queries the ledger
	unlimited, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Open Day", Capacity: 0})
	assert.NoError(t, err)

	result, err = svc.GetWithAvailability(context.Background(), unlimited.ID)
	assert.NoError(t, err)
	assert.Equal(t, -1, result.AvailableSpots)

	// Test case: missing event
	_, err = svc.GetWithAvailability(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListEventsOrdering(t *testing.T) {
	svc, _, bunDB := setupService(t, &stubCommitted{})
	defer bunDB.Close()

	later, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Later", StartsAt: time.Now().Add(96 * time.Hour)})
	assert.NoError(t, err)
	sooner, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Sooner", StartsAt: time.Now().Add(24 * time.Hour)})
	assert.NoError(t, err)

	events, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, sooner.ID, events[0].ID)
	assert.Equal(t, later.ID, events[1].ID)
}

func TestChangeCapacity(t *testing.T) {
	committed := &stubCommitted{}
	svc, _, bunDB := setupService(t, committed)
	defer bunDB.Close()

	e, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Workshop", Capacity: 20})
	assert.NoError(t, err)

	// No tickets committed yet: the change goes through.
	err = svc.ChangeCapacity(context.Background(), admin, e.ID, 40)
	assert.NoError(t, err)

	got, err := svc.GetEvent(context.Background(), e.ID)
	assert.NoError(t, err)
	assert.Equal(t, 40, got.Capacity)

	// Test case: committed tickets freeze the capacity
	committed.committed = 5
	err = svc.ChangeCapacity(context.Background(), admin, e.ID, 60)
	assert.ErrorIs(t, err, catalog.ErrCapacityCommitted)

	// Test case: unrelated holder cannot change capacity
	committed.committed = 0
	err = svc.ChangeCapacity(context.Background(), models.Holder{ID: "user-1"}, e.ID, 60)
	assert.ErrorIs(t, err, catalog.ErrNotAuthorized)

	// Test case: missing event
	err = svc.ChangeCapacity(context.Background(), admin, "missing", 10)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestChangePrice(t *testing.T) {
	svc, _, bunDB := setupService(t, &stubCommitted{})
	defer bunDB.Close()

	e, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Recital", Capacity: 80, Price: 500})
	assert.NoError(t, err)

	err = svc.ChangePrice(context.Background(), admin, e.ID, 1000)
	assert.NoError(t, err)

	got, err := svc.GetEvent(context.Background(), e.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), got.Price)

	// Test case: negative price
	err = svc.ChangePrice(context.Background(), admin, e.ID, -1)
	assert.ErrorIs(t, err, catalog.ErrInvalidEvent)

	// Test case: unrelated holder cannot change the price
	err = svc.ChangePrice(context.Background(), models.Holder{ID: "user-1"}, e.ID, 2000)
	assert.ErrorIs(t, err, catalog.ErrNotAuthorized)

	// Test case: missing event
	err = svc.ChangePrice(context.Background(), admin, "missing", 100)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestChangePriceLeavesFrozenTotals(t *testing.T) {
	svc, _, bunDB := setupService(t, &stubCommitted{})
	defer bunDB.Close()

	_, err := bunDB.NewCreateTable().Model((*models.Booking)(nil)).Exec(context.Background())
	assert.NoError(t, err)

	e, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Recital", Capacity: 80, Price: 500})
	assert.NoError(t, err)

	// A booking made at the original price: total frozen at 3 x 500.
	b := models.Booking{
		BookingID:   "frozen-booking",
		Reference:   "BK1700000000FROZN",
		EventID:     e.ID,
		HolderID:    "user-1",
		TicketCount: 3,
		TotalAmount: 3 * e.Price,
		Currency:    e.Currency,
		Status:      models.StatusConfirmed,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = bunDB.NewInsert().Model(&b).Exec(context.Background())
	assert.NoError(t, err)

	err = svc.ChangePrice(context.Background(), admin, e.ID, 1000)
	assert.NoError(t, err)

	// The event now sells at the new price...
	got, err := svc.GetEvent(context.Background(), e.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), got.Price)

	// ...but the existing booking's total never moves.
	var stored models.Booking
	err = bunDB.NewSelect().
		Model(&stored).
		Where("booking_id = ?", b.BookingID).
		Scan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), stored.TotalAmount)
}

func TestDeactivateEvent(t *testing.T) {
	svc, pub, bunDB := setupService(t, &stubCommitted{})
	defer bunDB.Close()

	e, err := svc.Create(context.Background(), admin, catalog.CreateEventInput{Title: "Festival", Capacity: 200})
	assert.NoError(t, err)

	// Test case: an unrelated holder cannot deactivate
	err = svc.Deactivate(context.Background(), models.Holder{ID: "user-1"}, e.ID, "")
	assert.ErrorIs(t, err, catalog.ErrNotAuthorized)

	// Test case: the creator can
	err = svc.Deactivate(context.Background(), models.Holder{ID: "admin-1"}, e.ID, "Venue flooded")
	assert.NoError(t, err)

	got, err := svc.GetEvent(context.Background(), e.ID)
	assert.NoError(t, err)
	assert.False(t, got.IsActive)

	// The deactivation was announced for the booking side to cascade.
	assert.Equal(t, []string{e.ID}, pub.deactivated)
}
