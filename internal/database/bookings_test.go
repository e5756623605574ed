package database

import (
	"context"
	"testing"

	"mta/internal/domain"
	"mta/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingWithLines(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	chair := seedItem(t, db, "Chair", 20)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10",
		line(tent.ID, 2, "10.0"),
		line(chair.ID, 1, "5.0"),
	)
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))
	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusActive, b.Status)
	assert.Equal(t, "Ana Souza", b.CustomerName)
	assert.Equal(t, "Tent", lines[0].ItemName)

	bookings, err := db.ListBookingsWithLineItems(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	got := bookings[0]
	assert.True(t, got.TotalValue.Equal(decimal.RequireFromString("25.0")), "total %s", got.TotalValue)
	assert.Equal(t, "2024-01-01", models.FormatDate(got.StartDate))
	assert.Equal(t, "2024-01-10", models.FormatDate(got.EndDate))
	require.Len(t, got.Lines, 2)
	assert.Equal(t, tent.ID, got.Lines[0].ItemID)
	assert.Equal(t, int64(2), got.Lines[0].Quantity)
	assert.True(t, got.Lines[0].LineTotal.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Lines[1].UnitPrice.Equal(decimal.NewFromInt(5)))
}

func TestCreateBookingInsufficientLeavesStoreUnchanged(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	chair := seedItem(t, db, "Chair", 1)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10",
		line(tent.ID, 2, "10"),
		line(chair.ID, 3, "1"),
	)
	err := db.CreateBookingWithLines(ctx, b, lines)

	var insufficient *domain.InsufficientAvailabilityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, chair.ID, insufficient.ItemID)
	assert.Equal(t, "Chair", insufficient.ItemName)
	assert.Equal(t, int64(3), insufficient.Requested)
	assert.Equal(t, int64(1), insufficient.Available)

	bookings, err := db.ListBookingsWithLineItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	committed, err := db.CommittedQuantity(ctx, tent.ID, day("2024-01-01"), day("2024-01-10"), 0)
	require.NoError(t, err)
	assert.Zero(t, committed)
}

func TestCreateBookingMissingReferences(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(999, "2024-01-01", "2024-01-02", line(tent.ID, 1, "1"))
	assert.ErrorIs(t, db.CreateBookingWithLines(ctx, b, lines), domain.ErrNotFound)

	b, lines = newBooking(customer.ID, "2024-01-01", "2024-01-02", line(999, 1, "1"))
	assert.ErrorIs(t, db.CreateBookingWithLines(ctx, b, lines), domain.ErrNotFound)
}

func TestCancelFreesCapacity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 4, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))

	committed, err := db.CommittedQuantity(ctx, tent.ID, day("2024-01-05"), day("2024-01-05"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), committed)

	require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusCancelled))

	committed, err = db.CommittedQuantity(ctx, tent.ID, day("2024-01-05"), day("2024-01-05"), 0)
	require.NoError(t, err)
	assert.Zero(t, committed)

	other, lines := newBooking(customer.ID, "2024-01-03", "2024-01-04", line(tent.ID, 5, "10"))
	assert.NoError(t, db.CreateBookingWithLines(ctx, other, lines))
}

func TestClosedBookingsStillCommit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 3, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))
	require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusClosed))

	committed, err := db.CommittedQuantity(ctx, tent.ID, day("2024-01-01"), day("2024-01-10"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), committed)
}

func TestReplaceBookingSelfExclusion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 5, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))
	createdAt := b.CreatedAt

	edited, newLines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 3, "12"))
	edited.ID = b.ID
	require.NoError(t, db.ReplaceBooking(ctx, edited, newLines))

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(3), got.Lines[0].Quantity)
	assert.True(t, got.TotalValue.Equal(decimal.NewFromInt(36)))
	assert.Equal(t, models.StatusActive, got.Status)
	assert.True(t, got.CreatedAt.Equal(createdAt))

	committed, err := db.CommittedQuantity(ctx, tent.ID, day("2024-01-01"), day("2024-01-10"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), committed)

	committed, err = db.CommittedQuantity(ctx, tent.ID, day("2024-01-01"), day("2024-01-10"), b.ID)
	require.NoError(t, err)
	assert.Zero(t, committed)
}

func TestReplaceBookingInsufficientKeepsOriginal(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	first, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 2, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, first, lines))
	second, lines := newBooking(customer.ID, "2024-01-05", "2024-01-06", line(tent.ID, 3, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, second, lines))

	edited, newLines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 3, "10"))
	edited.ID = first.ID
	err := db.ReplaceBooking(ctx, edited, newLines)

	var insufficient *domain.InsufficientAvailabilityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(2), insufficient.Available)

	got, err := db.GetBooking(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(2), got.Lines[0].Quantity)
}

func TestReplaceBookingRequiresActive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 1, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))
	require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusClosed))

	edited, newLines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 2, "10"))
	edited.ID = b.ID
	assert.ErrorIs(t, db.ReplaceBooking(ctx, edited, newLines), domain.ErrInvalidTransition)

	edited.ID = 999
	assert.ErrorIs(t, db.ReplaceBooking(ctx, edited, newLines), domain.ErrNotFound)
}

func TestUpdateBookingStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 1, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))

	require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusCancelled))
	assert.ErrorIs(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusClosed), domain.ErrInvalidTransition)
	assert.ErrorIs(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusActive), domain.ErrInvalidTransition)
	assert.ErrorIs(t, db.UpdateBookingStatus(ctx, 999, models.StatusClosed), domain.ErrNotFound)
}

func TestDeleteBookingCascadesLines(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 5)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 5, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))

	require.NoError(t, db.DeleteBooking(ctx, b.ID))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM booking_line_items WHERE booking_id = ?`, b.ID).Scan(&count))
	assert.Zero(t, count)

	_, err := db.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, db.DeleteBooking(ctx, b.ID), domain.ErrNotFound)
}

func TestListBookingsOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 50)
	customer := seedCustomer(t, db, "52998224725")

	for _, start := range []string{"2024-02-01", "2024-03-01", "2024-01-01", "2024-03-01"} {
		b, lines := newBooking(customer.ID, start, start, line(tent.ID, 1, "1"))
		require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))
	}

	bookings, err := db.ListBookingsWithLineItems(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 4)

	assert.Equal(t, "2024-03-01", models.FormatDate(bookings[0].StartDate))
	assert.Equal(t, "2024-03-01", models.FormatDate(bookings[1].StartDate))
	assert.Greater(t, bookings[0].ID, bookings[1].ID)
	assert.Equal(t, "2024-02-01", models.FormatDate(bookings[2].StartDate))
	assert.Equal(t, "2024-01-01", models.FormatDate(bookings[3].StartDate))
	for _, b := range bookings {
		assert.Len(t, b.Lines, 1)
	}

	inRange, err := db.ListBookingsStartingBetween(ctx, day("2024-02-01"), day("2024-02-29"))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, "2024-02-01", models.FormatDate(inRange[0].StartDate))
}

func TestSweepExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 50)
	customer := seedCustomer(t, db, "52998224725")

	past, lines := newBooking(customer.ID, "2024-01-01", "2024-01-09", line(tent.ID, 1, "1"))
	require.NoError(t, db.CreateBookingWithLines(ctx, past, lines))
	endsToday, lines := newBooking(customer.ID, "2024-01-05", "2024-01-10", line(tent.ID, 1, "1"))
	require.NoError(t, db.CreateBookingWithLines(ctx, endsToday, lines))
	cancelled, lines := newBooking(customer.ID, "2024-01-01", "2024-01-02", line(tent.ID, 1, "1"))
	require.NoError(t, db.CreateBookingWithLines(ctx, cancelled, lines))
	require.NoError(t, db.UpdateBookingStatus(ctx, cancelled.ID, models.StatusCancelled))

	closed, err := db.SweepExpired(ctx, day("2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, []int64{past.ID}, closed)

	got, err := db.GetBooking(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)

	got, err = db.GetBooking(ctx, endsToday.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)

	got, err = db.GetBooking(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	closed, err = db.SweepExpired(ctx, day("2024-01-10"))
	require.NoError(t, err)
	assert.Empty(t, closed)
}
