package service

import (
	"context"
	"testing"

	"mta/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService(t *testing.T) {
	f := newBookingFixture(t)
	svc := NewAvailabilityService(f.db, nil)
	ctx := context.Background()

	first, err := f.svc.CreateBooking(ctx, request(f.customer.ID, "2024-06-10", "2024-06-12", line(f.tent.ID, 2, "10")))
	require.NoError(t, err)
	_, err = f.svc.CreateBooking(ctx, request(f.customer.ID, "2024-06-12", "2024-06-15", line(f.tent.ID, 1, "10"), line(f.chair.ID, 4, "1")))
	require.NoError(t, err)
	cancelled, err := f.svc.CreateBooking(ctx, request(f.customer.ID, "2024-06-11", "2024-06-11", line(f.tent.ID, 2, "10")))
	require.NoError(t, err)
	require.NoError(t, f.svc.SetStatus(ctx, cancelled.ID, "cancelled"))

	t.Run("AvailableQuantity", func(t *testing.T) {
		a, err := svc.AvailableQuantity(ctx, f.tent.ID, day("2024-06-12"), day("2024-06-12"), 0)
		require.NoError(t, err)
		assert.Equal(t, "Tent", a.ItemName)
		assert.Equal(t, int64(5), a.Total)
		assert.Equal(t, int64(3), a.Committed)
		assert.Equal(t, int64(2), a.Available)

		a, err = svc.AvailableQuantity(ctx, f.tent.ID, day("2024-06-12"), day("2024-06-12"), first.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), a.Committed)
		assert.Equal(t, int64(4), a.Available)
	})

	t.Run("DisjointRange", func(t *testing.T) {
		committed, err := svc.CommittedQuantity(ctx, f.tent.ID, day("2024-06-16"), day("2024-06-30"), 0)
		require.NoError(t, err)
		assert.Zero(t, committed)
	})

	t.Run("Report", func(t *testing.T) {
		report, err := svc.Report(ctx, day("2024-06-01"), day("2024-06-30"))
		require.NoError(t, err)
		require.Len(t, report, 2)

		byName := map[string]int64{}
		for _, a := range report {
			byName[a.ItemName] = a.Available
		}
		assert.Equal(t, int64(2), byName["Tent"])
		assert.Equal(t, int64(6), byName["Chair"])
	})

	t.Run("InvertedRange", func(t *testing.T) {
		_, err := svc.Report(ctx, day("2024-06-30"), day("2024-06-01"))
		assert.True(t, domain.IsValidation(err))
		_, err = svc.AvailableQuantity(ctx, f.tent.ID, day("2024-06-30"), day("2024-06-01"), 0)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("MissingItem", func(t *testing.T) {
		_, err := svc.AvailableQuantity(ctx, 999, day("2024-06-01"), day("2024-06-30"), 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
