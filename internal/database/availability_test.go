package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommittedQuantity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 10)
	customer := seedCustomer(t, db, "52998224725")

	committed, err := db.CommittedQuantity(ctx, tent.ID, day("2024-01-01"), day("2024-12-31"), 0)
	require.NoError(t, err)
	assert.Zero(t, committed)

	a, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 2, "1"))
	require.NoError(t, db.CreateBookingWithLines(ctx, a, lines))
	b, lines := newBooking(customer.ID, "2024-01-10", "2024-01-15", line(tent.ID, 3, "1"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))

	tests := []struct {
		name      string
		start     string
		end       string
		exclude   int64
		committed int64
	}{
		{"SharedEndpointDay", "2024-01-10", "2024-01-10", 0, 5},
		{"OnlyFirst", "2023-12-25", "2024-01-01", 0, 2},
		{"OnlySecond", "2024-01-11", "2024-01-20", 0, 3},
		{"Disjoint", "2024-01-16", "2024-01-20", 0, 0},
		{"Covering", "2023-01-01", "2025-01-01", 0, 5},
		{"ExcludeFirst", "2024-01-01", "2024-01-31", a.ID, 3},
		{"ExcludeMissing", "2024-01-01", "2024-01-31", 999, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.CommittedQuantity(ctx, tent.ID, day(tt.start), day(tt.end), tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.committed, got)
		})
	}
}

func TestCommittedByItem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tent := seedItem(t, db, "Tent", 10)
	chair := seedItem(t, db, "Chair", 10)
	lamp := seedItem(t, db, "Lamp", 10)
	customer := seedCustomer(t, db, "52998224725")

	a, lines := newBooking(customer.ID, "2024-01-01", "2024-01-10", line(tent.ID, 2, "1"), line(chair.ID, 4, "1"))
	require.NoError(t, db.CreateBookingWithLines(ctx, a, lines))
	b, lines := newBooking(customer.ID, "2024-01-05", "2024-01-06", line(tent.ID, 1, "1"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))

	committed, err := db.CommittedByItem(ctx, day("2024-01-06"), day("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), committed[tent.ID])
	assert.Equal(t, int64(4), committed[chair.ID])
	_, ok := committed[lamp.ID]
	assert.False(t, ok)
}
