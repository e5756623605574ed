package database

import (
	"context"
	"testing"

	"mta/internal/domain"
	"mta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	item := &models.Item{Name: "Projector", Description: "Full HD", TotalQuantity: 5}
	require.NoError(t, db.CreateItem(ctx, item))
	assert.NotZero(t, item.ID)

	found, err := db.GetItemByName(ctx, "PROJECTOR")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, "Full HD", found.Description)

	found.TotalQuantity = 10
	require.NoError(t, db.UpdateItem(ctx, found))

	updated, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.TotalQuantity)

	require.NoError(t, db.DeleteItem(ctx, item.ID))
	_, err = db.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemNameUniqueIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	seedItem(t, db, "Speaker", 2)

	err := db.CreateItem(ctx, &models.Item{Name: "speaker", TotalQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentifier)
}

func TestListItemsSortedByName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedItem(t, db, "tent", 1)
	seedItem(t, db, "Chair", 1)
	seedItem(t, db, "banner", 1)

	items, err := db.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "banner", items[0].Name)
	assert.Equal(t, "Chair", items[1].Name)
	assert.Equal(t, "tent", items[2].Name)
}

func TestUpdateMissingItem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.UpdateItem(context.Background(), &models.Item{ID: 42, Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = db.DeleteItem(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteReferencedItem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	item := seedItem(t, db, "Table", 4)
	customer := seedCustomer(t, db, "52998224725")

	b, lines := newBooking(customer.ID, "2024-03-01", "2024-03-02", line(item.ID, 1, "10"))
	require.NoError(t, db.CreateBookingWithLines(ctx, b, lines))

	err := db.DeleteItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrInUse)

	_, err = db.GetItem(ctx, item.ID)
	assert.NoError(t, err)
}

func TestSyncItems(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	seedItem(t, db, "Tent", 1)

	err := db.SyncItems(ctx, []models.Item{
		{Name: "tent", Description: "4 person", TotalQuantity: 6},
		{Name: "Lamp", TotalQuantity: 12},
	})
	require.NoError(t, err)

	items, err := db.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	tent, err := db.GetItemByName(ctx, "Tent")
	require.NoError(t, err)
	assert.Equal(t, int64(6), tent.TotalQuantity)
	assert.Equal(t, "4 person", tent.Description)
}
