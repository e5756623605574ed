package database

import (
	"context"
	"testing"
	"time"

	"mta/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedItem(t *testing.T, db *DB, name string, total int64) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, TotalQuantity: total}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func seedCustomer(t *testing.T, db *DB, nationalID string) *models.Customer {
	t.Helper()
	c := &models.Customer{
		FirstName:  "Ana",
		LastName:   "Souza",
		Email:      "ana@example.com",
		NationalID: nationalID,
	}
	require.NoError(t, db.CreateCustomer(context.Background(), c))
	return c
}

func newBooking(customerID int64, start, end string, reqs ...models.LineRequest) (*models.Booking, []models.LineItem) {
	lines, total := models.BuildLines(reqs)
	return &models.Booking{
		CustomerID: customerID,
		StartDate:  day(start),
		EndDate:    day(end),
		TotalValue: total,
	}, lines
}

func line(itemID, qty int64, price string) models.LineRequest {
	return models.LineRequest{ItemID: itemID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}
