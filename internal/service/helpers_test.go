package service

import (
	"context"
	"testing"
	"time"

	"mta/internal/database"
	"mta/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.BookingWithLines, status string) error {
	return m.Called(ctx, taskType, bookingID, booking, status).Error(0)
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedItem(t *testing.T, db *database.DB, name string, qty int64) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, TotalQuantity: qty}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func seedCustomer(t *testing.T, db *database.DB, nationalID string) *models.Customer {
	t.Helper()
	c := &models.Customer{FirstName: "Ana", LastName: "Souza", Email: "ana@example.com", NationalID: nationalID}
	require.NoError(t, db.CreateCustomer(context.Background(), c))
	return c
}

func line(itemID, qty int64, price string) models.LineRequest {
	return models.LineRequest{ItemID: itemID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func request(customerID int64, start, end string, lines ...models.LineRequest) models.BookingRequest {
	return models.BookingRequest{CustomerID: customerID, StartDate: day(start), EndDate: day(end), Lines: lines}
}

type bookingFixture struct {
	db       *database.DB
	svc      *BookingService
	pub      *mockPublisher
	sync     *mockSyncWorker
	tent     *models.Item
	chair    *models.Item
	customer *models.Customer
	now      time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := setupTestDB(t)

	pub := new(mockPublisher)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Maybe()
	sync := new(mockSyncWorker)
	sync.On("EnqueueTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f := &bookingFixture{
		db:       db,
		pub:      pub,
		sync:     sync,
		tent:     seedItem(t, db, "Tent", 5),
		chair:    seedItem(t, db, "Chair", 10),
		customer: seedCustomer(t, db, "52998224725"),
		now:      time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewBookingService(db, pub, sync, time.UTC, nil)
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}
