package domain

import (
	"context"
	"time"

	"mta/internal/models"
)

type ItemRepository interface {
	ListItems(ctx context.Context) ([]*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemByName(ctx context.Context, name string) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

type CustomerRepository interface {
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
}

type BookingRepository interface {
	CommittedQuantity(ctx context.Context, itemID int64, start, end time.Time, excludeBookingID int64) (int64, error)
	CommittedByItem(ctx context.Context, start, end time.Time) (map[int64]int64, error)
	CreateBookingWithLines(ctx context.Context, booking *models.Booking, lines []models.LineItem) error
	ReplaceBooking(ctx context.Context, booking *models.Booking, lines []models.LineItem) error
	GetBooking(ctx context.Context, id int64) (*models.BookingWithLines, error)
	ListBookingsWithLineItems(ctx context.Context) ([]*models.BookingWithLines, error)
	ListBookingsStartingBetween(ctx context.Context, from, to time.Time) ([]*models.BookingWithLines, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	DeleteBooking(ctx context.Context, id int64) error
	SweepExpired(ctx context.Context, today time.Time) ([]int64, error)
}

// Repository is the full data store contract implemented by database.DB.
type Repository interface {
	ItemRepository
	CustomerRepository
	BookingRepository
}

// ReportCache stores computed report rollups.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.BookingWithLines) error
	DeleteBookingRow(ctx context.Context, bookingID int64) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.BookingWithLines, status string) error
}

type ItemService interface {
	ListItems(ctx context.Context) ([]*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

type CustomerService interface {
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
}

type AvailabilityService interface {
	CommittedQuantity(ctx context.Context, itemID int64, start, end time.Time, excludeBookingID int64) (int64, error)
	AvailableQuantity(ctx context.Context, itemID int64, start, end time.Time, excludeBookingID int64) (*models.Availability, error)
	Report(ctx context.Context, start, end time.Time) ([]*models.Availability, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingWithLines, error)
	UpdateBooking(ctx context.Context, bookingID int64, req models.BookingRequest) (*models.BookingWithLines, error)
	SetStatus(ctx context.Context, bookingID int64, status string) error
	DeleteBooking(ctx context.Context, bookingID int64) error
	GetBooking(ctx context.Context, id int64) (*models.BookingWithLines, error)
	ListBookingsWithLineItems(ctx context.Context) ([]*models.BookingWithLines, error)
	SweepExpired(ctx context.Context, today time.Time) (int, error)
	SweepNow(ctx context.Context) (int, error)
}

type ReportService interface {
	Summary(ctx context.Context, from, to time.Time) (*models.ReportSummary, error)
}
