package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Status       string          `json:"status"` // active, closed, cancelled
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type LineItem struct {
	ID        int64           `json:"id"`
	BookingID int64           `json:"booking_id"`
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// BookingWithLines is a booking header joined with its line items.
type BookingWithLines struct {
	Booking
	Lines []LineItem `json:"lines"`
}

// LineRequest is one requested (item, quantity, price) entry.
type LineRequest struct {
	ItemID    int64           `json:"item_id" validate:"required,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BookingRequest carries the caller input for create and update.
// The booking total is never part of the request; it is derived from Lines.
type BookingRequest struct {
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	StartDate  time.Time     `json:"start_date" validate:"required"`
	EndDate    time.Time     `json:"end_date" validate:"required"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// BuildLines turns requests into line items with server-side totals and
// returns the booking total.
func BuildLines(reqs []LineRequest) ([]LineItem, decimal.Decimal) {
	lines := make([]LineItem, 0, len(reqs))
	total := decimal.Zero
	for _, r := range reqs {
		lineTotal := r.UnitPrice.Mul(decimal.NewFromInt(r.Quantity))
		lines = append(lines, LineItem{
			ItemID:    r.ItemID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return lines, total
}

// Overlaps reports whether the closed interval [start, end] intersects
// [qStart, qEnd] at day granularity. Shared endpoints overlap.
func Overlaps(start, end, qStart, qEnd time.Time) bool {
	start, end = DateOnly(start), DateOnly(end)
	qStart, qEnd = DateOnly(qStart), DateOnly(qEnd)
	return !(end.Before(qStart) || start.After(qEnd))
}
