package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Availability struct {
	ItemID      int64     `json:"item_id"`
	ItemName    string    `json:"item_name"`
	Description string    `json:"description,omitempty"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Total       int64     `json:"total"`
	Committed   int64     `json:"committed"`
	Available   int64     `json:"available"`
}

// AvailableQuantity is total minus committed, floored at zero.
func AvailableQuantity(total, committed int64) int64 {
	if available := total - committed; available > 0 {
		return available
	}
	return 0
}

// DateOnly drops the time-of-day component, keeping the calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

type ReportSummary struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	Bookings        int64           `json:"bookings"`
	Revenue         decimal.Decimal `json:"revenue"`
	ItemsRented     int64           `json:"items_rented"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	RevenueByDate   []DateRevenue   `json:"revenue_by_date"`
	OccupancyByItem []ItemQuantity  `json:"occupancy_by_item"`
	RevenueByItem   []ItemRevenue   `json:"revenue_by_item"`
	BookingsByMonth []MonthCount    `json:"bookings_by_month"`
}

type DateRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ItemQuantity struct {
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

type ItemRevenue struct {
	ItemID   int64           `json:"item_id"`
	ItemName string          `json:"item_name"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type MonthCount struct {
	Month    string `json:"month"`
	Bookings int64  `json:"bookings"`
}
