package export

import (
	"bytes"
	"testing"
	"time"

	"mta/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleBookings() []*models.BookingWithLines {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	return []*models.BookingWithLines{
		{
			Booking: models.Booking{ID: 1, CustomerName: "Ana Souza", StartDate: start, EndDate: start.AddDate(0, 0, 2), Status: models.StatusActive},
			Lines: []models.LineItem{
				{ItemID: 1, ItemName: "Tent", Quantity: 2, UnitPrice: decimal.RequireFromString("10.50"), LineTotal: decimal.RequireFromString("21")},
				{ItemID: 2, ItemName: "Chair", Quantity: 3, UnitPrice: decimal.NewFromInt(1), LineTotal: decimal.NewFromInt(3)},
			},
		},
		{
			Booking: models.Booking{ID: 2, CustomerName: "Bruno Lima", StartDate: start, EndDate: start, Status: models.StatusCancelled},
			Lines:   []models.LineItem{{ItemID: 1, ItemName: "Tent", Quantity: 1, UnitPrice: decimal.NewFromInt(50), LineTotal: decimal.NewFromInt(50)}},
		},
	}
}

func TestBookingsWorkbook(t *testing.T) {
	f, err := BookingsWorkbook(sampleBookings())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{BookingsSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Booking ID", rows[0][0])
	assert.Equal(t, []string{"1", "Ana Souza", "2024-06-10", "2024-06-12", "active", "Tent", "2"}, rows[1][:7])
	assert.Contains(t, rows[1][7], "10.5")

	raw, err := f.GetCellValue(BookingsSheet, "I2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "21", raw)
	assert.Equal(t, "cancelled", rows[3][4])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 6)
	assert.Equal(t, []string{"Bookings", "2"}, summary[0])
	assert.Equal(t, []string{"Cancelled", "1"}, summary[3])
	assert.Equal(t, []string{"Items rented", "5"}, summary[4])
	assert.Equal(t, "Revenue (excl. cancelled)", summary[5][0])
}

func TestWriteBookings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, sampleBookings()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(BookingsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", v)
}

func TestBookingsWorkbookEmpty(t *testing.T) {
	f, err := BookingsWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
