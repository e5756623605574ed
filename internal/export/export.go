package export

import (
	"fmt"
	"io"

	"mta/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	BookingsSheet = "Bookings"
	SummarySheet  = "Summary"

	// ContentType is the MIME type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var bookingHeaders = []string{
	"Booking ID", "Customer", "Start", "End", "Status",
	"Item", "Quantity", "Unit price", "Line total",
}

// BookingsWorkbook builds a workbook with one row per line item and a
// summary sheet. The caller owns the returned file and must Close it.
func BookingsWorkbook(bookings []*models.BookingWithLines) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(BookingsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeBookingRows(f, bookings); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, bookings); err != nil {
		f.Close()
		return nil, err
	}

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// WriteBookings streams the bookings workbook to w.
func WriteBookings(w io.Writer, bookings []*models.BookingWithLines) error {
	f, err := BookingsWorkbook(bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeBookingRows(f *excelize.File, bookings []*models.BookingWithLines) error {
	for i, h := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(BookingsSheet, cell, h); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(bookingHeaders))
	_ = f.SetCellStyle(BookingsSheet, "A1", lastCol+"1", headerStyle)

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	row := 2
	for _, b := range bookings {
		for _, li := range b.Lines {
			values := []interface{}{
				b.ID,
				b.CustomerName,
				models.FormatDate(b.StartDate),
				models.FormatDate(b.EndDate),
				b.Status,
				li.ItemName,
				li.Quantity,
				li.UnitPrice.InexactFloat64(),
				li.LineTotal.InexactFloat64(),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(BookingsSheet, cell, &values); err != nil {
				return fmt.Errorf("error writing booking %d: %w", b.ID, err)
			}
			row++
		}
	}

	if row > 2 {
		_ = f.SetCellStyle(BookingsSheet, "H2", fmt.Sprintf("I%d", row-1), moneyStyle)
	}
	_ = f.SetColWidth(BookingsSheet, "A", "A", 12)
	_ = f.SetColWidth(BookingsSheet, "B", "B", 28)
	_ = f.SetColWidth(BookingsSheet, "C", "E", 12)
	_ = f.SetColWidth(BookingsSheet, "F", "F", 28)
	_ = f.SetColWidth(BookingsSheet, "G", "I", 14)
	return nil
}

func writeSummary(f *excelize.File, bookings []*models.BookingWithLines) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	counts := map[string]int64{}
	revenue := decimal.Zero
	var itemsRented int64
	for _, b := range bookings {
		counts[b.Status]++
		if b.Status == models.StatusCancelled {
			continue
		}
		for _, li := range b.Lines {
			revenue = revenue.Add(li.LineTotal)
			itemsRented += li.Quantity
		}
	}

	rows := [][]interface{}{
		{"Bookings", int64(len(bookings))},
		{"Active", counts[models.StatusActive]},
		{"Closed", counts[models.StatusClosed]},
		{"Cancelled", counts[models.StatusCancelled]},
		{"Items rented", itemsRented},
		{"Revenue (excl. cancelled)", revenue.InexactFloat64()},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return fmt.Errorf("error writing summary: %w", err)
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 28)
	return nil
}
