package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"mta/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	lastColumn      = "I"
	statusColumn    = "E"
	updatedColumn   = "I"
)

// ErrRowNotFound is returned when no sheet row carries the booking id.
var ErrRowNotFound = errors.New("booking row not found")

var bookingHeaders = []interface{}{"ID", "Customer", "Start", "End", "Status", "Total", "Items", "Created At", "Updated At"}

// SheetsService mirrors bookings into one sheet of a Google spreadsheet,
// one row per booking keyed by the id in column A.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
	logger        *zerolog.Logger
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *zerolog.Logger) (*SheetsService, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newSheetsService(srv, spreadsheetID, sheetName, logger), nil
}

func newSheetsService(srv *sheets.Service, spreadsheetID, sheetName string, logger *zerolog.Logger) *SheetsService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if sheetName == "" {
		sheetName = "Bookings"
	}
	l := logger.With().Str("component", "google_sheets").Logger()
	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rowCache:      make(map[int64]int),
		logger:        &l,
	}
}

func (s *SheetsService) rangeOf(a1 string) string {
	return s.sheetName + "!" + a1
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf("A1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf("A:A")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read id column: %w", err)
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if id, ok := cellID(row); ok {
			s.rowCache[id] = i + 1
		}
	}
	s.logger.Debug().Int("rows", len(s.rowCache)).Msg("Row cache warmed up")
	return nil
}

// AppendBooking adds a new row for the booking.
func (s *SheetsService) AppendBooking(ctx context.Context, booking *models.BookingWithLines) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}

	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.rangeOf("A:A"), valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append booking %d: %w", booking.ID, err)
	}

	if resp.Updates != nil {
		if row, ok := firstRowOf(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(booking.ID, row)
		}
	}
	return nil
}

// UpsertBooking updates an existing booking row or appends a new one if not found.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking *models.BookingWithLines) error {
	if booking == nil {
		return errors.New("booking is nil")
	}

	rowIdx, err := s.FindBookingRow(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.AppendBooking(ctx, booking)
		}
		return err
	}

	rangeData := s.rangeOf(fmt.Sprintf("A%d:%s%d", rowIdx, lastColumn, rowIdx))
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update booking %d: %w", booking.ID, err)
	}
	return nil
}

// DeleteBookingRow clears the row that corresponds to bookingID.
// A booking that never reached the sheet is not an error.
func (s *SheetsService) DeleteBookingRow(ctx context.Context, bookingID int64) error {
	rowIdx, err := s.FindBookingRow(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return nil
		}
		return err
	}

	rangeData := s.rangeOf(fmt.Sprintf("A%d:%s%d", rowIdx, lastColumn, rowIdx))
	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear booking %d: %w", bookingID, err)
	}
	s.deleteCacheRow(bookingID)
	return nil
}

// UpdateBookingStatus updates status and the updated-at cell for a booking row.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	rowIdx, err := s.FindBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	data := []*sheets.ValueRange{
		{
			Range:  s.rangeOf(fmt.Sprintf("%s%d", statusColumn, rowIdx)),
			Values: [][]interface{}{{status}},
		},
		{
			Range:  s.rangeOf(fmt.Sprintf("%s%d", updatedColumn, rowIdx)),
			Values: [][]interface{}{{time.Now().UTC().Format(timestampLayout)}},
		},
	}

	_, err = s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update status of booking %d: %w", bookingID, err)
	}
	return nil
}

// FindBookingRow locates row index (1-based) for booking_id in column A with cache.
func (s *SheetsService) FindBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if bookingID == 0 {
		return 0, errors.New("booking id is required")
	}

	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read id column: %w", err)
	}

	for i, row := range resp.Values {
		if id, ok := cellID(row); ok && id == bookingID {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			s.setCachedRow(bookingID, rowIdx)
			return rowIdx, nil
		}
	}

	return 0, ErrRowNotFound
}

// ReplaceBookingsSheet rewrites the whole sheet: header plus one row per booking.
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, bookings []*models.BookingWithLines) error {
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.rangeOf("A:"+lastColumn), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to clear sheet: %w", err)
	}

	values := make([][]interface{}, 0, len(bookings)+1)
	values = append(values, bookingHeaders)
	for _, b := range bookings {
		values = append(values, bookingRowValues(b))
	}

	rangeData := s.rangeOf(fmt.Sprintf("A1:%s%d", lastColumn, len(values)))
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to write sheet: %w", err)
	}

	s.ClearCache()
	for i, b := range bookings {
		s.setCachedRow(b.ID, i+2)
	}

	s.logger.Info().Int("bookings", len(bookings)).Msg("Bookings sheet replaced")
	return nil
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *SheetsService) deleteCacheRow(id int64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, id)
}

// ClearCache clears the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func bookingRowValues(b *models.BookingWithLines) []interface{} {
	return []interface{}{
		b.ID,
		b.CustomerName,
		models.FormatDate(b.StartDate),
		models.FormatDate(b.EndDate),
		b.Status,
		b.TotalValue.StringFixed(2),
		itemsSummary(b.Lines),
		b.CreatedAt.UTC().Format(timestampLayout),
		b.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// itemsSummary renders lines as "Tent x2; Chair x1".
func itemsSummary(lines []models.LineItem) string {
	parts := make([]string, 0, len(lines))
	for _, li := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", li.ItemName, li.Quantity))
	}
	return strings.Join(parts, "; ")
}

func cellID(row []interface{}) (int64, bool) {
	if len(row) == 0 {
		return 0, false
	}
	var id int64
	switch v := row[0].(type) {
	case float64:
		id = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		id = parsed
	}
	return id, id > 0
}

// firstRowOf extracts the first row number from an A1 range such as "Bookings!A10:I10".
func firstRowOf(a1 string) (int, bool) {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.Index(a1, ":"); i >= 0 {
		a1 = a1[:i]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	row, err := strconv.Atoi(digits)
	if err != nil || row <= 0 {
		return 0, false
	}
	return row, true
}
