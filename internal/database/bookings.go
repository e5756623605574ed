package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mta/internal/domain"
	"mta/internal/models"
)

const bookingSelect = `SELECT b.id, b.customer_id, TRIM(c.first_name || ' ' || c.last_name),
        b.start_date, b.end_date, b.total_value, b.status, b.created_at, b.updated_at
    FROM bookings b
    JOIN customers c ON c.id = b.customer_id`

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.BookingWithLines, error) {
	var b models.BookingWithLines
	var startStr, endStr string
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.CustomerName,
		&startStr, &endStr, &b.TotalValue, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.StartDate, err = models.ParseDate(startStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking start date %s: %w", startStr, err)
	}
	if b.EndDate, err = models.ParseDate(endStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking end date %s: %w", endStr, err)
	}
	b.Lines = []models.LineItem{}
	return &b, nil
}

// CreateBookingWithLines re-checks availability of every line inside the
// write transaction and persists the booking only if all lines fit.
func (db *DB) CreateBookingWithLines(ctx context.Context, booking *models.Booking, lines []models.LineItem) error {
	if booking.Status == "" {
		booking.Status = models.StatusActive
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = booking.CreatedAt
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		customer, err := getCustomer(ctx, tx, booking.CustomerID)
		if err != nil {
			return err
		}
		booking.CustomerName = customer.FullName()

		if err := checkLines(ctx, tx, booking, lines, 0); err != nil {
			return err
		}

		query := `INSERT INTO bookings (customer_id, start_date, end_date, total_value, status, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			booking.CustomerID,
			models.FormatDate(booking.StartDate),
			models.FormatDate(booking.EndDate),
			booking.TotalValue,
			booking.Status,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking in tx: %w", translateError(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id in tx: %w", err)
		}
		booking.ID = id

		return insertLines(ctx, tx, id, lines)
	})
}

// ReplaceBooking overwrites the header of an active booking and replaces all
// of its lines. Availability is checked with the booking itself excluded.
func (db *DB) ReplaceBooking(ctx context.Context, booking *models.Booking, lines []models.LineItem) error {
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = time.Now().UTC()
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var status string
		var createdAt time.Time
		err := tx.QueryRowContext(ctx, `SELECT status, created_at FROM bookings WHERE id = ?`, booking.ID).
			Scan(&status, &createdAt)
		if err != nil {
			return fmt.Errorf("failed to get booking %d: %w", booking.ID, translateError(err))
		}
		if models.IsTerminal(status) {
			return fmt.Errorf("booking %d is %s: %w", booking.ID, status, domain.ErrInvalidTransition)
		}

		customer, err := getCustomer(ctx, tx, booking.CustomerID)
		if err != nil {
			return err
		}
		booking.CustomerName = customer.FullName()

		if err := checkLines(ctx, tx, booking, lines, booking.ID); err != nil {
			return err
		}

		query := `UPDATE bookings SET customer_id = ?, start_date = ?, end_date = ?, total_value = ?, updated_at = ?
                  WHERE id = ?`
		_, err = tx.ExecContext(ctx, query,
			booking.CustomerID,
			models.FormatDate(booking.StartDate),
			models.FormatDate(booking.EndDate),
			booking.TotalValue,
			booking.UpdatedAt,
			booking.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update booking in tx: %w", translateError(err))
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM booking_line_items WHERE booking_id = ?`, booking.ID); err != nil {
			return fmt.Errorf("failed to delete booking lines in tx: %w", err)
		}

		booking.Status = status
		booking.CreatedAt = createdAt
		return insertLines(ctx, tx, booking.ID, lines)
	})
}

// checkLines resolves item names and rejects the first line whose quantity
// exceeds what is still available over the booking range.
func checkLines(ctx context.Context, tx *sql.Tx, booking *models.Booking, lines []models.LineItem, excludeBookingID int64) error {
	for i := range lines {
		item, err := getItem(ctx, tx, lines[i].ItemID)
		if err != nil {
			return err
		}
		lines[i].ItemName = item.Name

		committed, err := committedQuantity(ctx, tx, item.ID, booking.StartDate, booking.EndDate, excludeBookingID)
		if err != nil {
			return err
		}

		available := models.AvailableQuantity(item.TotalQuantity, committed)
		if lines[i].Quantity > available {
			return &domain.InsufficientAvailabilityError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: lines[i].Quantity,
				Available: available,
			}
		}
	}
	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, bookingID int64, lines []models.LineItem) error {
	query := `INSERT INTO booking_line_items (booking_id, item_id, quantity, unit_price, line_total)
              VALUES (?, ?, ?, ?, ?)`
	for i := range lines {
		result, err := tx.ExecContext(ctx, query,
			bookingID,
			lines[i].ItemID,
			lines[i].Quantity,
			lines[i].UnitPrice,
			lines[i].LineTotal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking line in tx: %w", translateError(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id in tx: %w", err)
		}
		lines[i].ID = id
		lines[i].BookingID = bookingID
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.BookingWithLines, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, translateError(err))
	}

	if err := db.attachLines(ctx, []*models.BookingWithLines{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookingsWithLineItems returns every booking, newest start date first.
func (db *DB) ListBookingsWithLineItems(ctx context.Context) ([]*models.BookingWithLines, error) {
	return db.listBookings(ctx, bookingSelect+` ORDER BY b.start_date DESC, b.id DESC`)
}

// ListBookingsStartingBetween returns bookings whose start date falls in [from, to].
func (db *DB) ListBookingsStartingBetween(ctx context.Context, from, to time.Time) ([]*models.BookingWithLines, error) {
	query := bookingSelect + ` WHERE b.start_date >= ? AND b.start_date <= ? ORDER BY b.start_date ASC, b.id ASC`
	return db.listBookings(ctx, query, models.FormatDate(from), models.FormatDate(to))
}

func (db *DB) listBookings(ctx context.Context, query string, args ...interface{}) ([]*models.BookingWithLines, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := []*models.BookingWithLines{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	// соединение одно: курсор закрываем до запроса строк
	rows.Close()

	if err := db.attachLines(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (db *DB) attachLines(ctx context.Context, bookings []*models.BookingWithLines) error {
	if len(bookings) == 0 {
		return nil
	}

	byID := make(map[int64]*models.BookingWithLines, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	args := make([]interface{}, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		placeholders = append(placeholders, "?")
		args = append(args, b.ID)
	}

	query := `SELECT li.id, li.booking_id, li.item_id, i.name, li.quantity, li.unit_price, li.line_total
              FROM booking_line_items li
              JOIN items i ON i.id = li.item_id
              WHERE li.booking_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY li.booking_id, li.id`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to get booking lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var li models.LineItem
		if err := rows.Scan(&li.ID, &li.BookingID, &li.ItemID, &li.ItemName, &li.Quantity, &li.UnitPrice, &li.LineTotal); err != nil {
			return fmt.Errorf("failed to scan booking line: %w", err)
		}
		if b, ok := byID[li.BookingID]; ok {
			b.Lines = append(b.Lines, li)
		}
	}
	return rows.Err()
}

// UpdateBookingStatus applies a state machine transition atomically.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
		if err != nil {
			return fmt.Errorf("failed to get booking %d: %w", id, translateError(err))
		}
		if !models.CanTransition(current, status) {
			return fmt.Errorf("booking %d: %s -> %s: %w", id, current, status, domain.ErrInvalidTransition)
		}

		query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, query, status, time.Now().UTC(), id); err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		return nil
	})
}

// DeleteBooking removes the booking; its lines go with it.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", translateError(err))
	}
	return requireAffected(result, "delete booking", id)
}

// SweepExpired closes every active booking whose end date is before today
// and returns the ids it closed. Running it twice for the same day is a no-op.
func (db *DB) SweepExpired(ctx context.Context, today time.Time) ([]int64, error) {
	todayStr := models.FormatDate(today)
	var closed []int64

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM bookings WHERE status = ? AND end_date < ? ORDER BY id`,
			models.StatusActive, todayStr)
		if err != nil {
			return fmt.Errorf("failed to find expired bookings: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan expired booking: %w", err)
			}
			closed = append(closed, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(closed) == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, updated_at = ? WHERE status = ? AND end_date < ?`,
			models.StatusClosed, time.Now().UTC(), models.StatusActive, todayStr)
		if err != nil {
			return fmt.Errorf("failed to close expired bookings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(closed) > 0 {
		db.logger.Info().Int("count", len(closed)).Str("today", todayStr).Msg("Closed expired bookings")
	}
	return closed, nil
}
