package database

import (
	"context"
	"fmt"
	"time"

	"mta/internal/models"
)

// committedQuery sums reserved quantities of non-cancelled bookings whose
// closed date range intersects [start, end]. Shared endpoints overlap.
const committedQuery = `SELECT COALESCE(SUM(li.quantity), 0)
    FROM booking_line_items li
    JOIN bookings b ON b.id = li.booking_id
    WHERE li.item_id = ?
      AND b.status != 'cancelled'
      AND NOT (b.end_date < ? OR b.start_date > ?)
      AND b.id != ?`

// CommittedQuantity returns how many units of the item are reserved over
// [start, end]. excludeBookingID = 0 excludes nothing.
func (db *DB) CommittedQuantity(ctx context.Context, itemID int64, start, end time.Time, excludeBookingID int64) (int64, error) {
	return committedQuantity(ctx, db, itemID, start, end, excludeBookingID)
}

func committedQuantity(ctx context.Context, q queryer, itemID int64, start, end time.Time, excludeBookingID int64) (int64, error) {
	var committed int64
	err := q.QueryRowContext(ctx, committedQuery,
		itemID,
		models.FormatDate(start),
		models.FormatDate(end),
		excludeBookingID,
	).Scan(&committed)
	if err != nil {
		return 0, fmt.Errorf("failed to get committed quantity: %w", err)
	}
	return committed, nil
}

// CommittedByItem returns committed quantities over [start, end] for every
// item that has at least one overlapping reservation.
func (db *DB) CommittedByItem(ctx context.Context, start, end time.Time) (map[int64]int64, error) {
	query := `SELECT li.item_id, SUM(li.quantity)
              FROM booking_line_items li
              JOIN bookings b ON b.id = li.booking_id
              WHERE b.status != 'cancelled'
                AND NOT (b.end_date < ? OR b.start_date > ?)
              GROUP BY li.item_id`
	rows, err := db.QueryContext(ctx, query, models.FormatDate(start), models.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to get committed quantities: %w", err)
	}
	defer rows.Close()

	committed := make(map[int64]int64)
	for rows.Next() {
		var itemID, qty int64
		if err := rows.Scan(&itemID, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan committed quantity: %w", err)
		}
		committed[itemID] = qty
	}
	return committed, rows.Err()
}
