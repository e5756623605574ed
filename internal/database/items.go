package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mta/internal/domain"
	"mta/internal/models"
)

const itemColumns = `id, name, description, total_quantity, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }) (*models.Item, error) {
	var item models.Item
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.TotalQuantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (db *DB) ListItems(ctx context.Context) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name COLLATE NOCASE, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q queryer, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := scanItem(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, translateError(err))
	}
	return item, nil
}

// GetItemByName looks an item up by name, ignoring case.
func (db *DB) GetItemByName(ctx context.Context, name string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE name = ? COLLATE NOCASE`
	item, err := scanItem(db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get item by name: %w", translateError(err))
	}
	return item, nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, total_quantity, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.TotalQuantity, now, now)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, total_quantity = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.TotalQuantity, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", translateError(err))
	}
	if err := requireAffected(result, "update item", item.ID); err != nil {
		return err
	}
	item.UpdatedAt = now
	return nil
}

// DeleteItem removes an item that no booking references.
func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getItem(ctx, tx, id); err != nil {
			return err
		}

		var refs int64
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM booking_line_items WHERE item_id = ?`, id).Scan(&refs)
		if err != nil {
			return fmt.Errorf("failed to count item references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("item %d is used by %d booking lines: %w", id, refs, domain.ErrInUse)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete item: %w", translateError(err))
		}
		return nil
	})
}

// SyncItems upserts items by name in one transaction.
func (db *DB) SyncItems(ctx context.Context, items []models.Item) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO items (name, description, total_quantity, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?)
                  ON CONFLICT(name) DO UPDATE SET
                      description = excluded.description,
                      total_quantity = excluded.total_quantity,
                      updated_at = excluded.updated_at`
		now := time.Now().UTC()
		for _, item := range items {
			if _, err := tx.ExecContext(ctx, query, item.Name, item.Description, item.TotalQuantity, now, now); err != nil {
				return fmt.Errorf("failed to sync item %q: %w", item.Name, translateError(err))
			}
		}
		return nil
	})
}
